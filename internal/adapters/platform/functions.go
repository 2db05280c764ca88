package platform

import (
	"context"
	"net/http"
	"strings"
)

type tokenKey struct{}

// WithToken adjunta el bearer token del usuario al contexto; las llamadas a
// funciones lo reenvían para que la plataforma resuelva el usuario actual.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

func tokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}

// Invoke llama una función remota: POST /api/apps/{app}/functions/{name}.
func (c *Client) Invoke(ctx context.Context, name string, in any, out any) error {
	if !c.IsConfigured() {
		return ErrPlatformNotConfigured
	}
	extra := map[string]string{}
	if tok := tokenFrom(ctx); tok != "" {
		extra["Authorization"] = "Bearer " + tok
	}
	if in == nil {
		in = map[string]any{}
	}
	path := c.appPath("functions", name)
	if err := c.http.DoJSON(ctx, http.MethodPost, path, c.headers(extra), in, out); err != nil {
		return remoteErr("functions."+name, err)
	}
	return nil
}
