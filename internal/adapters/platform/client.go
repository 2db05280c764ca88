package platform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/httpclient"
)

var (
	ErrPlatformNotConfigured = errors.New("platform client not configured")
	ErrPlatformUnauthorized  = fmt.Errorf("platform %w", apperr.ErrUnauthorized)
)

// Config del cliente de la plataforma (backend-as-a-service).
// BaseURL, AppID y APIKey normalmente vienen de config/env.
type Config struct {
	BaseURL string
	AppID   string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "api_key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	appID        string
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "api_key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		appID:        strings.TrimSpace(cfg.AppID),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.appID != ""
}

func (c *Client) appPath(parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "api", "apps", url.PathEscape(c.appID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}

func (c *Client) headers(extra map[string]string) map[string]string {
	h := map[string]string{}
	if c.apiKey != "" {
		h[c.apiKeyHeader] = c.apiKey
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// remoteErr normaliza cualquier error del transporte a *apperr.RemoteError.
func remoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		return apperr.Remote(op, he.StatusCode, fmt.Errorf("%s", he.Body))
	}
	return apperr.Remote(op, 0, err)
}
