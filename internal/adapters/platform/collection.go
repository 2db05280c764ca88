package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/ports/entities"
)

// Collection implementa entities.Collection[T] sobre la API de entidades.
type Collection[T any] struct {
	client *Client
	entity string
}

var _ entities.Collection[struct{}] = (*Collection[struct{}])(nil)

func NewCollection[T any](client *Client, entity string) *Collection[T] {
	return &Collection[T]{client: client, entity: entity}
}

func (c *Collection[T]) List(ctx context.Context, sort string, limit int) ([]T, error) {
	return c.query(ctx, "list", nil, sort, limit)
}

func (c *Collection[T]) Filter(ctx context.Context, q entities.Query, sort string) ([]T, error) {
	return c.query(ctx, "filter", q, sort, 0)
}

func (c *Collection[T]) query(ctx context.Context, op string, q entities.Query, sort string, limit int) ([]T, error) {
	if !c.client.IsConfigured() {
		return nil, ErrPlatformNotConfigured
	}

	v := url.Values{}
	if strings.TrimSpace(sort) != "" {
		v.Set("sort", sort)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if len(q) > 0 {
		b, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("platform: marshal query: %w", err)
		}
		v.Set("q", string(b))
	}

	path := c.client.appPath("entities", c.entity)
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}

	var out []T
	if err := c.client.http.DoJSON(ctx, http.MethodGet, path, c.client.headers(nil), nil, &out); err != nil {
		return nil, remoteErr(c.op(op), err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	if !c.client.IsConfigured() {
		return out, ErrPlatformNotConfigured
	}
	path := c.client.appPath("entities", c.entity)
	if err := c.client.http.DoJSON(ctx, http.MethodPost, path, c.client.headers(nil), rec, &out); err != nil {
		return out, remoteErr(c.op("create"), err)
	}
	return out, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var out T
	id = strings.TrimSpace(id)
	if id == "" {
		return out, fmt.Errorf("%w: %s update without id", apperr.ErrPrecondition, c.entity)
	}
	if !c.client.IsConfigured() {
		return out, ErrPlatformNotConfigured
	}
	path := c.client.appPath("entities", c.entity, id)
	if err := c.client.http.DoJSON(ctx, http.MethodPut, path, c.client.headers(nil), patch, &out); err != nil {
		return out, remoteErr(c.op("update"), err)
	}
	return out, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: %s delete without id", apperr.ErrPrecondition, c.entity)
	}
	if !c.client.IsConfigured() {
		return ErrPlatformNotConfigured
	}
	path := c.client.appPath("entities", c.entity, id)
	if err := c.client.http.DoJSON(ctx, http.MethodDelete, path, c.client.headers(nil), nil, nil); err != nil {
		return remoteErr(c.op("delete"), err)
	}
	return nil
}

func (c *Collection[T]) op(action string) string {
	return "entities." + c.entity + "." + action
}
