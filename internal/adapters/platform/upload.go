package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"petcare-plus/internal/platform/apperr"
)

type uploadResponse struct {
	FileURL string `json:"file_url"`
}

// UploadFile sube el blob como multipart y devuelve la URL pública.
func (c *Client) UploadFile(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if !c.IsConfigured() {
		return "", ErrPlatformNotConfigured
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("platform: multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("platform: multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("platform: multipart: %w", err)
	}

	var out uploadResponse
	path := c.appPath("integration-endpoints", "Core", "UploadFile")
	if err := c.http.Do(ctx, http.MethodPost, path, c.headers(nil), mw.FormDataContentType(), &buf, &out); err != nil {
		return "", remoteErr("upload", err)
	}

	out.FileURL = strings.TrimSpace(out.FileURL)
	if out.FileURL == "" {
		return "", apperr.Remote("upload", http.StatusOK, errors.New("response missing file_url"))
	}
	return out.FileURL, nil
}
