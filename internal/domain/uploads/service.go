package uploads

import (
	"context"
	"mime"
	"strings"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/logger"
	uploadport "petcare-plus/internal/ports/uploads"
)

// MaxFileSize es el límite por archivo (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// AllowedContentTypes son los MIME de imagen aceptados.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Result es lo que devuelve una subida exitosa.
type Result struct {
	URL         string `json:"file_url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Service struct {
	uploader uploadport.Uploader
	maxBytes int64
	log      logger.Logger
}

func NewService(up uploadport.Uploader, maxBytes int64, log logger.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{uploader: up, maxBytes: maxBytes, log: log}
}

func (s *Service) MaxBytes() int64 { return s.maxBytes }

// NormalizeContentType quita parámetros y pasa a minúsculas.
func NormalizeContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

// Validate revisa tipo y tamaño antes de cualquier llamada remota.
func Validate(name, contentType string, size, maxBytes int64) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("file", "file name is required")
	}
	if !AllowedContentTypes[NormalizeContentType(contentType)] {
		return apperr.Validation("file", "content type %q is not allowed (jpeg, png, gif or webp)", contentType)
	}
	if size <= 0 {
		return apperr.Validation("file", "file is empty")
	}
	if size > maxBytes {
		return apperr.Validation("file", "file exceeds maximum allowed size of %d MB", maxBytes/(1024*1024))
	}
	return nil
}

// Upload valida localmente y sólo entonces sube a la plataforma.
func (s *Service) Upload(ctx context.Context, name, contentType string, data []byte) (Result, error) {
	ct := NormalizeContentType(contentType)
	if err := Validate(name, ct, int64(len(data)), s.maxBytes); err != nil {
		return Result{}, err
	}

	url, err := s.uploader.UploadFile(ctx, name, ct, data)
	if err != nil {
		s.log.Warn("upload failed", map[string]any{"name": name, "error": err.Error()})
		return Result{}, err
	}

	s.log.Info("file uploaded", map[string]any{"name": name, "size": len(data)})
	return Result{URL: url, Name: name, ContentType: ct, Size: int64(len(data))}, nil
}
