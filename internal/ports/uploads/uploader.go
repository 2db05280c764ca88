package uploads

import "context"

// Uploader sube un blob y devuelve su URL pública.
type Uploader interface {
	UploadFile(ctx context.Context, name, contentType string, data []byte) (string, error)
}
