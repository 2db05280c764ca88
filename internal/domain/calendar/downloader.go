package calendar

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// Downloader entrega el archivo generado al usuario.
type Downloader interface {
	Download(name, mime string, data []byte) error
}

// ResponseDownloader responde el archivo como adjunto HTTP.
type ResponseDownloader struct {
	W http.ResponseWriter
}

func (d ResponseDownloader) Download(name, mime string, data []byte) error {
	d.W.Header().Set("Content-Type", mime+"; charset=utf-8")
	d.W.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	d.W.Header().Set("Content-Length", strconv.Itoa(len(data)))
	d.W.WriteHeader(http.StatusOK)
	_, err := d.W.Write(data)
	return err
}

// FileDownloader escribe el archivo en Dir (CLI).
type FileDownloader struct {
	Dir string

	// Written guarda la ruta del último archivo escrito.
	Written string
}

func (d *FileDownloader) Download(name, _ string, data []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	d.Written = path
	return nil
}
