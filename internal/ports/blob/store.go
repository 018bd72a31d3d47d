package blob

import (
	"context"
	"io"
)

// Store guarda archivos binarios (imágenes de mascotas) y devuelve una URL pública.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Remove borra el objeto apuntado por url. URLs externas al bucket se ignoran.
	Remove(ctx context.Context, url string) error
}
