// Package filestore - локальное файловое хранилище загружаемых фотографий.
// Каталог создается явно при старте приложения, а не как побочный эффект
// первой загрузки.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrTooLarge возвращается, когда файл превышает потолок размера
var ErrTooLarge = errors.New("file exceeds upload size limit")

// FileStore сохраняет файлы в локальный каталог и выдает ссылку на них
type FileStore struct {
	dir      string
	maxBytes int64
}

// New создает хранилище и каталог для него, если каталога еще нет
func New(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save записывает содержимое в файл со случайным именем, сохраняя расширение
// исходного файла, и возвращает относительную ссылку для photo_url
func (s *FileStore) Save(name string, size int64, r io.Reader) (string, error) {
	if size > s.maxBytes {
		return "", fmt.Errorf("%w: %d > %d", ErrTooLarge, size, s.maxBytes)
	}

	filename := uuid.New().String() + filepath.Ext(name)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	// Читаем maxBytes+1: если дочитали лишний байт, заявленный размер врал
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("%w: %d > %d", ErrTooLarge, written, s.maxBytes)
	}

	return "/" + filepath.ToSlash(filepath.Join(s.dir, filename)), nil
}
