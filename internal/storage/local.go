package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// LocalProvider stores files directly in a directory
type LocalProvider struct {
	RootPath string
}

// NewLocalProvider creates the root directory if needed
func NewLocalProvider(root string) (*LocalProvider, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &LocalProvider{RootPath: root}, nil
}

// path resolves key inside RootPath. Keys with separators or dot segments are rejected.
func (l *LocalProvider) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key || filepath.IsAbs(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(l.RootPath, key), nil
}

// Put writes body to key, replacing any existing file
func (l *LocalProvider) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Get opens key
func (l *LocalProvider) Get(ctx context.Context, key string) (*Object, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, ErrNotExist
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Object{
		Body:          f,
		ContentLength: stat.Size(),
		ContentType:   contentType,
		LastModified:  stat.ModTime(),
	}, nil
}

// Delete removes key
func (l *LocalProvider) Delete(ctx context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotExist
	}
	return err
}
