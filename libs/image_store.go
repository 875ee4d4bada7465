package libs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageStore keeps the picture uploaded with a food item.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader, filename string) (url, id string, err error)
	Delete(ctx context.Context, id string) error
}

// LocalImageStore writes images under dir and serves them from urlPrefix.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

func NewLocalImageStore(dir, urlPrefix string) *LocalImageStore {
	return &LocalImageStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalImageStore) Save(_ context.Context, r io.Reader, filename string) (string, string, error) {
	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(filename)))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}
	return s.urlPrefix + "/" + name, name, nil
}

func (s *LocalImageStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(id)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
