package publish

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	htmlCacheControl  = "public, max-age=60"
	assetCacheControl = "public, max-age=31536000, immutable"
)

// Publish uploads every file below dir, keyed by its slash path under prefix.
// It returns the number of uploaded files and stops at the first failure.
func Publish(ctx context.Context, store Storage, dir, prefix string) (int, error) {
	prefix = strings.Trim(prefix, "/")
	uploaded := 0

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" {
			key = path.Join(prefix, key)
		}

		if err := putFile(ctx, store, p, key); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		uploaded++
		logrus.WithField("key", key).Debug("uploaded")
		return nil
	})
	return uploaded, err
}

func putFile(ctx context.Context, store Storage, p, key string) error {
	file, err := os.Open(p)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(p))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	cacheControl := assetCacheControl
	if ext == ".html" {
		cacheControl = htmlCacheControl
	}

	return store.Put(ctx, key, file, PutObjectOptions{
		Size:         info.Size(),
		ContentType:  contentType,
		CacheControl: cacheControl,
	})
}
