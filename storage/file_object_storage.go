package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alekLukanen/errs"
)

// FileObjectStorage keeps objects on the local filesystem. Buckets are
// directories under the root and keys are slash separated paths inside them.
type FileObjectStorage struct {
	logger *slog.Logger

	root string
}

func NewFileObjectStorage(logger *slog.Logger, root string) (*FileObjectStorage, error) {
	if root == "" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("file storage root is required")), ErrInvalidOptions)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errs.Wrap(err)
	}
	return &FileObjectStorage{logger: logger, root: root}, nil
}

func (obj *FileObjectStorage) path(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", errs.Wrap(errs.NewStackError(fmt.Errorf("bucket: %q", bucket)), ErrInvalidKey)
	}
	if key == "" || strings.HasPrefix(key, "/") {
		return "", errs.Wrap(errs.NewStackError(fmt.Errorf("key: %q", key)), ErrInvalidKey)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." || strings.Contains(segment, `\`) {
			return "", errs.Wrap(errs.NewStackError(fmt.Errorf("key: %q", key)), ErrInvalidKey)
		}
	}
	return filepath.Join(obj.root, bucket, filepath.FromSlash(key)), nil
}

// Upload writes to a temporary file next to the target and renames it into
// place, so readers only ever see complete objects.
func (obj *FileObjectStorage) Upload(ctx context.Context, bucket, key string, body []byte) error {
	obj.logger.Info(
		"uploading object", slog.String("bucket", bucket), slog.String("key", key), slog.Int("numBytes", len(body)),
	)

	dst, err := obj.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return errs.Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return errs.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return errs.Wrap(err)
	}
	return nil
}

func (obj *FileObjectStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj.logger.Info("downloading object", slog.String("bucket", bucket), slog.String("key", key))

	src, err := obj.path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("bucket: %s, key: %s", bucket, key)), ErrObjectNotFound)
	} else if err != nil {
		return nil, errs.Wrap(err)
	}
	return data, nil
}

func (obj *FileObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	obj.logger.Info("deleting object", slog.String("bucket", bucket), slog.String("key", key))

	path, err := obj.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(err)
	}
	return nil
}

// ListObjects returns the sorted keys in the bucket that start with prefix.
func (obj *FileObjectStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	obj.logger.Info("listing objects", slog.String("bucket", bucket), slog.String("prefix", prefix))

	bucketDir := filepath.Join(obj.root, bucket)
	keys := make([]string, 0)
	err := filepath.WalkDir(bucketDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == bucketDir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err)
	}

	slices.Sort(keys)
	return keys, nil
}
