package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var ErrEmptyPrefix = errors.New("gcs: refusing to delete with an empty prefix")

// ObjectStore borra las imágenes de un animal en un bucket de Cloud Storage.
type ObjectStore struct {
	client *storage.Client
	bucket string
}

// New usa Application Default Credentials salvo que se pasen options.
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*ObjectStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs: bucket required")
	}
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	return &ObjectStore{client: c, bucket: bucket}, nil
}

func (s *ObjectStore) Close() error {
	return s.client.Close()
}

// DeletePrefix lista y borra cada objeto bajo prefix. Un objeto que ya no
// existe cuenta como borrado por otro.
func (s *ObjectStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if strings.TrimSpace(prefix) == "" || prefix == "/" {
		return 0, ErrEmptyPrefix
	}

	b := s.client.Bucket(s.bucket)
	it := b.Objects(ctx, &storage.Query{Prefix: prefix})

	n := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("gcs: list %s: %w", prefix, err)
		}
		if err := b.Object(attrs.Name).Delete(ctx); err != nil {
			if errors.Is(err, storage.ErrObjectNotExist) {
				continue
			}
			return n, fmt.Errorf("gcs: delete %s: %w", attrs.Name, err)
		}
		n++
	}
	return n, nil
}
