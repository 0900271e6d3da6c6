// Package assets stores generated images and pages in a gocloud bucket and
// hands back the URL they are served from.
package assets

import (
	"context"
	"errors"
	"path"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

var ErrNotFound = errors.New("asset not found")

// Store writes assets to a bucket opened from a URL such as
// s3://bucket?region=us-east-1, gs://bucket, file:///tmp/assets or mem://
type Store struct {
	bucket     *blob.Bucket
	bucketURL  string
	publicBase string
}

// Open opens bucketURL. publicBase is the URL prefix the bucket is served
// under; when empty, URLs are built from the bucket URL itself.
func Open(ctx context.Context, bucketURL, publicBase string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Store{
		bucket:     bucket,
		bucketURL:  strings.TrimSuffix(bucketURL, "/"),
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}, nil
}

// Key builds the object key for an asset of one onboarding run.
func Key(userID, runID, name string) string {
	return path.Join(userID, runID, name)
}

// Put writes data under key and returns its public URL.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

// Get reads the asset stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	base := s.bucketURL
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	return base + "/" + key
}

func (s *Store) Close() error {
	return s.bucket.Close()
}
