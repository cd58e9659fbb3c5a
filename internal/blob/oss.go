package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/Spok95/college-library/internal/config"
)

// OSS: хранилище в бакете Aliyun OSS.
type OSS struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	publicBase string
}

func NewOSS(cfg config.OSSConfig) (*OSS, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return &OSS{
		bucket:     bkt,
		endpoint:   cfg.Endpoint,
		bucketName: cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

func (s *OSS) Put(ctx context.Context, dir string, f File) (string, error) {
	key := objectKey(dir, f.Name)
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(ct),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.bucket.PutObject(key, f.Reader, opts...); err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return key, nil
}

func (s *OSS) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSS) URL(key string) (string, error) {
	if key == "" {
		return "", ErrNoFile
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + escapeKey(key), nil
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, escapeKey(key)), nil
}

// New выбирает хранилище по BLOB_BACKEND.
func New(cfg *config.Config) (Store, error) {
	if cfg.BlobBackend == "oss" {
		return NewOSS(cfg.OSS)
	}
	return NewLocal(cfg.MediaRoot, cfg.Link, cfg.MediaURL)
}
