package minio

import (
	"Bulletin/internal/api/config"
	"Bulletin/internal/pkg/asset"
	"context"
	"fmt"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store MinIO 实现的 asset.Store
type Store struct {
	client  *minio.Client
	bucket  string
	locator asset.Locator
}

// NewStore 初始化 MinIO 客户端并确保存储桶存在
func NewStore(ctx context.Context, cfg config.MinIOConfig, publicBaseURL string) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	if publicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBaseURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	s := &Store{
		client:  client,
		bucket:  cfg.Bucket,
		locator: asset.NewLocator(publicBaseURL, cfg.Bucket),
	}
	if err = s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if exists {
		return nil
	}
	if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	log.Info("MinIO bucket created", "bucket", s.bucket)
	return nil
}
