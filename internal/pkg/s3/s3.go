// Package s3 提供基于 AWS S3（及兼容服务）的 asset.Store 实现。
package s3

import (
	"Bulletin/internal/api/config"
	"Bulletin/internal/pkg/asset"
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"mime"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	pkgerrors "github.com/pkg/errors"
)

// Store S3 实现的 asset.Store
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	locator  asset.Locator
}

// NewStore 加载 AWS 配置并确保存储桶存在
func NewStore(ctx context.Context, cfg config.S3Config, publicBaseURL string) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load AWS config")
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}
	client := s3.NewFromConfig(awsCfg, s3Options...)

	if publicBaseURL == "" {
		if cfg.Endpoint != "" {
			publicBaseURL = cfg.Endpoint
		} else {
			publicBaseURL = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
		}
	}

	s := &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		locator:  asset.NewLocator(publicBaseURL, cfg.Bucket),
	}
	if err = s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context, region string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return pkgerrors.Wrap(err, "failed to check bucket")
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err = s.client.CreateBucket(ctx, input); err != nil {
		return pkgerrors.Wrapf(err, "failed to create bucket %s", s.bucket)
	}
	log.Info("S3 bucket created", "bucket", s.bucket)
	return nil
}

// Upload 上传附件
func (s *Store) Upload(ctx context.Context, req asset.UploadRequest) (*asset.Asset, error) {
	kind := asset.ClassifyKind(req.MimeType)
	key := asset.NewObjectKey(kind, req.OwnerID, req.OriginalName)

	if len(req.Data) == 0 {
		return nil, &asset.OpError{Op: asset.OpUpload, Key: key, Err: asset.ErrEmptyFile}
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(req.Data),
		ContentType: aws.String(req.MimeType),
		Metadata: map[string]string{
			"owner-id": strconv.FormatUint(req.OwnerID, 10),
		},
	}
	if req.OriginalName != "" {
		input.ContentDisposition = aws.String(mime.FormatMediaType("inline", map[string]string{"filename": req.OriginalName}))
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return nil, &asset.OpError{Op: asset.OpUpload, Key: key, Err: err}
	}

	return &asset.Asset{
		ID:       key,
		URL:      s.locator.URL(key),
		ByteSize: int64(len(req.Data)),
		Kind:     kind,
		MimeType: req.MimeType,
	}, nil
}

// Delete 删除附件，对象不存在视为成功
func (s *Store) Delete(ctx context.Context, assetID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		log.InfoContext(ctx, "asset already absent, delete treated as success", "asset_id", assetID)
		return nil
	}
	return &asset.OpError{Op: asset.OpDelete, Key: assetID, Err: err}
}

// ExtractAssetID 从公开 URL 解析 assetID
func (s *Store) ExtractAssetID(url string) (string, bool) {
	return s.locator.ExtractAssetID(url)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
