package minio

import (
	"Bulletin/internal/pkg/asset"
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"mime"
	"strconv"

	"github.com/minio/minio-go/v7"
)

const codeNoSuchKey = "NoSuchKey"

// Upload 上传附件，key 按 kind/owner 归档
func (s *Store) Upload(ctx context.Context, req asset.UploadRequest) (*asset.Asset, error) {
	kind := asset.ClassifyKind(req.MimeType)
	key := asset.NewObjectKey(kind, req.OwnerID, req.OriginalName)

	if len(req.Data) == 0 {
		return nil, &asset.OpError{Op: asset.OpUpload, Key: key, Err: asset.ErrEmptyFile}
	}

	opts := minio.PutObjectOptions{
		ContentType: req.MimeType,
		UserMetadata: map[string]string{
			"owner-id": formatOwner(req.OwnerID),
		},
	}
	if req.OriginalName != "" {
		opts.ContentDisposition = mime.FormatMediaType("inline", map[string]string{"filename": req.OriginalName})
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, &asset.OpError{Op: asset.OpUpload, Key: key, Err: err}
	}

	return &asset.Asset{
		ID:       info.Key,
		URL:      s.locator.URL(info.Key),
		ByteSize: info.Size,
		Kind:     kind,
		MimeType: req.MimeType,
	}, nil
}

// Delete 删除附件，对象不存在视为成功
func (s *Store) Delete(ctx context.Context, assetID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, assetID, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	if isNoSuchKey(err) {
		log.InfoContext(ctx, "asset already absent, delete treated as success", "asset_id", assetID)
		return nil
	}
	return &asset.OpError{Op: asset.OpDelete, Key: assetID, Err: err}
}

// ExtractAssetID 从公开 URL 解析 assetID
func (s *Store) ExtractAssetID(url string) (string, bool) {
	return s.locator.ExtractAssetID(url)
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == codeNoSuchKey
}

func formatOwner(ownerID uint64) string {
	return strconv.FormatUint(ownerID, 10)
}
