// Package asset 定义帖子附件的对象存储契约，以及各存储后端共用的纯函数。
package asset

import (
	"context"
	"errors"
	"fmt"
)

// Kind 附件的粗粒度类型，用于存储路由
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindRaw   Kind = "raw"
)

// Op 存储操作
type Op string

const (
	OpUpload Op = "upload"
	OpDelete Op = "delete"
)

var (
	// ErrAssetNotFound 对象不存在，Delete 内部吞掉该错误
	ErrAssetNotFound = errors.New("asset not found")
	// ErrEmptyFile 上传内容为空
	ErrEmptyFile = errors.New("empty file")
)

// Asset 上传成功后返回的句柄
type Asset struct {
	ID       string
	URL      string
	ByteSize int64
	Kind     Kind
	MimeType string
}

// UploadRequest 一次上传所需的全部信息
type UploadRequest struct {
	Data         []byte
	OriginalName string
	MimeType     string
	OwnerID      uint64
}

// Store 对象存储客户端，长生命周期，可在并发请求间共享
type Store interface {
	// Upload 上传字节并返回持久引用，失败时返回 *OpError(OpUpload)
	Upload(ctx context.Context, req UploadRequest) (*Asset, error)
	// Delete 幂等删除：对象不存在视为成功，失败时返回 *OpError(OpDelete)
	Delete(ctx context.Context, assetID string) error
	// ExtractAssetID 从公开 URL 解析出 assetID，形状不符返回 false
	ExtractAssetID(url string) (string, bool)
}

// OpError 存储后端错误的统一包装，不向调用方暴露存储细节
type OpError struct {
	Op  Op
	Key string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("asset %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsUploadError 判断是否为上传阶段的失败
func IsUploadError(err error) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Op == OpUpload
}

// IsDeleteError 判断是否为删除阶段的失败
func IsDeleteError(err error) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Op == OpDelete
}
