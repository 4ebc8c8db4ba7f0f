package service

import (
	"Bulletin/internal/pkg/asset"
	"Bulletin/internal/repository"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrorKind 写路径失败的稳定分类
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidationFailed
	KindAssetUploadFailed
	KindWriteFailed
	KindNotFound
	KindCompensationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidationFailed:
		return "validation_failed"
	case KindAssetUploadFailed:
		return "asset_upload_failed"
	case KindWriteFailed:
		return "write_failed"
	case KindNotFound:
		return "not_found"
	case KindCompensationFailed:
		return "compensation_failed"
	default:
		return "internal"
	}
}

var (
	ErrParamInvalid    = errors.New("参数错误")
	ErrMissingFile     = errors.New("资源帖必须上传文件")
	ErrFileTooLarge    = errors.New("文件过大")
	ErrTooManyTags     = errors.New("标签数量超过限制")
	ErrPostNotFound    = errors.New("帖子不存在")
	ErrVariantMismatch = errors.New("帖子类型不可变更")
	UnauthorizedError  = errors.New("权限不足")
	UnExpectedError    = errors.New("系统异常，请稍后重试")
)

// kindMessages 对外展示的默认文案，不包含存储细节
var kindMessages = map[ErrorKind]string{
	KindValidationFailed:   ErrParamInvalid.Error(),
	KindAssetUploadFailed:  "文件上传失败，请稍后重试",
	KindWriteFailed:        "保存失败，请稍后重试",
	KindNotFound:           ErrPostNotFound.Error(),
	KindCompensationFailed: "附件清理失败",
	KindInternal:           UnExpectedError.Error(),
}

// PublishError 编排层返回给调用方的错误，Message 可直接展示
type PublishError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PublishError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// newPublishError 分类并生成对外文案，校验类错误沿用哨兵自身的文案
func newPublishError(err error) *PublishError {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe
	}
	kind := ClassifyError(err)
	msg := kindMessages[kind]
	if kind == KindValidationFailed {
		for _, sentinel := range []error{ErrMissingFile, ErrFileTooLarge, ErrTooManyTags, ErrVariantMismatch} {
			if errors.Is(err, sentinel) {
				msg = sentinel.Error()
				break
			}
		}
		if errors.Is(err, repository.ErrVariantMismatch) {
			msg = ErrVariantMismatch.Error()
		}
	}
	return &PublishError{Kind: kind, Message: msg, Err: err}
}

// ClassifyError 将存储、数据库、哨兵等错误映射为 ErrorKind，无法识别的一律为 Internal
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}

	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve),
		errors.Is(err, ErrParamInvalid),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrTooManyTags),
		errors.Is(err, ErrVariantMismatch),
		errors.Is(err, repository.ErrVariantMismatch),
		errors.Is(err, asset.ErrEmptyFile):
		return KindValidationFailed
	case errors.Is(err, repository.ErrNoRowAffected),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, ErrPostNotFound):
		return KindNotFound
	case asset.IsUploadError(err):
		return KindAssetUploadFailed
	case asset.IsDeleteError(err):
		return KindCompensationFailed
	case isWriteError(err):
		return KindWriteFailed
	}
	return KindInternal
}

func isWriteError(err error) bool {
	var writeErr *repository.WriteError
	if errors.As(err, &writeErr) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, repository.ErrEmptyResult)
}
