package response

import (
	"Bulletin/internal/api/dto"
	"Bulletin/internal/pkg/util"
	"Bulletin/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	BadGateway          = 502
)

// kindCodes ErrorKind 到业务码的映射
var kindCodes = map[service.ErrorKind]int{
	service.KindValidationFailed:   BadRequest,
	service.KindNotFound:           NotFound,
	service.KindAssetUploadFailed:  BadGateway,
	service.KindWriteFailed:        InternalServerError,
	service.KindCompensationFailed: InternalServerError,
	service.KindInternal:           InternalServerError,
}

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// CodeOf 返回 ErrorKind 对应的业务码
func CodeOf(kind service.ErrorKind) int {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return InternalServerError
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var pe *service.PublishError
	if errors.As(err, &pe) {
		if pe.Kind == service.KindInternal {
			log.ErrorContext(c.Request.Context(), "Error", "err", err)
		}
		Fail(c, CodeOf(pe.Kind), pe.Message)
		return
	}

	if errors.Is(err, util.ErrInvalidDTO) {
		Fail(c, BadRequest, err.Error())
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	if errors.Is(err, service.UnauthorizedError) {
		Fail(c, Forbidden, err.Error())
		return
	}

	log.ErrorContext(c.Request.Context(), "Error", "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}
