package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDTO 请求参数未通过校验
var ErrInvalidDTO = errors.New("参数错误")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return fmt.Errorf("%w，字段 [%s] 校验失败，规则 [%s]",
				ErrInvalidDTO,
				firstError.Field(),
				firstError.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDTO, err)
	}
	return nil
}

// ParseTagIDs 解析逗号分隔的标签 ID 列表，空串返回空列表
func ParseTagIDs(raw string) ([]uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w，标签 [%s] 非法", ErrInvalidDTO, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
