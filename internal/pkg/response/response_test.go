package response

import (
	"Bulletin/internal/api/dto"
	"Bulletin/internal/pkg/util"
	"Bulletin/internal/service"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorMapsPublishKinds(t *testing.T) {
	tests := []struct {
		kind service.ErrorKind
		code int
	}{
		{service.KindValidationFailed, BadRequest},
		{service.KindNotFound, NotFound},
		{service.KindAssetUploadFailed, BadGateway},
		{service.KindWriteFailed, InternalServerError},
		{service.KindInternal, InternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			resp := render(t, &service.PublishError{Kind: tt.kind, Message: "msg", Err: errors.New("internal detail")})
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, "msg", resp.Message)
		})
	}
}

func TestErrorOtherCases(t *testing.T) {
	resp := render(t, fmt.Errorf("%w，字段 [Title] 校验失败，规则 [min]", util.ErrInvalidDTO))
	assert.Equal(t, BadRequest, resp.Code)

	resp = render(t, service.UnauthorizedError)
	assert.Equal(t, Forbidden, resp.Code)

	resp = render(t, errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.Equal(t, InternalServerError, resp.Code)
	assert.Equal(t, service.UnExpectedError.Error(), resp.Message)
}
