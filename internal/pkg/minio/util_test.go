package minio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}))
	assert.True(t, isNoSuchKey(fmt.Errorf("wrapped: %w", minio.ErrorResponse{Code: "NoSuchKey"})))
	assert.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}))
	assert.False(t, isNoSuchKey(errors.New("dial tcp: connection refused")))
}

func TestFormatOwner(t *testing.T) {
	assert.Equal(t, "18446744073709551615", formatOwner(^uint64(0)))
}
