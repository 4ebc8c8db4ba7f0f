package asset

import (
	"mime"
	"strings"
)

const (
	mimePrefixImage = "image/"
	mimePrefixAudio = "audio/"
	mimePrefixVideo = "video/"
)

// ClassifyKind 按声明的 MIME 归类，音频与视频走同一路由
func ClassifyKind(mimeType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}

	switch {
	case strings.HasPrefix(mt, mimePrefixImage):
		return KindImage
	case strings.HasPrefix(mt, mimePrefixVideo), strings.HasPrefix(mt, mimePrefixAudio):
		return KindVideo
	default:
		return KindRaw
	}
}

// IsKnownKind 判断路径段是否为合法的 Kind
func IsKnownKind(s string) bool {
	switch Kind(s) {
	case KindImage, KindVideo, KindRaw:
		return true
	}
	return false
}
