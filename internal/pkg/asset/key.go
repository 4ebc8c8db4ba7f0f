package asset

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const maxBaseNameLen = 64

// BuildObjectKey 生成存储 key：<kind>/<ownerID>/<base>_<unixnano>_<suffix>
// key 不带扩展名，作为 assetID 直接使用
func BuildObjectKey(kind Kind, ownerID uint64, originalName string, now time.Time, suffix string) string {
	return fmt.Sprintf("%s/%s/%s_%d_%s",
		kind,
		strconv.FormatUint(ownerID, 10),
		SanitizeBaseName(originalName),
		now.UnixNano(),
		suffix,
	)
}

// NewObjectKey 使用当前时间与随机后缀生成 key
func NewObjectKey(kind Kind, ownerID uint64, originalName string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return BuildObjectKey(kind, ownerID, originalName, time.Now(), suffix)
}

// SanitizeBaseName 去掉目录与扩展名，只保留字母数字、'-'、'_'
func SanitizeBaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "_")
	if len(out) > maxBaseNameLen {
		out = out[:maxBaseNameLen]
	}
	if out == "" || out == "." {
		return "file"
	}
	return out
}
