package asset

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	versionSegment   = regexp.MustCompile(`^v\d+$`)
	transformSegment = regexp.MustCompile(`^[a-z]{1,3}_[^/]+$`)
	ownerSegment     = regexp.MustCompile(`^\d+$`)
)

// Locator 负责 assetID 与公开 URL 之间的互相转换
// 公开 URL 形如 <base>/<bucket>/[transform/][v123/]<kind>/<owner>/<name>[.ext][?query]
type Locator struct {
	base   *url.URL
	bucket string
}

// NewLocator baseURL 为空时 ExtractAssetID 不校验 host
func NewLocator(baseURL, bucket string) Locator {
	l := Locator{bucket: strings.Trim(bucket, "/")}
	if baseURL != "" {
		if u, err := url.Parse(strings.TrimRight(baseURL, "/")); err == nil && u.Host != "" {
			l.base = u
		}
	}
	return l
}

// URL 由 assetID 构造公开访问地址
func (l Locator) URL(assetID string) string {
	var b strings.Builder
	if l.base != nil {
		b.WriteString(l.base.String())
	}
	if l.bucket != "" {
		b.WriteString("/")
		b.WriteString(l.bucket)
	}
	b.WriteString("/")
	b.WriteString(strings.TrimLeft(assetID, "/"))
	return b.String()
}

// ExtractAssetID 剥离版本段、变换参数、扩展名与查询串，任何不符合预期形状的输入返回 false
func (l Locator) ExtractAssetID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	p := u.Path
	if l.base != nil {
		if !strings.EqualFold(u.Host, l.base.Host) {
			return "", false
		}
		prefix := strings.TrimRight(l.base.Path, "/")
		if prefix != "" {
			if !strings.HasPrefix(p, prefix+"/") {
				return "", false
			}
			p = strings.TrimPrefix(p, prefix)
		}
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" {
			continue
		}
		if s == "." || s == ".." {
			return "", false
		}
		segs = append(segs, s)
	}

	if l.bucket != "" {
		if len(segs) == 0 || segs[0] != l.bucket {
			return "", false
		}
		segs = segs[1:]
	}

	for len(segs) > 0 && (strings.Contains(segs[0], ",") || transformSegment.MatchString(segs[0])) {
		segs = segs[1:]
	}
	if len(segs) > 0 && versionSegment.MatchString(segs[0]) {
		segs = segs[1:]
	}

	if len(segs) < 3 || !IsKnownKind(segs[0]) || !ownerSegment.MatchString(segs[1]) {
		return "", false
	}

	last := segs[len(segs)-1]
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	} else if idx == 0 {
		return "", false
	}
	segs[len(segs)-1] = last

	return strings.Join(segs, "/"), true
}
