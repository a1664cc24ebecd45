package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildShareURL 构建相册的公开分享地址
func BuildShareURL(baseURL, shareToken string) string {
	return fmt.Sprintf("%s/api/public/album/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(shareToken))
}
