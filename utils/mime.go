package utils

import (
	"net/http"
	"strings"
)

const defaultContentType = "application/octet-stream"

// mimeToExtMap MIME 类型到扩展名
var mimeToExtMap = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// GetSafeExtension 根据 MIME 类型返回扩展名，不支持的类型返回空字符串
func GetSafeExtension(mimeType string) string {
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	return mimeToExtMap[mimeType]
}

// DetectContentType 检测字节内容的 MIME 类型，空内容返回 application/octet-stream
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return defaultContentType
	}
	return http.DetectContentType(data)
}
