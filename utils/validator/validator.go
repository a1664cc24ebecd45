// Package validator 请求校验：上传文件类型检测与 gin binding 自定义规则
package validator

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// allowedImageMimeTypes 允许上传的图片类型
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

var registerOnce sync.Once

// IsImage 检测流内容是否为允许的图片类型，检测后流被重置到开头
func IsImage(file io.ReadSeeker) (bool, string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return false, "", err
	}

	ok, mimeType := IsImageBytes(buffer[:n])
	return ok, mimeType, nil
}

// IsImageBytes 检测字节内容是否为允许的图片类型
func IsImageBytes(data []byte) (bool, string) {
	if len(data) == 0 {
		return false, ""
	}
	mimeType := http.DetectContentType(data)
	if allowedImageMimeTypes[mimeType] {
		return true, mimeType
	}
	return false, ""
}

// RegisterBindings 向 gin 默认校验器注册自定义规则
func RegisterBindings() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return err
}
