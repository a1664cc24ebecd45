// Package generator 生成对象存储 key
package generator

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/anoixa/photo-share/utils"
	"github.com/google/uuid"
)

// Tier 对象层级前缀
type Tier string

const (
	TierPreview      Tier = "thumb_"
	TierAnalysis     Tier = "analysis_"
	TierFinal        Tier = "final_"
	TierTempAnalysis Tier = "temp-analysis-"
)

const maxNameLength = 64

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewKey 生成 "<tier><uuid>_<sanitized name>" 形式的 key
func NewKey(tier Tier, filename string) string {
	id := uuid.NewString()
	name := SanitizeFileName(filename)
	if name == "" {
		return string(tier) + id
	}
	return string(tier) + id + "_" + name
}

// NewObjectKey 同 NewKey，文件名缺少扩展名时按 MIME 类型补全
func NewObjectKey(tier Tier, filename, mimeType string) string {
	name := SanitizeFileName(filename)
	if filepath.Ext(name) == "" {
		if ext := utils.GetSafeExtension(mimeType); ext != "" {
			if name == "" {
				name = "photo"
			}
			name += ext
		}
	}
	return NewKey(tier, name)
}

// NewTempAnalysisKey 临时分析对象 key
func NewTempAnalysisKey() string {
	return string(TierTempAnalysis) + uuid.NewString() + ".jpg"
}

// SanitizeFileName 仅保留安全字符，去除目录部分
func SanitizeFileName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if len(base) > maxNameLength {
		ext := filepath.Ext(base)
		if len(ext) >= maxNameLength {
			ext = ""
		}
		base = base[:maxNameLength-len(ext)] + ext
	}
	return base
}

// TierOf 从 key 解析层级
func TierOf(key string) (Tier, bool) {
	for _, t := range []Tier{TierPreview, TierAnalysis, TierFinal, TierTempAnalysis} {
		if strings.HasPrefix(key, string(t)) {
			return t, true
		}
	}
	return "", false
}
