// Package vision 图像识别网关
package vision

import (
	"context"
	"errors"
)

// ErrDisabled 未配置识别后端
var ErrDisabled = errors.New("vision analysis is disabled")

// Result 单张图片的识别结果
type Result struct {
	Labels          []string `json:"labels"`
	DetectedText    string   `json:"detectedText"`
	FaceCount       int      `json:"faceCount"`
	AllFacesSmiling bool     `json:"allFacesSmiling"`
	AllEyesOpen     bool     `json:"allEyesOpen"`
	Categories      []string `json:"categories"`
}

// Analyzer 按对象存储 key 识别图片
type Analyzer interface {
	Analyze(ctx context.Context, objectKey string) (*Result, error)
	Name() string
}

// AnalyzerFunc 函数适配器
type AnalyzerFunc func(ctx context.Context, objectKey string) (*Result, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, objectKey string) (*Result, error) {
	return f(ctx, objectKey)
}

func (f AnalyzerFunc) Name() string { return "func" }

// Disabled 所有调用返回 ErrDisabled
type Disabled struct{}

func (Disabled) Analyze(context.Context, string) (*Result, error) { return nil, ErrDisabled }

func (Disabled) Name() string { return "disabled" }

// finalize 补全分类并去重标签
func finalize(r *Result) *Result {
	r.Labels = dedup(r.Labels)
	r.Categories = dedup(r.Categories)
	if len(r.Categories) == 0 {
		r.Categories = []string{ClassifyScene(r.Labels)}
	}
	return r
}

func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
