package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anoixa/photo-share/storage"
	"github.com/anoixa/photo-share/utils"
	"google.golang.org/genai"
)

const geminiPrompt = `Analyze this photo. Return up to %d short English labels describing the scene and objects,
any readable text, the number of human faces, whether every face is smiling and whether every face has
its eyes open. Use "categories" for shot types such as "close-up", "medium" or "long" when obvious.`

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxLabels int
}

// Gemini 使用 Gemini 多模态模型识别图片
type Gemini struct {
	models    contentGenerator
	store     storage.Provider
	model     string
	maxLabels int
}

// NewGemini 创建 Gemini 后端
func NewGemini(ctx context.Context, cfg GeminiConfig, store storage.Provider) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGemini(client.Models, store, cfg.Model, cfg.MaxLabels), nil
}

func newGemini(models contentGenerator, store storage.Provider, model string, maxLabels int) *Gemini {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if maxLabels <= 0 {
		maxLabels = 10
	}
	return &Gemini{models: models, store: store, model: model, maxLabels: maxLabels}
}

var geminiSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"labels":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"categories":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"detectedText":    {Type: genai.TypeString},
		"faceCount":       {Type: genai.TypeInteger},
		"allFacesSmiling": {Type: genai.TypeBoolean},
		"allEyesOpen":     {Type: genai.TypeBoolean},
	},
	Required: []string{"labels", "detectedText", "faceCount", "allFacesSmiling", "allEyesOpen"},
}

// Analyze 读取对象字节并请求结构化识别结果
func (g *Gemini) Analyze(ctx context.Context, objectKey string) (*Result, error) {
	data, err := g.store.Get(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("gemini: load image %s: %w", objectKey, err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, utils.DetectContentType(data)),
		genai.NewPartFromText(fmt.Sprintf(geminiPrompt, g.maxLabels)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("gemini: no content generated")
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}

	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, fmt.Errorf("gemini: parse response: %w", err)
	}
	if len(res.Labels) > g.maxLabels {
		res.Labels = res.Labels[:g.maxLabels]
	}
	if res.FaceCount == 0 {
		res.AllFacesSmiling, res.AllEyesOpen = false, false
	}
	return finalize(&res), nil
}

// Name 返回后端名称
func (g *Gemini) Name() string { return "gemini" }
