package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/anoixa/photo-share/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type rekognitionAPI interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectText(ctx context.Context, in *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
	DetectFaces(ctx context.Context, in *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// RekognitionConfig AWS Rekognition 配置
type RekognitionConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	MaxLabels int
}

// Rekognition AWS Rekognition 后端
// 存储为 S3 时直接引用 S3Object，否则先从对象存储读取字节
type Rekognition struct {
	client    rekognitionAPI
	store     storage.Provider
	bucket    string
	maxLabels int32
}

// NewRekognition 创建 Rekognition 后端
func NewRekognition(ctx context.Context, cfg RekognitionConfig, store storage.Provider) (*Rekognition, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newRekognition(rekognition.NewFromConfig(awsCfg), store, cfg.MaxLabels), nil
}

func newRekognition(client rekognitionAPI, store storage.Provider, maxLabels int) *Rekognition {
	if maxLabels <= 0 {
		maxLabels = 10
	}
	r := &Rekognition{client: client, store: store, maxLabels: int32(maxLabels)}
	if s3Store, ok := store.(*storage.S3Storage); ok {
		r.bucket = s3Store.Bucket()
	}
	return r
}

func (r *Rekognition) image(ctx context.Context, key string) (*types.Image, error) {
	if r.bucket != "" {
		return &types.Image{S3Object: &types.S3Object{Bucket: aws.String(r.bucket), Name: aws.String(key)}}, nil
	}
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &types.Image{Bytes: data}, nil
}

// Analyze 依次调用 DetectLabels、DetectText、DetectFaces
func (r *Rekognition) Analyze(ctx context.Context, objectKey string) (*Result, error) {
	img, err := r.image(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("rekognition: load image %s: %w", objectKey, err)
	}

	labelsOut, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:     img,
		MaxLabels: aws.Int32(r.maxLabels),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition: detect labels: %w", err)
	}

	textOut, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{Image: img})
	if err != nil {
		return nil, fmt.Errorf("rekognition: detect text: %w", err)
	}

	facesOut, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      img,
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition: detect faces: %w", err)
	}

	res := &Result{}
	for _, label := range labelsOut.Labels {
		res.Labels = append(res.Labels, aws.ToString(label.Name))
		for _, c := range label.Categories {
			res.Categories = append(res.Categories, aws.ToString(c.Name))
		}
	}

	var lines []string
	for _, td := range textOut.TextDetections {
		if td.Type == types.TextTypesLine {
			lines = append(lines, aws.ToString(td.DetectedText))
		}
	}
	res.DetectedText = strings.Join(lines, " ")

	res.FaceCount = len(facesOut.FaceDetails)
	if res.FaceCount > 0 {
		res.AllFacesSmiling, res.AllEyesOpen = true, true
		for _, face := range facesOut.FaceDetails {
			if face.Smile == nil || !boolOf(face.Smile.Value) {
				res.AllFacesSmiling = false
			}
			if face.EyesOpen == nil || !boolOf(face.EyesOpen.Value) {
				res.AllEyesOpen = false
			}
		}
	}

	return finalize(res), nil
}

// Name 返回后端名称
func (r *Rekognition) Name() string { return "rekognition" }

// boolOf 兼容 SDK 中 bool 与 *bool 两种字段形式
func boolOf(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case *bool:
		return b != nil && *b
	}
	return false
}
