package photos

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/internal/apperr"
)

const (
	maxCommenterName = 100
	maxCommentLength = 2000
)

// ListComments 照片的评论，按时间升序
func (s *Service) ListComments(ctx context.Context, photoID uint) ([]models.Comment, error) {
	comments, err := s.comments.FindByPhoto(ctx, photoID)
	if err != nil {
		return nil, apperr.Persistence("photos.ListComments", err)
	}
	return comments, nil
}

// AddComment 添加评论，评论者名称不绑定账号
func (s *Service) AddComment(ctx context.Context, photoID uint, commenterName, content string) (*models.Comment, error) {
	const op = "photos.AddComment"

	commenterName = strings.TrimSpace(commenterName)
	content = strings.TrimSpace(content)
	if commenterName == "" || content == "" {
		return nil, apperr.Validation(op, "commenter name and content are required")
	}
	if utf8.RuneCountInString(commenterName) > maxCommenterName || utf8.RuneCountInString(content) > maxCommentLength {
		return nil, apperr.Validation(op, "comment is too long")
	}

	exists, err := s.photos.Exists(ctx, photoID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if !exists {
		return nil, apperr.NotFound(op, "photo not found")
	}

	comment := &models.Comment{PhotoID: photoID, CommenterName: commenterName, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return comment, nil
}
