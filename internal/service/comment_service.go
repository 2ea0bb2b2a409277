package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"miniblog/internal/model"
	"miniblog/internal/pkg"
	"miniblog/internal/repository/mysql"

	"github.com/sirupsen/logrus"
)

type CommentService struct {
	repo     *mysql.CommentRepository
	postRepo *mysql.PostRepository
	producer *pkg.KafkaProducer
}

func NewCommentService(producer *pkg.KafkaProducer) *CommentService {
	return &CommentService{
		repo:     &mysql.CommentRepository{DB: mysql.DB},
		postRepo: &mysql.PostRepository{DB: mysql.DB},
		producer: producer,
	}
}

// Add creates a comment bound to the author and the target post. Empty
// text is ErrEmptyComment and persists nothing; an unknown post surfaces
// gorm.ErrRecordNotFound.
func (s *CommentService) Add(authorID, postID uint64, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Text:     text,
		AuthorID: authorID,
		PostID:   postID,
	}
	if err := s.repo.Create(comment); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{
		"event":      "comment_created",
		"id":         comment.ID,
		"post_id":    postID,
		"author_id":  authorID,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.producer.Send(ctx, pkg.MakeKeyFromID(postID), payload); err != nil {
		logrus.WithError(err).Warn("activity publish failed")
	}

	return comment, nil
}

// ListForPost returns the post's comments oldest first.
func (s *CommentService) ListForPost(postID uint64) ([]model.Comment, error) {
	return s.repo.ListByPost(postID)
}
