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

type PostService struct {
	repo      *mysql.PostRepository
	groupRepo *mysql.GroupRepository
	userRepo  *mysql.UserRepository
	producer  *pkg.KafkaProducer
}

func NewPostService(producer *pkg.KafkaProducer) *PostService {
	return &PostService{
		repo:      &mysql.PostRepository{DB: mysql.DB},
		groupRepo: &mysql.GroupRepository{DB: mysql.DB},
		userRepo:  &mysql.UserRepository{DB: mysql.DB},
		producer:  producer,
	}
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll() ([]model.Post, error) {
	return s.repo.ListAll()
}

// ListByGroup resolves the slug and returns the group with its posts,
// newest first. Unknown slug surfaces gorm.ErrRecordNotFound.
func (s *PostService) ListByGroup(slug string) (*model.Group, []model.Post, error) {
	group, err := s.groupRepo.FindBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.repo.ListByGroup(group.ID)
	if err != nil {
		return nil, nil, err
	}
	return group, posts, nil
}

// ListByAuthor resolves the username and returns the author with their
// posts, newest first.
func (s *PostService) ListByAuthor(username string) (*model.User, []model.Post, error) {
	author, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.repo.ListByAuthor(author.ID)
	if err != nil {
		return nil, nil, err
	}
	return author, posts, nil
}

func (s *PostService) Get(id uint64) (*model.Post, error) {
	return s.repo.FindByID(id)
}

func (s *PostService) CountByAuthor(authorID uint64) (int64, error) {
	return s.repo.CountByAuthor(authorID)
}

// validate checks the submitted form fields and resolves the optional
// group slug. Returns the group (nil when none picked) and any field
// errors.
func (s *PostService) validate(text, groupSlug string) (*model.Group, FieldErrors, error) {
	fe := FieldErrors{}
	if strings.TrimSpace(text) == "" {
		fe["text"] = "Text is required."
	}
	var group *model.Group
	if groupSlug != "" {
		g, err := s.groupRepo.FindBySlug(groupSlug)
		if err != nil {
			if isRecordNotFound(err) {
				fe["group"] = "Unknown group."
			} else {
				return nil, nil, err
			}
		} else {
			group = g
		}
	}
	if len(fe) > 0 {
		return nil, fe, nil
	}
	return group, nil, nil
}

// Create persists a new post stamped with authorID. Validation failure
// comes back as FieldErrors with nothing persisted.
func (s *PostService) Create(authorID uint64, text, groupSlug, image string) (*model.Post, FieldErrors, error) {
	group, fe, err := s.validate(text, groupSlug)
	if err != nil || fe != nil {
		return nil, fe, err
	}

	post := &model.Post{
		Text:     text,
		AuthorID: authorID,
		Image:    image,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := s.repo.Create(post); err != nil {
		return nil, nil, err
	}

	s.publish("post_created", post.ID, post.AuthorID, post.Text)
	return post, nil, nil
}

// Update mutates text/group/image of an existing post. The author field
// is never touched. A non-author editor gets ErrNotAuthor.
func (s *PostService) Update(editorID, postID uint64, text, groupSlug, image string) (*model.Post, FieldErrors, error) {
	post, err := s.repo.FindByID(postID)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != editorID {
		return nil, nil, ErrNotAuthor
	}

	group, fe, err := s.validate(text, groupSlug)
	if err != nil || fe != nil {
		return nil, fe, err
	}

	post.Text = text
	if group != nil {
		post.GroupID = &group.ID
	} else {
		post.GroupID = nil
	}
	post.Group = nil
	if image != "" {
		post.Image = image
	}
	if err := s.repo.Update(post); err != nil {
		return nil, nil, err
	}
	return post, nil, nil
}

// publish emits a best-effort activity event. Publish failures are
// logged, never surfaced to the request.
func (s *PostService) publish(event string, id, authorID uint64, text string) {
	payload, _ := json.Marshal(map[string]any{
		"event":      event,
		"id":         id,
		"author_id":  authorID,
		"text":       text,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.producer.Send(ctx, pkg.MakeKeyFromID(id), payload); err != nil {
		logrus.WithError(err).WithField("event", event).Warn("activity publish failed")
	}
}
