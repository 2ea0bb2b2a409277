package mysql

import (
	"miniblog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	DB *gorm.DB
}

// recency is the listing order for every post view: newest first, id as
// tie-breaker. Never rely on insertion order.
const recency = "created_at DESC, id DESC"

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

// Update writes the post row only; preloaded associations stay
// untouched.
func (r *PostRepository) Update(post *model.Post) error {
	return r.DB.Omit(clause.Associations).Save(post).Error
}

func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.Preload("Author").Preload("Group").First(&post, id).Error
	return &post, err
}

// ListAll returns every post, newest first. Pagination happens in the
// handler, so no offset/limit here.
func (r *PostRepository) ListAll() ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Order(recency).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) ListByGroup(groupID uint64) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Where("group_id = ?", groupID).
		Order(recency).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) ListByAuthor(authorID uint64) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Where("author_id = ?", authorID).
		Order(recency).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) CountByAuthor(authorID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}
