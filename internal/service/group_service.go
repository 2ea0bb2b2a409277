package service

import (
	"miniblog/internal/model"
	"miniblog/internal/repository/mysql"
)

type GroupService struct {
	repo *mysql.GroupRepository
}

func NewGroupService() *GroupService {
	return &GroupService{
		repo: &mysql.GroupRepository{DB: mysql.DB},
	}
}

// List feeds the group dropdown on the post form.
func (s *GroupService) List() ([]model.Group, error) {
	return s.repo.List()
}
