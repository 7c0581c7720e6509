package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindAllIDs 返回全部用户 ID，供回填任务使用
func (r *UserRepository) FindAllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
