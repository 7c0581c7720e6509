package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

// FindByID 同时加载作业与学生信息
func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Preload("Assignment").Preload("Student").First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) ExistsForStudent(assignmentID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Count(&count).Error
	return count > 0, err
}

// UpdateGrade 只更新评分相关字段
func (r *SubmissionRepository) UpdateGrade(submission *model.Submission) error {
	return r.DB.Model(&model.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"score":     submission.Score,
			"feedback":  submission.Feedback,
			"graded_at": submission.GradedAt,
		}).Error
}
