package repository

import (
	"errors"
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: tx}
}

var userAchievementConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
	DoNothing: true,
}

// GetOrCreate 获取成就记录，不存在时以零进度创建
func (r *AchievementRepository) GetOrCreate(userID uint, achievementID string) (*model.AchievementRecord, error) {
	rec, err := r.Find(userID, achievementID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := model.AchievementRecord{UserID: userID, AchievementID: achievementID}
	if err := r.DB.Clauses(userAchievementConflict).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.Find(userID, achievementID)
}

func (r *AchievementRepository) Find(userID uint, achievementID string) (*model.AchievementRecord, error) {
	var rec model.AchievementRecord
	err := r.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AchievementRepository) Save(rec *model.AchievementRecord) error {
	return r.DB.Omit(clause.Associations).Save(rec).Error
}

func (r *AchievementRepository) FindByUserID(userID uint) ([]model.AchievementRecord, error) {
	var records []model.AchievementRecord
	err := r.DB.Where("user_id = ?", userID).Order("id").Find(&records).Error
	return records, err
}

// FindUnviewed 已完成但用户尚未查看的成就
func (r *AchievementRepository) FindUnviewed(userID uint) ([]model.AchievementRecord, error) {
	var records []model.AchievementRecord
	err := r.DB.Where("user_id = ? AND is_completed = ? AND is_viewed = ?", userID, true, false).
		Order("completed_at, id").
		Find(&records).Error
	return records, err
}

// MarkViewed 标记单个成就为已查看，记录不存在时返回 false
func (r *AchievementRepository) MarkViewed(userID uint, achievementID string) (bool, error) {
	rec, err := r.Find(userID, achievementID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.IsViewed {
		return true, nil
	}

	err = r.DB.Model(&model.AchievementRecord{}).
		Where("id = ?", rec.ID).
		Update("is_viewed", true).Error
	return err == nil, err
}

// MarkAllViewed 标记全部已完成未查看的成就，返回受影响的数量
func (r *AchievementRepository) MarkAllViewed(userID uint) (int64, error) {
	res := r.DB.Model(&model.AchievementRecord{}).
		Where("user_id = ? AND is_completed = ? AND is_viewed = ?", userID, true, false).
		Update("is_viewed", true)
	return res.RowsAffected, res.Error
}

// EnsureAll 为用户补齐缺失的成就记录，已存在的保持不变
func (r *AchievementRepository) EnsureAll(userID uint, achievementIDs []string) error {
	if len(achievementIDs) == 0 {
		return nil
	}
	records := make([]model.AchievementRecord, len(achievementIDs))
	for i, id := range achievementIDs {
		records[i] = model.AchievementRecord{UserID: userID, AchievementID: id}
	}
	return r.DB.Clauses(userAchievementConflict).Create(&records).Error
}
