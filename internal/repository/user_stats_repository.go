package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStatsRepository struct {
	DB *gorm.DB
}

func NewUserStatsRepository(db *gorm.DB) *UserStatsRepository {
	return &UserStatsRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *UserStatsRepository) WithTx(tx *gorm.DB) *UserStatsRepository {
	return &UserStatsRepository{DB: tx}
}

// GetOrCreate 获取用户统计并加行锁，不存在时创建。
// 探测是否存在时不加锁：MySQL 对不存在的行加 FOR UPDATE 会持有间隙锁，
// 两个事务随后同时插入会死锁。并发首次创建依赖 user_id 唯一索引，冲突时忽略插入。
func (r *UserStatsRepository) GetOrCreate(userID uint) (*model.UserStats, error) {
	var probe model.UserStats
	res := r.DB.Select("id").Where("user_id = ?", userID).Limit(1).Find(&probe)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		fresh := model.UserStats{UserID: userID, Level: 1}
		err := r.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&fresh).Error
		if err != nil {
			return nil, err
		}
	}

	return r.findForUpdate(userID)
}

func (r *UserStatsRepository) findForUpdate(userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *UserStatsRepository) FindByUserID(userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.DB.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *UserStatsRepository) Save(stats *model.UserStats) error {
	return r.DB.Omit(clause.Associations).Save(stats).Error
}

// EachBatch 按批遍历所有统计记录
func (r *UserStatsRepository) EachBatch(size int, fn func(batch []model.UserStats) error) error {
	var batch []model.UserStats
	return r.DB.FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}
