package model

import "time"

// AchievementRecord 用户在某个成就上的进度，(user_id, achievement_id) 唯一
type AchievementRecord struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID          uint       `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	User            *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AchievementID   string     `gorm:"size:50;not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	CurrentProgress int        `gorm:"default:0" json:"currentProgress"`
	IsCompleted     bool       `gorm:"default:false;index" json:"isCompleted"`
	IsViewed        bool       `gorm:"default:false" json:"isViewed"`
	CompletedAt     *time.Time `json:"completedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (AchievementRecord) TableName() string {
	return "achievement_records"
}
