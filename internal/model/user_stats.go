package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserStats 用户成就统计，每个用户一行，首次事件时懒创建
type UserStats struct {
	ID     uint  `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID uint  `gorm:"not null;uniqueIndex" json:"userId"`
	User   *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	DailyStreak   int             `gorm:"default:0" json:"dailyStreak"`
	LastVisitDate *datatypes.Date `json:"lastVisitDate"`

	AssignmentsCompleted int             `gorm:"default:0" json:"assignmentsCompleted"`
	PerfectScores        int             `gorm:"default:0" json:"perfectScores"`
	TopicsCompleted      int             `gorm:"default:0" json:"topicsCompleted"`
	AssignmentsToday     int             `gorm:"default:0" json:"assignmentsToday"`
	LastAssignmentDate   *datatypes.Date `json:"lastAssignmentDate"`
	ConsistentDays       int             `gorm:"default:0" json:"consistentDays"`
	FirstPerfect         bool            `gorm:"default:false" json:"firstPerfect"`
	EarlySubmissions     int             `gorm:"default:0" json:"earlySubmissions"`
	HelpfulComments      int             `gorm:"default:0" json:"helpfulComments"`

	TotalXP       int `gorm:"column:total_xp;default:0" json:"totalXp"`
	Level         int `gorm:"default:1" json:"level"`
	LevelProgress int `gorm:"default:0" json:"levelProgress"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UserStats) TableName() string {
	return "user_stats"
}
