package model

import "time"

// Assignment 作业，成就引擎只读取截止时间与满分
type Assignment struct {
	BaseModel
	TopicID     uint       `gorm:"index" json:"topicId"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	MaxScore    int        `gorm:"default:100" json:"maxScore"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// IsOverdue 判断给定时间是否已超过截止时间
func (a *Assignment) IsOverdue(at time.Time) bool {
	return a.DueDate != nil && at.After(*a.DueDate)
}
