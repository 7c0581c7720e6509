package model

import "time"

type Submission struct {
	BaseModel
	AssignmentID uint        `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignmentId"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	StudentID    uint        `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"studentId"`
	Student      *User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Content      string      `gorm:"type:text;not null" json:"content"`
	Score        *int        `json:"score"`
	Feedback     string      `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time   `json:"submittedAt"`
	GradedAt     *time.Time  `json:"gradedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) IsGraded() bool {
	return s.Score != nil
}
