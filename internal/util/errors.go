package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrSubmissionExists    = errors.New("assignment already submitted")
	ErrInvalidScore        = errors.New("score must be between 0 and the assignment max score")
	ErrUnknownAchievement  = errors.New("unknown achievement")
	ErrAchievementNotFound = errors.New("achievement not found")
)
