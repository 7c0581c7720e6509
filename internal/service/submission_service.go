package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmitRequest struct {
	AssignmentID uint   `json:"assignment_id" binding:"required"`
	Content      string `json:"content" binding:"required"`
}

type GradeRequest struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback"`
}

// SubmissionService 作业提交与评分，成功后触发成就事件
type SubmissionService struct {
	SubmissionRepo *repository.SubmissionRepository
	AssignmentRepo *repository.AssignmentRepository
	UserRepo       *repository.UserRepository
	Achievements   *AchievementService
	// 为空时不发送评分通知
	Notifier GradeNotifier
	// 优秀成绩阈值（百分比）
	PerfectThreshold float64
	NotifyTimeout    time.Duration

	now func() time.Time
}

func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	assignmentRepo *repository.AssignmentRepository,
	userRepo *repository.UserRepository,
	achievements *AchievementService,
	notifier GradeNotifier,
	perfectThreshold float64,
) *SubmissionService {
	return &SubmissionService{
		SubmissionRepo:   submissionRepo,
		AssignmentRepo:   assignmentRepo,
		UserRepo:         userRepo,
		Achievements:     achievements,
		Notifier:         notifier,
		PerfectThreshold: perfectThreshold,
		NotifyTimeout:    15 * time.Second,
		now:              time.Now,
	}
}

// IsPerfectScore 得分占满分比例达到阈值
func IsPerfectScore(score, maxScore int, threshold float64) bool {
	if score <= 0 || maxScore <= 0 {
		return false
	}
	return float64(score)/float64(maxScore)*100 >= threshold
}

func (s *SubmissionService) Submit(ctx context.Context, studentID uint, req SubmitRequest) (*model.Submission, error) {
	assignment, err := s.AssignmentRepo.FindByID(req.AssignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.SubmissionRepo.ExistsForStudent(assignment.ID, studentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrSubmissionExists
	}

	submission := &model.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		Content:      req.Content,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.SubmissionRepo.Create(submission); err != nil {
		return nil, err
	}

	// 成就失败不影响提交结果
	if _, err := s.Achievements.RecordAssignmentSubmission(ctx, studentID, assignment.ID, &submission.SubmittedAt); err != nil {
		logger.Log.Error("Failed to record submission achievement",
			zap.Uint("user_id", studentID),
			zap.Uint("submission_id", submission.ID),
			zap.Error(err),
		)
	}

	return submission, nil
}

// Grade 评分。每次达到阈值都会记一次优秀成绩，首次评分时通知学生。
func (s *SubmissionService) Grade(ctx context.Context, graderID, submissionID uint, req GradeRequest) (*model.Submission, error) {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}

	maxScore := submission.Assignment.MaxScore
	if req.Score == nil || *req.Score < 0 || *req.Score > maxScore {
		return nil, util.ErrInvalidScore
	}

	wasGraded := submission.IsGraded()
	gradedAt := s.now().UTC()
	score := *req.Score
	submission.Score = &score
	submission.Feedback = req.Feedback
	submission.GradedAt = &gradedAt

	if err := s.SubmissionRepo.UpdateGrade(submission); err != nil {
		return nil, err
	}

	if IsPerfectScore(score, maxScore, s.PerfectThreshold) {
		if _, err := s.Achievements.RecordPerfectScore(ctx, submission.StudentID); err != nil {
			logger.Log.Error("Failed to record perfect score achievement",
				zap.Uint("user_id", submission.StudentID),
				zap.Uint("submission_id", submission.ID),
				zap.Error(err),
			)
		}
	}

	if !wasGraded && s.Notifier != nil {
		s.notifyGrade(submission, graderID)
	}

	return submission, nil
}

// notifyGrade 异步发送通知，失败只记录日志
func (s *SubmissionService) notifyGrade(submission *model.Submission, graderID uint) {
	n := GradeNotification{
		AssignmentTitle: submission.Assignment.Title,
		Score:           *submission.Score,
		MaxScore:        submission.Assignment.MaxScore,
		Feedback:        submission.Feedback,
	}
	if submission.Student != nil {
		n.StudentEmail = submission.Student.Email
		n.StudentName = submission.Student.FullName()
	}
	if grader, err := s.UserRepo.FindByID(graderID); err == nil {
		n.TeacherName = grader.FullName()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.NotifyTimeout)
		defer cancel()
		if err := s.Notifier.SendGradeNotification(ctx, n); err != nil {
			logger.Log.Warn("Failed to send grade notification",
				zap.Uint("submission_id", submission.ID),
				zap.Error(err),
			)
		}
	}()
}
