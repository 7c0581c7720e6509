package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/logger"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GradeNotification 发送给邮件服务的评分通知
type GradeNotification struct {
	StudentEmail    string `json:"studentEmail"`
	StudentName     string `json:"studentName"`
	AssignmentTitle string `json:"assignmentTitle"`
	Score           int    `json:"score"`
	MaxScore        int    `json:"maxScore"`
	Feedback        string `json:"feedback"`
	TeacherName     string `json:"teacherName"`
}

type GradeNotifier interface {
	SendGradeNotification(ctx context.Context, n GradeNotification) error
}

type NotificationService struct {
	baseURL string
	client  *http.Client
}

func NewNotificationService(cfg config.NotificationConfig) *NotificationService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{
		baseURL: strings.TrimRight(cfg.EmailServiceURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *NotificationService) SendGradeNotification(ctx context.Context, n GradeNotification) error {
	jsonData, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send-grade-notification", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send grade notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	logger.Log.Info("Grade notification sent", zap.String("email", n.StudentEmail))
	return nil
}
