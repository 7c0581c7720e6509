package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/achievement"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/tracing"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EventDailyVisit      = "daily_visit"
	EventSubmission      = "assignment_submission"
	EventPerfectScore    = "perfect_score"
	EventTopicCompletion = "topic_completion"
	EventHelpfulComment  = "helpful_comment"
	EventManualProgress  = "manual_progress"
)

type AchievementService struct {
	DB              *gorm.DB
	StatsRepo       *repository.UserStatsRepository
	AchievementRepo *repository.AchievementRepository
	AssignmentRepo  *repository.AssignmentRepository
	Locker          UserLocker

	now      func() time.Time
	location *time.Location
	mode     achievement.ConsistencyMode
}

type AchievementOption func(*AchievementService)

// WithClock 替换时钟，测试中固定“今天”
func WithClock(now func() time.Time) AchievementOption {
	return func(s *AchievementService) { s.now = now }
}

func WithLocation(loc *time.Location) AchievementOption {
	return func(s *AchievementService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithConsistencyMode(mode achievement.ConsistencyMode) AchievementOption {
	return func(s *AchievementService) { s.mode = mode }
}

func WithLocker(locker UserLocker) AchievementOption {
	return func(s *AchievementService) {
		if locker != nil {
			s.Locker = locker
		}
	}
}

func NewAchievementService(
	db *gorm.DB,
	statsRepo *repository.UserStatsRepository,
	achievementRepo *repository.AchievementRepository,
	assignmentRepo *repository.AssignmentRepository,
	opts ...AchievementOption,
) *AchievementService {
	s := &AchievementService{
		DB:              db,
		StatsRepo:       statsRepo,
		AchievementRepo: achievementRepo,
		AssignmentRepo:  assignmentRepo,
		Locker:          NewLocalUserLocker(),
		now:             time.Now,
		location:        time.UTC,
		mode:            achievement.PreviousDate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AchievementView 成就定义与用户进度的合并视图
type AchievementView struct {
	achievement.Definition
	CurrentProgress    int        `json:"current_progress"`
	IsCompleted        bool       `json:"is_completed"`
	IsViewed           bool       `json:"is_viewed"`
	CompletedAt        *time.Time `json:"completed_at"`
	ProgressPercentage float64    `json:"progress_percentage"`
}

func newAchievementView(def achievement.Definition, rec *model.AchievementRecord) AchievementView {
	return AchievementView{
		Definition:         def,
		CurrentProgress:    rec.CurrentProgress,
		IsCompleted:        rec.IsCompleted,
		IsViewed:           rec.IsViewed,
		CompletedAt:        rec.CompletedAt,
		ProgressPercentage: achievement.Percentage(rec.CurrentProgress, def),
	}
}

type StatsView struct {
	DailyStreak          int  `json:"daily_streak"`
	AssignmentsCompleted int  `json:"assignments_completed"`
	PerfectScores        int  `json:"perfect_scores"`
	TopicsCompleted      int  `json:"topics_completed"`
	AssignmentsToday     int  `json:"assignments_today"`
	ConsistentDays       int  `json:"consistent_days"`
	FirstPerfect         bool `json:"first_perfect"`
	EarlySubmissions     int  `json:"early_submissions"`
	HelpfulComments      int  `json:"helpful_comments"`
	TotalXP              int  `json:"total_xp"`
	Level                int  `json:"level"`
	LevelProgress        int  `json:"level_progress"`
	XPToNextLevel        int  `json:"xp_to_next_level"`
}

func newStatsView(s *model.UserStats) *StatsView {
	return &StatsView{
		DailyStreak:          s.DailyStreak,
		AssignmentsCompleted: s.AssignmentsCompleted,
		PerfectScores:        s.PerfectScores,
		TopicsCompleted:      s.TopicsCompleted,
		AssignmentsToday:     s.AssignmentsToday,
		ConsistentDays:       s.ConsistentDays,
		FirstPerfect:         s.FirstPerfect,
		EarlySubmissions:     s.EarlySubmissions,
		HelpfulComments:      s.HelpfulComments,
		TotalXP:              s.TotalXP,
		Level:                s.Level,
		LevelProgress:        s.LevelProgress,
		XPToNextLevel:        achievement.XPToNextLevel(s.TotalXP),
	}
}

// EventResult 一次事件处理后的统计快照与新完成的成就
type EventResult struct {
	Stats     *StatsView        `json:"stats"`
	Completed []AchievementView `json:"completed"`

	records map[achievement.ID]*model.AchievementRecord
}

// eventFunc 在事务内修改统计并返回需要更新进度的成就
type eventFunc func(tx *gorm.DB, stats *model.UserStats, today time.Time) ([]achievement.Progress, error)

func (s *AchievementService) today() (time.Time, time.Time) {
	now := s.now()
	return now, achievement.Day(now, s.location)
}

// record 加用户锁，在单个事务内完成统计更新与成就进度更新
func (s *AchievementService) record(ctx context.Context, event string, userID uint, fn eventFunc) (result *EventResult, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "achievement."+event)
	span.SetAttributes(attribute.Int64("user.id", int64(userID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		monitoring.RecordAchievementEvent(event, err)
	}()

	unlock, err := s.Locker.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user %d: %w", userID, err)
	}
	defer unlock()

	now, today := s.today()
	result = &EventResult{records: make(map[achievement.ID]*model.AchievementRecord)}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statsRepo := s.StatsRepo.WithTx(tx)
		achievementRepo := s.AchievementRepo.WithTx(tx)

		stats, err := statsRepo.GetOrCreate(userID)
		if err != nil {
			return err
		}

		progress, err := fn(tx, stats, today)
		if err != nil {
			return err
		}

		for _, p := range progress {
			def, ok := achievement.Lookup(p.ID)
			if !ok {
				continue
			}
			rec, err := achievementRepo.GetOrCreate(userID, string(p.ID))
			if err != nil {
				return err
			}
			if achievement.Advance(rec, def, p.Value, now) {
				achievement.AwardXP(stats, def.RewardXP)
				result.Completed = append(result.Completed, newAchievementView(def, rec))
			}
			if err := achievementRepo.Save(rec); err != nil {
				return err
			}
			result.records[p.ID] = rec
		}

		if err := statsRepo.Save(stats); err != nil {
			return err
		}
		result.Stats = newStatsView(stats)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record %s for user %d: %w", event, userID, err)
	}

	for _, view := range result.Completed {
		monitoring.RecordCompletion(string(view.ID), view.RewardXP)
		logger.Log.Info("Achievement completed",
			zap.Uint("user_id", userID),
			zap.String("achievement", string(view.ID)),
			zap.Int("reward_xp", view.RewardXP),
		)
	}
	return result, nil
}

// RecordDailyVisit 记录每日访问，同一天重复调用无效果
func (s *AchievementService) RecordDailyVisit(ctx context.Context, userID uint) (*EventResult, error) {
	return s.record(ctx, EventDailyVisit, userID, func(_ *gorm.DB, stats *model.UserStats, today time.Time) ([]achievement.Progress, error) {
		if !achievement.ApplyVisit(stats, today) {
			return nil, nil
		}
		return achievement.VisitProgress(stats), nil
	})
}

// RecordAssignmentSubmission 记录作业提交，submittedAt 为空时使用当前时间。
// 调用方需保证每次真实提交只调用一次。
func (s *AchievementService) RecordAssignmentSubmission(ctx context.Context, userID, assignmentID uint, submittedAt *time.Time) (*EventResult, error) {
	return s.record(ctx, EventSubmission, userID, func(tx *gorm.DB, stats *model.UserStats, today time.Time) ([]achievement.Progress, error) {
		at := s.now()
		if submittedAt != nil {
			at = *submittedAt
		}

		achievement.ApplySubmission(stats, today, s.mode)
		progress := achievement.SubmissionProgress(stats)

		assignment, err := s.AssignmentRepo.WithTx(tx).FindByID(assignmentID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			logger.Log.Debug("Assignment not found, skip early submission check", zap.Uint("assignment_id", assignmentID))
		case err != nil:
			return nil, err
		case achievement.IsEarly(at, assignment.DueDate):
			progress = append(progress, achievement.ApplyEarlySubmission(stats)...)
		}
		return progress, nil
	})
}

func (s *AchievementService) RecordPerfectScore(ctx context.Context, userID uint) (*EventResult, error) {
	return s.record(ctx, EventPerfectScore, userID, func(_ *gorm.DB, stats *model.UserStats, _ time.Time) ([]achievement.Progress, error) {
		return achievement.ApplyPerfectScore(stats), nil
	})
}

// RecordTopicCompletion topicID 仅用于日志，不做去重
func (s *AchievementService) RecordTopicCompletion(ctx context.Context, userID, topicID uint) (*EventResult, error) {
	logger.Log.Debug("Topic completed", zap.Uint("user_id", userID), zap.Uint("topic_id", topicID))
	return s.record(ctx, EventTopicCompletion, userID, func(_ *gorm.DB, stats *model.UserStats, _ time.Time) ([]achievement.Progress, error) {
		return achievement.ApplyTopicCompletion(stats), nil
	})
}

func (s *AchievementService) RecordHelpfulComment(ctx context.Context, userID uint) (*EventResult, error) {
	return s.record(ctx, EventHelpfulComment, userID, func(_ *gorm.DB, stats *model.UserStats, _ time.Time) ([]achievement.Progress, error) {
		return achievement.ApplyHelpfulComment(stats), nil
	})
}

// UpdateAchievementProgress 直接设置某个成就的进度。
// 未知成就返回 (nil, nil) 且不创建记录。
func (s *AchievementService) UpdateAchievementProgress(ctx context.Context, userID uint, achievementID string, value int) (*model.AchievementRecord, error) {
	id, ok := achievement.ParseID(achievementID)
	if !ok {
		logger.Log.Warn("Ignoring progress for unknown achievement",
			zap.Uint("user_id", userID),
			zap.String("achievement", achievementID),
		)
		return nil, nil
	}

	result, err := s.record(ctx, EventManualProgress, userID, func(_ *gorm.DB, _ *model.UserStats, _ time.Time) ([]achievement.Progress, error) {
		return []achievement.Progress{{ID: id, Value: value}}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.records[id], nil
}

// GetUserAchievements 返回用户所有成就记录，按成就 ID 索引
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID uint) (map[achievement.ID]AchievementView, error) {
	records, err := s.AchievementRepo.WithTx(s.DB.WithContext(ctx)).FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	views := make(map[achievement.ID]AchievementView, len(records))
	for i := range records {
		id := achievement.ID(records[i].AchievementID)
		def, ok := achievement.Lookup(id)
		if !ok {
			continue
		}
		views[id] = newAchievementView(def, &records[i])
	}
	return views, nil
}

// GetUnviewedAchievements 已完成未查看的成就，按目录顺序排列
func (s *AchievementService) GetUnviewedAchievements(ctx context.Context, userID uint) ([]AchievementView, error) {
	records, err := s.AchievementRepo.WithTx(s.DB.WithContext(ctx)).FindUnviewed(userID)
	if err != nil {
		return nil, err
	}

	views := make([]AchievementView, 0, len(records))
	for i := range records {
		def, ok := achievement.Lookup(achievement.ID(records[i].AchievementID))
		if !ok {
			continue
		}
		views = append(views, newAchievementView(def, &records[i]))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return achievement.Position(views[i].ID) < achievement.Position(views[j].ID)
	})
	return views, nil
}

// MarkAchievementViewed 记录不存在时返回 false
func (s *AchievementService) MarkAchievementViewed(ctx context.Context, userID uint, achievementID string) (bool, error) {
	return s.AchievementRepo.WithTx(s.DB.WithContext(ctx)).MarkViewed(userID, achievementID)
}

func (s *AchievementService) MarkAllAchievementsViewed(ctx context.Context, userID uint) (int64, error) {
	return s.AchievementRepo.WithTx(s.DB.WithContext(ctx)).MarkAllViewed(userID)
}

// GetUserStats 返回统计快照，不存在时创建
func (s *AchievementService) GetUserStats(ctx context.Context, userID uint) (*StatsView, error) {
	stats, err := s.StatsRepo.WithTx(s.DB.WithContext(ctx)).GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return newStatsView(stats), nil
}

// Catalog 返回全部成就定义
func (s *AchievementService) Catalog() []achievement.Definition {
	return achievement.All()
}

// Backfill 为用户补齐统计行与全部零进度成就记录
func (s *AchievementService) Backfill(ctx context.Context, userID uint) error {
	ids := achievement.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.StatsRepo.WithTx(tx).GetOrCreate(userID); err != nil {
			return err
		}
		return s.AchievementRepo.WithTx(tx).EnsureAll(userID, names)
	})
}

// RecomputeLevels 按 total_xp 重新计算所有用户的等级，返回被修正的行数
func (s *AchievementService) RecomputeLevels(ctx context.Context) (int, error) {
	fixed := 0
	err := s.StatsRepo.WithTx(s.DB.WithContext(ctx)).EachBatch(200, func(batch []model.UserStats) error {
		for i := range batch {
			stats := &batch[i]
			level, progress := achievement.LevelFor(stats.TotalXP)
			if level == stats.Level && progress == stats.LevelProgress {
				continue
			}
			stats.Level, stats.LevelProgress = level, progress
			if err := s.StatsRepo.WithTx(s.DB.WithContext(ctx)).Save(stats); err != nil {
				return err
			}
			fixed++
		}
		return nil
	})
	return fixed, err
}
