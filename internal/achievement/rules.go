package achievement

import (
	"fmt"
	"learnhub_backend/internal/model"
	"time"

	"gorm.io/datatypes"
)

// ConsistencyMode 决定连续提交天数与哪一个“上次提交日期”比较
type ConsistencyMode string

const (
	// PreviousDate 与本次提交之前记录的日期比较
	PreviousDate ConsistencyMode = "previous_date"
	// Legacy 与已被覆盖为今天的日期比较，连续天数因此总是 1
	Legacy ConsistencyMode = "legacy"
)

// ParseConsistencyMode 空字符串视为 PreviousDate
func ParseConsistencyMode(s string) (ConsistencyMode, error) {
	switch ConsistencyMode(s) {
	case "", PreviousDate:
		return PreviousDate, nil
	case Legacy:
		return Legacy, nil
	}
	return "", fmt.Errorf("unknown consistency mode %q", s)
}

// Progress 某个成就的新进度值
type Progress struct {
	ID    ID
	Value int
}

// Day 将时间投影到 loc 所在的日历日，统一以 UTC 零点表示
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOf(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

func toDate(day time.Time) *datatypes.Date {
	d := datatypes.Date(day)
	return &d
}

// daysBetween 两个日历日之间相差的天数
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ApplyVisit 记录一次每日访问。同一天重复访问返回 false 且不修改任何字段。
func ApplyVisit(s *model.UserStats, today time.Time) bool {
	last := dateOf(s.LastVisitDate)
	if last != nil && last.Equal(today) {
		return false
	}

	if last != nil && daysBetween(*last, today) == 1 {
		s.DailyStreak++
	} else {
		s.DailyStreak = 1
	}
	s.LastVisitDate = toDate(today)
	return true
}

// VisitProgress 访问事件影响的成就
func VisitProgress(s *model.UserStats) []Progress {
	return []Progress{
		{DailyStreak3, s.DailyStreak},
		{DailyStreak7, s.DailyStreak},
		{DailyStreak30, s.DailyStreak},
	}
}

// ApplySubmission 记录一次作业提交，更新累计数、当日数和连续提交天数。
func ApplySubmission(s *model.UserStats, today time.Time, mode ConsistencyMode) {
	previous := dateOf(s.LastAssignmentDate)

	s.AssignmentsCompleted++

	if previous != nil && previous.Equal(today) {
		s.AssignmentsToday++
	} else {
		s.AssignmentsToday = 1
		s.LastAssignmentDate = toDate(today)
	}

	reference := previous
	if mode == Legacy {
		reference = dateOf(s.LastAssignmentDate)
	}

	gap := -1
	if reference != nil {
		gap = daysBetween(*reference, today)
	}

	// 只有相隔恰好一天才延续，同一天再次提交也重置为 1
	if gap == 1 {
		s.ConsistentDays++
	} else {
		s.ConsistentDays = 1
	}
}

// SubmissionProgress 提交事件影响的成就，顺序固定
func SubmissionProgress(s *model.UserStats) []Progress {
	return []Progress{
		{AssignmentsCompleted3, s.AssignmentsCompleted},
		{AssignmentsCompleted10, s.AssignmentsCompleted},
		{AssignmentsCompleted25, s.AssignmentsCompleted},
		{FastLearner, s.AssignmentsToday},
		{ConsistentLearner, s.ConsistentDays},
	}
}

// IsEarly 提交时间早于截止时间
func IsEarly(submittedAt time.Time, dueDate *time.Time) bool {
	return dueDate != nil && submittedAt.Before(*dueDate)
}

// ApplyEarlySubmission 记录一次提前提交
func ApplyEarlySubmission(s *model.UserStats) []Progress {
	s.EarlySubmissions++
	return []Progress{{EarlyBird, s.EarlySubmissions}}
}

// ApplyPerfectScore 记录一次优秀成绩，返回需要更新的成就。
// 首次优秀成绩时 first_perfect 排在最前。
func ApplyPerfectScore(s *model.UserStats) []Progress {
	s.PerfectScores++

	var out []Progress
	if !s.FirstPerfect {
		s.FirstPerfect = true
		out = append(out, Progress{FirstPerfect, 1})
	}
	return append(out,
		Progress{PerfectScore5, s.PerfectScores},
		Progress{PerfectScore15, s.PerfectScores},
	)
}

func ApplyTopicCompletion(s *model.UserStats) []Progress {
	s.TopicsCompleted++
	return []Progress{
		{TopicsCompleted5, s.TopicsCompleted},
		{TopicsCompleted15, s.TopicsCompleted},
	}
}

func ApplyHelpfulComment(s *model.UserStats) []Progress {
	s.HelpfulComments++
	return []Progress{{HelpfulStudent, s.HelpfulComments}}
}

// AwardXP 增加 XP 并重新计算等级
func AwardXP(s *model.UserStats, xp int) {
	if xp > 0 {
		s.TotalXP += xp
	}
	s.Level, s.LevelProgress = LevelFor(s.TotalXP)
}

// Advance 将进度写入记录并在首次达到上限时标记完成。
// 进度被截断到 [0, MaxProgress]；已完成的记录保持满进度。
// 返回值表示本次调用是否触发了完成。
func Advance(rec *model.AchievementRecord, def Definition, value int, now time.Time) bool {
	if rec.IsCompleted {
		rec.CurrentProgress = def.MaxProgress
		return false
	}

	if value > def.MaxProgress {
		value = def.MaxProgress
	}
	if value < 0 {
		value = 0
	}
	rec.CurrentProgress = value

	if rec.CurrentProgress < def.MaxProgress {
		return false
	}

	completedAt := now
	rec.IsCompleted = true
	rec.CompletedAt = &completedAt
	return true
}

// Percentage 进度百分比
func Percentage(current int, def Definition) float64 {
	return float64(current) / float64(def.MaxProgress) * 100
}
