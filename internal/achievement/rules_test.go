package achievement

import (
	"learnhub_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time { return day0.AddDate(0, 0, n) }

func TestDay(t *testing.T) {
	almaty := time.FixedZone("Asia/Almaty", 5*60*60)
	late := time.Date(2025, 3, 10, 21, 30, 0, 0, time.UTC)

	assert.Equal(t, day0, Day(late, time.UTC))
	assert.Equal(t, dayN(1), Day(late, almaty))
}

func TestApplyVisit(t *testing.T) {
	s := &model.UserStats{}

	require.True(t, ApplyVisit(s, dayN(0)))
	assert.Equal(t, 1, s.DailyStreak)

	require.True(t, ApplyVisit(s, dayN(1)))
	require.True(t, ApplyVisit(s, dayN(2)))
	assert.Equal(t, 3, s.DailyStreak)
}

func TestApplyVisit_SameDayIdempotent(t *testing.T) {
	s := &model.UserStats{}
	ApplyVisit(s, dayN(0))
	ApplyVisit(s, dayN(1))

	before := *s.LastVisitDate
	assert.False(t, ApplyVisit(s, dayN(1)))
	assert.Equal(t, 2, s.DailyStreak)
	assert.Equal(t, before, *s.LastVisitDate)
}

func TestApplyVisit_GapResetsStreak(t *testing.T) {
	s := &model.UserStats{}
	ApplyVisit(s, dayN(0))
	ApplyVisit(s, dayN(1))
	ApplyVisit(s, dayN(2))

	ApplyVisit(s, dayN(5))
	assert.Equal(t, 1, s.DailyStreak)
	assert.Equal(t, dayN(5), *dateOf(s.LastVisitDate))
}

func TestApplySubmission_SameDay(t *testing.T) {
	s := &model.UserStats{}
	for i := 0; i < 3; i++ {
		ApplySubmission(s, dayN(0), PreviousDate)
	}

	assert.Equal(t, 3, s.AssignmentsCompleted)
	assert.Equal(t, 3, s.AssignmentsToday)
	assert.Equal(t, 1, s.ConsistentDays)
}

func TestApplySubmission_TodayResetsOnNewDay(t *testing.T) {
	s := &model.UserStats{}
	ApplySubmission(s, dayN(0), PreviousDate)
	ApplySubmission(s, dayN(0), PreviousDate)
	ApplySubmission(s, dayN(1), PreviousDate)

	assert.Equal(t, 1, s.AssignmentsToday)
	assert.Equal(t, dayN(1), *dateOf(s.LastAssignmentDate))
}

func TestApplySubmission_ConsistentDays(t *testing.T) {
	tests := []struct {
		name string
		mode ConsistencyMode
		days []int
		want int
	}{
		{"previous date consecutive", PreviousDate, []int{0, 1, 2, 3, 4}, 5},
		{"previous date same day resets", PreviousDate, []int{0, 1, 1}, 1},
		{"previous date same day then next day", PreviousDate, []int{0, 1, 1, 2}, 2},
		{"previous date gap resets", PreviousDate, []int{0, 1, 2, 5}, 1},
		{"legacy consecutive never grows", Legacy, []int{0, 1, 2, 3, 4}, 1},
		{"legacy same day", Legacy, []int{0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &model.UserStats{}
			for _, d := range tt.days {
				ApplySubmission(s, dayN(d), tt.mode)
			}
			assert.Equal(t, tt.want, s.ConsistentDays)
			assert.Equal(t, len(tt.days), s.AssignmentsCompleted)
		})
	}
}

func TestParseConsistencyMode(t *testing.T) {
	m, err := ParseConsistencyMode("")
	require.NoError(t, err)
	assert.Equal(t, PreviousDate, m)

	m, err = ParseConsistencyMode("legacy")
	require.NoError(t, err)
	assert.Equal(t, Legacy, m)

	_, err = ParseConsistencyMode("weekly")
	assert.Error(t, err)
}

func TestApplyPerfectScore(t *testing.T) {
	s := &model.UserStats{}

	first := ApplyPerfectScore(s)
	assert.Equal(t, []Progress{{FirstPerfect, 1}, {PerfectScore5, 1}, {PerfectScore15, 1}}, first)
	assert.True(t, s.FirstPerfect)

	second := ApplyPerfectScore(s)
	assert.Equal(t, []Progress{{PerfectScore5, 2}, {PerfectScore15, 2}}, second)
	assert.True(t, s.FirstPerfect)
}

func TestIsEarly(t *testing.T) {
	due := dayN(2)
	assert.True(t, IsEarly(dayN(1), &due))
	assert.False(t, IsEarly(dayN(2), &due))
	assert.False(t, IsEarly(dayN(3), &due))
	assert.False(t, IsEarly(dayN(1), nil))
}

func TestAwardXP(t *testing.T) {
	s := &model.UserStats{Level: 1}
	AwardXP(s, 100)
	AwardXP(s, 150)

	assert.Equal(t, 250, s.TotalXP)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 75, s.LevelProgress)

	AwardXP(s, -40)
	assert.Equal(t, 250, s.TotalXP)
}

func TestAdvance(t *testing.T) {
	def, _ := Lookup(AssignmentsCompleted3)
	now := dayN(0)
	rec := &model.AchievementRecord{}

	assert.False(t, Advance(rec, def, 2, now))
	assert.Equal(t, 2, rec.CurrentProgress)
	assert.Nil(t, rec.CompletedAt)

	assert.True(t, Advance(rec, def, 999, now))
	assert.Equal(t, 3, rec.CurrentProgress)
	assert.True(t, rec.IsCompleted)
	require.NotNil(t, rec.CompletedAt)

	later := dayN(3)
	assert.False(t, Advance(rec, def, 4, later))
	assert.False(t, Advance(rec, def, 1, later))
	assert.True(t, rec.IsCompleted)
	assert.Equal(t, 3, rec.CurrentProgress)
	assert.Equal(t, now, *rec.CompletedAt)
}

func TestAdvance_OverwritesBeforeCompletion(t *testing.T) {
	def, _ := Lookup(DailyStreak7)
	rec := &model.AchievementRecord{}

	Advance(rec, def, 5, dayN(0))
	Advance(rec, def, 1, dayN(1))
	assert.Equal(t, 1, rec.CurrentProgress)

	Advance(rec, def, -3, dayN(2))
	assert.Equal(t, 0, rec.CurrentProgress)
}

func TestPercentage(t *testing.T) {
	def, _ := Lookup(DailyStreak3)
	assert.InDelta(t, 66.666, Percentage(2, def), 0.01)
	assert.Equal(t, 100.0, Percentage(3, def))
}
