package controller

import (
	"bytes"
	"encoding/json"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/database"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	student     *model.User
	teacher     *model.User
	assignments *repository.AssignmentRepository
}

// asUser 模拟认证中间件
func asUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: user.ID, Role: user.Role, Email: user.Email})
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, true)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	student := &model.User{Email: "student@example.com", FirstName: "Ann", LastName: "Lee", Role: model.Student}
	teacher := &model.User{Email: "teacher@example.com", FirstName: "Bob", LastName: "Ray", Role: model.Teacher}
	require.NoError(t, users.Create(student))
	require.NoError(t, users.Create(teacher))

	assignments := repository.NewAssignmentRepository(db)
	achievements := service.NewAchievementService(
		db,
		repository.NewUserStatsRepository(db),
		repository.NewAchievementRepository(db),
		assignments,
	)
	submissions := service.NewSubmissionService(
		repository.NewSubmissionRepository(db),
		assignments,
		users,
		achievements,
		nil,
		90,
	)

	ac := NewAchievementController(achievements)
	sc := NewSubmissionController(submissions)

	r := gin.New()
	studentAPI := r.Group("/api", asUser(student))
	studentAPI.GET("/achievements", ac.GetUserAchievements)
	studentAPI.GET("/achievements/stats", ac.GetUserStats)
	studentAPI.GET("/achievements/unviewed", ac.GetUnviewedAchievements)
	studentAPI.GET("/achievements/catalog", ac.GetCatalog)
	studentAPI.POST("/achievements/visit", ac.RecordVisit)
	studentAPI.POST("/achievements/submission", ac.RecordSubmission)
	studentAPI.POST("/achievements/perfect-score", ac.RecordPerfectScore)
	studentAPI.POST("/achievements/topic-completion", ac.RecordTopicCompletion)
	studentAPI.POST("/achievements/mark-viewed", ac.MarkViewed)
	studentAPI.POST("/achievements/mark-all-viewed", ac.MarkAllViewed)
	studentAPI.POST("/submissions", sc.Submit)

	teacherAPI := r.Group("/teacher", asUser(teacher))
	teacherAPI.PUT("/submissions/:id/grade", sc.Grade)
	teacherAPI.PUT("/achievements/users/:userId/progress", ac.UpdateProgress)

	r.GET("/health", NewHealthController(db).HealthCheck)

	return &testEnv{db: db, router: r, student: student, teacher: teacher, assignments: assignments}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	code, resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", data(resp)["status"])
}

func TestAchievementController_PerfectScoreFlow(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/achievements/perfect-score", nil)
	require.Equal(t, http.StatusOK, code)
	completed := data(resp)["completed"].([]interface{})
	require.Len(t, completed, 1)
	assert.Equal(t, "first_perfect", completed[0].(map[string]interface{})["id"])

	code, resp = env.do(t, http.MethodGet, "/api/achievements", nil)
	require.Equal(t, http.StatusOK, code)
	achievements := data(resp)["achievements"].(map[string]interface{})
	first := achievements["first_perfect"].(map[string]interface{})
	assert.Equal(t, true, first["is_completed"])
	assert.Equal(t, float64(100), first["progress_percentage"])

	code, resp = env.do(t, http.MethodGet, "/api/achievements/unviewed", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, data(resp)["achievements"], 1)

	code, _ = env.do(t, http.MethodPost, "/api/achievements/mark-viewed", gin.H{"achievement_type": "first_perfect"})
	assert.Equal(t, http.StatusOK, code)

	code, resp = env.do(t, http.MethodGet, "/api/achievements/unviewed", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, data(resp)["achievements"])

	code, resp = env.do(t, http.MethodGet, "/api/achievements/stats", nil)
	require.Equal(t, http.StatusOK, code)
	stats := data(resp)["stats"].(map[string]interface{})
	assert.Equal(t, float64(100), stats["total_xp"])
	assert.Equal(t, float64(2), stats["level"])
}

func TestAchievementController_Validation(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/api/achievements/submission", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/achievements/topic-completion", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/achievements/mark-viewed", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/achievements/mark-viewed", gin.H{"achievement_type": "early_bird"})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := env.do(t, http.MethodPost, "/api/achievements/mark-all-viewed", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), data(resp)["count"])
}

func TestAchievementController_VisitAndCatalog(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/achievements/visit", nil)
	require.Equal(t, http.StatusOK, code)
	stats := data(resp)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["daily_streak"])

	code, resp = env.do(t, http.MethodGet, "/api/achievements/catalog", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, data(resp)["achievements"], 15)
}

func TestAchievementController_UpdateProgress(t *testing.T) {
	env := newTestEnv(t)
	path := "/teacher/achievements/users/" + jsonID(env.student.ID) + "/progress"

	code, _ := env.do(t, http.MethodPut, path, gin.H{"achievement_id": "no_such", "value": 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := env.do(t, http.MethodPut, path, gin.H{"achievement_id": "early_bird", "value": 5})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(resp)["isCompleted"])
	assert.Equal(t, float64(1), data(resp)["currentProgress"])
}

func TestSubmissionController(t *testing.T) {
	env := newTestEnv(t)
	assignment := &model.Assignment{Title: "Loops", MaxScore: 100}
	require.NoError(t, env.assignments.Create(assignment))

	code, _ := env.do(t, http.MethodPost, "/api/submissions", gin.H{"assignment_id": 999, "content": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := env.do(t, http.MethodPost, "/api/submissions", gin.H{"assignment_id": assignment.ID, "content": "solution"})
	require.Equal(t, http.StatusCreated, code)
	submissionID := uint(data(resp)["id"].(float64))

	code, _ = env.do(t, http.MethodPost, "/api/submissions", gin.H{"assignment_id": assignment.ID, "content": "again"})
	assert.Equal(t, http.StatusConflict, code)

	gradePath := "/teacher/submissions/" + jsonID(submissionID) + "/grade"
	code, _ = env.do(t, http.MethodPut, gradePath, gin.H{"score": 150})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPut, "/teacher/submissions/999/grade", gin.H{"score": 50})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = env.do(t, http.MethodPut, gradePath, gin.H{"score": 95, "feedback": "great"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(95), data(resp)["score"])

	code, resp = env.do(t, http.MethodGet, "/api/achievements/stats", nil)
	require.Equal(t, http.StatusOK, code)
	stats := data(resp)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["assignments_completed"])
	assert.Equal(t, float64(1), stats["perfect_scores"])
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
