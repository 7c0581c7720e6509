package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AchievementEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_events_total",
			Help: "Number of recorded achievement events",
		},
		[]string{"event", "result"},
	)

	AchievementsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_completed_total",
			Help: "Number of achievements completed by users",
		},
		[]string{"achievement"},
	)

	XPAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "achievement_xp_awarded_total",
			Help: "Total XP awarded for completed achievements",
		},
	)
)

var registerOnce sync.Once

// Init 注册所有指标，可重复调用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AchievementEvents)
		prometheus.MustRegister(AchievementsCompleted)
		prometheus.MustRegister(XPAwarded)
	})
}

// RecordAchievementEvent 记录一次成就事件及其结果
func RecordAchievementEvent(event string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	AchievementEvents.WithLabelValues(event, result).Inc()
}

// RecordCompletion 记录成就完成与发放的 XP
func RecordCompletion(achievementID string, xp int) {
	AchievementsCompleted.WithLabelValues(achievementID).Inc()
	if xp > 0 {
		XPAwarded.Add(float64(xp))
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
