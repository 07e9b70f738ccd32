package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/apierror"
	"github.com/careguardpe-bit/careguard-backend/internal/config"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity and reports the mailer breaker state.
// Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		mailStatus := "disabled"
		if mailCB != nil {
			mailStatus = mailCB.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"success": status == http.StatusOK,
			"ok":      status == http.StatusOK,
			"db":      dbStatus,
			"redis":   redisStatus,
			"mailer":  mailStatus,
		})
	}
}

// SistemaHandler serves the diagnostic and informational endpoints.
type SistemaHandler struct {
	cfg   *config.Config
	stats service.StatsService
	now   func() time.Time
}

func NewSistemaHandler(cfg *config.Config, stats service.StatsService) *SistemaHandler {
	return &SistemaHandler{cfg: cfg, stats: stats, now: time.Now}
}

// APITest is a liveness probe that does not touch the database.
func (h *SistemaHandler) APITest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "API funcionando correctamente",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"version":     h.cfg.APIVersion,
		"environment": h.cfg.Env,
	})
}

// TestDB runs SELECT NOW(), version() against the store.
func (h *SistemaHandler) TestDB(c *gin.Context) {
	info, err := h.stats.DBInfo(c.Request.Context())
	if err != nil {
		internalError(c, "Error conectando a la base de datos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "Conexión a PostgreSQL exitosa",
		"current_time":       info.CurrentTime,
		"postgresql_version": info.PostgreSQLVersion,
	})
}

func (h *SistemaHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		internalError(c, "Error al obtener estadísticas", err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(stats, ""))
}

// Root describes the API and its endpoints.
func (h *SistemaHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Careguard API",
		"version":     h.cfg.APIVersion,
		"environment": h.cfg.Env,
		"frontend":    h.cfg.FrontendURL,
		"endpoints": gin.H{
			"health":      "GET /health",
			"test":        "GET /api/test",
			"database":    "GET /test-db",
			"stats":       "GET /api/stats",
			"countries":   "GET /api/countries, POST /api/countries/select",
			"users":       "POST /api/users, GET /api/users/:email",
			"documents":   "POST /api/documents, GET /api/documents/:user_email",
			"submissions": "POST /api/submissions, GET /api/submissions/:user_email",
		},
	})
}

// NoRoute answers unmatched paths with 404 and the requested path.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, apierror.NotFoundRoute(c.Request.URL.Path))
}
