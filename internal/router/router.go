package router

import (
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/config"
	"github.com/careguardpe-bit/careguard-backend/internal/handler"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/middleware"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"
	"github.com/careguardpe-bit/careguard-backend/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// documentsURLPrefix is where stored documents are served from.
const documentsURLPrefix = "/uploads/documents"

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB
//
// notificador receives new submissions for confirmation and may be nil.
// mailCB may be nil when mail is disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notificador service.Notificador, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.ErrorHandler())

	// ── Infrastructure ───────────────────────────────────────────────────────
	store := infra.NewDocumentStore(cfg.UploadDir)

	// ── Repositories ─────────────────────────────────────────────────────────
	paisRepo := repository.NewPaisRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	documentoRepo := repository.NewDocumentoRepository(db)
	postulacionRepo := repository.NewPostulacionRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	paisSvc := service.NewPaisService(paisRepo)
	usuarioSvc := service.NewUsuarioService(usuarioRepo)
	documentoSvc := service.NewDocumentoService(usuarioRepo, documentoRepo, store, cfg.MaxUploadBytes(), documentsURLPrefix)
	postulacionSvc := service.NewPostulacionService(usuarioRepo, postulacionRepo, notificador)
	statsSvc := service.NewStatsService(statsRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	paisesH := handler.NewPaisesHandler(paisSvc)
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	documentosH := handler.NewDocumentosHandler(documentoSvc, cfg.MaxUploadBytes())
	postulacionesH := handler.NewPostulacionesHandler(postulacionSvc)
	sistemaH := handler.NewSistemaHandler(cfg, statsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Operational endpoints are not rate limited
	r.GET("/", sistemaH.Root)
	r.GET("/health", handler.Health(db, rdb, mailCB))
	r.GET("/test-db", sistemaH.TestDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/api", middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	{
		api.GET("/test", sistemaH.APITest)
		api.GET("/stats", sistemaH.Stats)

		api.GET("/countries", paisesH.Listar)
		api.POST("/countries/select", paisesH.Seleccionar)

		api.POST("/users", usuariosH.Guardar)
		api.GET("/users/:email", usuariosH.ObtenerPorEmail)

		api.POST("/documents", documentosH.Subir)
		api.GET("/documents/:user_email", documentosH.ListarPorEmail)

		api.POST("/submissions", postulacionesH.Crear)
		api.GET("/submissions/:user_email", postulacionesH.ListarPorEmail)
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(handler.NoRoute)

	return r
}
