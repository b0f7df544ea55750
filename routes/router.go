package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cppla/sbb/config"
	"github.com/cppla/sbb/controllers"
	"github.com/cppla/sbb/middleware"
	"github.com/cppla/sbb/repository"
	"github.com/cppla/sbb/utils"
)

// Deps carries the collaborators the router wires into controllers.
type Deps struct {
	DB    *gorm.DB
	Cache *utils.Cache
	// Registry receives the HTTP collectors and backs /metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger; the test profile keeps no files
	if cfg.IsTest() {
		r.Use(ginzap.CustomRecoveryWithZap(utils.Logger, true, utils.RecoverJSON))
	} else if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.CustomRecoveryWithZap(gl, false, utils.RecoverJSON))
	} else {
		utils.Sugar.Warnf("gin file logger unavailable, falling back to default recovery: %v", err)
		r.Use(gin.CustomRecovery(utils.RecoverJSON))
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	r.Use(middleware.NewMetrics(registry).Middleware())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", middleware.CSRFHeaderName},
		ExposeHeaders:    []string{"Content-Length", middleware.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		// Credentials cannot be combined with a literal "*"; reflect the caller's origin instead.
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security filter chain: permit-all authorization, frame options, CSRF with console exemption
	signer := utils.NewCSRFSigner(cfg.CSRFSecret, time.Duration(cfg.CSRFTokenTTLMinutes)*time.Minute)
	r.Use(middleware.PermitAll())
	r.Use(middleware.FrameOptions(cfg.FrameOptions))
	r.Use(middleware.CSRF(signer, middleware.CSRFOptionsFrom(cfg)))

	questionRepo := repository.NewQuestionRepository(deps.DB)
	answerRepo := repository.NewAnswerRepository(deps.DB)
	viewRepo := repository.NewViewRepository(deps.DB)

	r.Use(middleware.QuestionViewRecorder(viewRepo))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok", "profile": cfg.Profile})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	questionController := controllers.NewQuestionController(questionRepo, answerRepo, deps.Cache)
	consoleController := controllers.NewConsoleController(questionRepo, answerRepo, viewRepo, deps.Cache)
	csrfController := controllers.NewCSRFController()
	writeLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute).Middleware()

	api := r.Group("/api/v1")
	api.GET("/csrf", csrfController.GetToken)

	questions := api.Group("/questions")
	questions.GET("", questionController.ListQuestions)
	questions.GET("/:id", questionController.GetQuestion)
	questions.POST("", writeLimiter, questionController.CreateQuestion)
	questions.PUT("/:id", writeLimiter, questionController.UpdateQuestion)
	questions.DELETE("/:id", writeLimiter, questionController.DeleteQuestion)
	questions.POST("/:id/answers", writeLimiter, questionController.CreateAnswer)

	api.GET("/answers/:id", questionController.GetAnswer)

	console := r.Group(cfg.ConsolePath)
	console.GET("/stats", consoleController.GetStats)
	console.POST("/cache/flush", consoleController.FlushCache)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		// Everything outside the API is permitted and answered with a pointer to it
		utils.Success(ctx, gin.H{"path": path, "api": "/api/v1/questions"})
	})

	return r
}
