package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-score-api/api/swagger"
	"github.com/noah-isme/course-score-api/internal/handler"
	"github.com/noah-isme/course-score-api/internal/middleware"
	"github.com/noah-isme/course-score-api/internal/models"
	"github.com/noah-isme/course-score-api/internal/repository"
	"github.com/noah-isme/course-score-api/internal/service"
	"github.com/noah-isme/course-score-api/pkg/cache"
	"github.com/noah-isme/course-score-api/pkg/config"
	"github.com/noah-isme/course-score-api/pkg/database"
	"github.com/noah-isme/course-score-api/pkg/export"
	"github.com/noah-isme/course-score-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-score-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-score-api/pkg/middleware/requestid"
)

// @title Course Score API
// @version 1.0.0
// @description Course enrollment and grading service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo *repository.CacheRepository
	if cfg.Courses.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, course listing cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	resolver := service.NewRoleResolver(userRepo, teacherRepo, studentRepo, logr)
	courseSvc := service.NewCourseService(courseRepo, enrollmentRepo, teacherRepo, commentRepo, cacheRepo, cfg.Courses.CacheTTL, metricsSvc, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, cacheRepo, logr)
	gradeSvc := service.NewGradeService(courseRepo, enrollmentRepo, cacheRepo, validate, logr)
	exportSvc := service.NewExportService(courseRepo, enrollmentRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	commentSvc := service.NewCommentService(commentRepo, courseRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, exportSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), middleware.Identity(resolver), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc), middleware.Identity(resolver))

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	protected.GET("/teachers", adminOnly, teacherHandler.List)
	protected.POST("/teachers", adminOnly, teacherHandler.Create)

	protected.GET("/courses", courseHandler.List)
	protected.POST("/courses", staffOnly, courseHandler.Create)
	protected.GET("/courses/:id", courseHandler.Detail)
	protected.GET("/courses/:id/export", staffOnly, courseHandler.Export)

	protected.POST("/courses/:id/enroll", enrollmentHandler.Enroll)
	protected.POST("/courses/:id/drop", enrollmentHandler.Drop)

	protected.GET("/courses/:id/grades", staffOnly, gradeHandler.Sheet)
	protected.PUT("/courses/:id/grades", staffOnly, gradeHandler.Submit)

	protected.POST("/courses/:id/comments", commentHandler.Create)
	protected.DELETE("/comments/:id", commentHandler.Delete)

	protected.GET("/profile", studentHandler.Profile)
	protected.PUT("/profile", studentHandler.UpdateProfile)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
