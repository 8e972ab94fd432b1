package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tum-registrar/internal/middleware"
	"github.com/noah-isme/tum-registrar/internal/service"
	"github.com/noah-isme/tum-registrar/pkg/config"
	"github.com/noah-isme/tum-registrar/pkg/logger"
	corsmiddleware "github.com/noah-isme/tum-registrar/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tum-registrar/pkg/middleware/requestid"
)

// RouterDeps groups what the HTTP surface needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *service.RegistryService
	Exports  *service.ExportService
	Metrics  *service.MetricsService
}

// NewRouter assembles the gin engine with the middleware chain and every route.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	metricsHandler := NewMetricsHandler(deps.Metrics, deps.Registry, cfg.State.Driver)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.GET("/fields", ListFields)

	faculties := NewFacultyHandler(deps.Registry)
	api.GET("/faculties", faculties.List)
	api.POST("/faculties", faculties.Create)
	api.GET("/faculties/:ref/students", faculties.ListStudents)
	api.POST("/faculties/:ref/students", faculties.Enroll)
	api.GET("/faculties/:ref/students/:email", faculties.BelongsTo)
	api.GET("/faculties/:ref/graduates", faculties.ListGraduates)

	students := NewStudentHandler(deps.Registry)
	api.GET("/students/:email/faculty", students.Faculty)
	api.POST("/students/:email/graduate", students.Graduate)

	state := NewStateHandler(deps.Registry)
	api.POST("/state/save", state.Save)
	api.POST("/state/load", state.Load)

	if deps.Exports != nil {
		exports := NewExportHandler(deps.Exports)
		api.GET("/exports/roster", exports.Roster)
	}
	return r
}
