package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireflow/internal/auth"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AllowOrigins []string
	// MaxUploadBytes caps the in-memory part of multipart parsing.
	MaxUploadBytes int64
	// UploadsDir is served read-only under UploadsPrefix when both are set.
	UploadsDir    string
	UploadsPrefix string
}

func NewRouter(cfg RouterConfig, logger *zap.Logger, jobs *JobHandler, apps *ApplicationHandler, notes *NotificationHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes + 1<<20
	}

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", auth.HeaderActorType, auth.HeaderActorID, HeaderRequestID}
	r.Use(cors.New(corsCfg))

	if cfg.UploadsDir != "" && cfg.UploadsPrefix != "" {
		r.Static(cfg.UploadsPrefix, cfg.UploadsDir)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)
		api.GET("/jobs/:slug", jobs.GetBySlug)

		authed := api.Group("", auth.Middleware())

		candidate := authed.Group("", auth.Require(auth.ActorCandidate))
		candidate.POST("/applications", apps.Submit)
		candidate.GET("/candidate/application-status", apps.CandidateStatus)
		candidate.POST("/candidate/resume", apps.UploadResume)
		candidate.GET("/candidate/resumes", apps.ListResumes)

		employer := authed.Group("", auth.Require(auth.ActorEmployer))
		employer.PATCH("/applications/status", apps.UpdateStatus)
		employer.GET("/employer/applications", apps.ListForEmployer)
		employer.GET("/employer/applications/:id", apps.GetForEmployer)

		authed.GET("/notifications/poll", notes.Poll)
		authed.POST("/notifications/mark-read", notes.MarkRead)
	}
	return r
}
