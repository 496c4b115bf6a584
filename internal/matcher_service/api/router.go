package api

import (
	"github.com/gin-gonic/gin"

	"ResuMatch/internal/config"
)

// SetupRouter wires the API routes. Read endpoints and login stay open; the
// matching and indexing endpoints sit behind the JWT and rate-limit
// middleware when those are enabled.
func SetupRouter(h *Handler, cfg *config.AppConfig) (*gin.Engine, error) {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/status", h.Status)
		api.GET("/resume-embedding/:record_id", h.ResumeEmbedding)
		api.GET("/match-history", h.History)
		api.GET("/candidates/by-skill", h.CandidatesBySkill)
		api.POST("/auth/login", h.Login)

		guarded := api.Group("")
		if cfg.Auth.Enabled {
			guarded.Use(AuthMiddleware(cfg.Auth.JwtSecret))
		}
		if cfg.Middleware.RateLimiter.Enabled {
			limit, err := RateLimitMiddleware(cfg.Middleware.RateLimiter)
			if err != nil {
				return nil, err
			}
			guarded.Use(limit)
		}
		{
			guarded.POST("/match-resumes", h.MatchResumes)
			guarded.POST("/match-stored", h.MatchStored)
			guarded.POST("/index-resumes", h.IndexResumes)
			guarded.POST("/summarize-resume", h.SummarizeResume)
		}
	}

	return r, nil
}
