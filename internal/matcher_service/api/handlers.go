package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"ResuMatch/internal/config"
	"ResuMatch/internal/matcher"
	"ResuMatch/internal/matcher_service/service"
	"ResuMatch/pkg/logger"
)

// Handler bundles the HTTP endpoint handlers of the matcher API.
type Handler struct {
	service *service.Service
	auth    config.AuthConfig
	log     *logger.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(s *service.Service, auth config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{service: s, auth: auth, log: log}
}

// Status reports liveness, capabilities and dependency health.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status(c.Request.Context()))
}

// MatchResumes accepts a job description file plus resume files as multipart
// form data, runs the one-shot matching flow and returns the ranked result.
func (h *Handler) MatchResumes(c *gin.Context) {
	jd, err := c.FormFile("job_description")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_description file is required"})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resumes := form.File["resumes"]
	if len(resumes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one resume file is required"})
		return
	}

	tempDir, err := os.MkdirTemp("", "resumatch-upload-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.RemoveAll(tempDir)

	jdPath, err := saveUpload(c, jd, tempDir)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resumesDir := filepath.Join(tempDir, "resumes")
	if err := os.Mkdir(resumesDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, resume := range resumes {
		if _, err := saveUpload(c, resume, resumesDir); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	resp, err := h.service.MatchUploaded(c.Request.Context(), jdPath, resumesDir, formInt(c, "top_k"), formFloat(c, "min_similarity"))
	if err != nil {
		h.log.WithError(err).Error("Uploaded-batch match failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MatchStoredRequest is the JSON body for matching against the persistent
// index.
type MatchStoredRequest struct {
	JobDescription string  `json:"job_description" binding:"required"`
	TopK           int     `json:"top_k"`
	MinSimilarity  float64 `json:"min_similarity"`
}

// MatchStored matches raw job description text against the stored resumes.
func (h *Handler) MatchStored(c *gin.Context) {
	var req MatchStoredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.MatchStored(c.Request.Context(), req.JobDescription, req.TopK, req.MinSimilarity)
	if err != nil {
		h.log.WithError(err).Error("Stored match failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IndexResumesRequest is the JSON body for a server-side indexing run. An
// empty directory falls back to the configured data directory.
type IndexResumesRequest struct {
	Directory string `json:"directory"`
}

// IndexResumes triggers indexing of a directory into the persistent store.
// The body may be omitted entirely to index the configured data directory.
func (h *Handler) IndexResumes(c *gin.Context) {
	var req IndexResumesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	resp, err := h.service.IndexDirectory(c.Request.Context(), req.Directory)
	if err != nil {
		if errors.Is(err, matcher.ErrDirectoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.WithError(err).Error("Indexing run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumeEmbedding returns the stored full-text embedding of one resume.
func (h *Handler) ResumeEmbedding(c *gin.Context) {
	recordID := c.Param("record_id")

	doc, err := h.service.ResumeEmbedding(c.Request.Context(), recordID)
	if err != nil {
		if errors.Is(err, matcher.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Resume with ID '%s' not found.", recordID)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record_id": doc.ID,
		"filename":  doc.Filename,
		"embedding": doc.Embedding,
	})
}

// SummarizeResumeRequest is the JSON body for a single-resume summary.
type SummarizeResumeRequest struct {
	RecordID       string `json:"record_id" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`
}

// SummarizeResume asks the LLM how well one stored resume fits a job.
func (h *Handler) SummarizeResume(c *gin.Context) {
	var req SummarizeResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.SummarizeResume(c.Request.Context(), req.RecordID, req.JobDescription)
	if err != nil {
		if errors.Is(err, matcher.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Resume with ID '%s' not found.", req.RecordID)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// History returns the most recent match runs.
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	runs, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrCapabilityDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// CandidatesBySkill looks cataloged candidates up by skill name.
func (h *Handler) CandidatesBySkill(c *gin.Context) {
	skill := c.Query("skill")
	if skill == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skill query parameter is required"})
		return
	}

	candidates, err := h.service.CandidatesBySkill(c.Request.Context(), skill)
	if err != nil {
		if errors.Is(err, service.ErrCapabilityDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// LoginRequest is the JSON body for obtaining an API token.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the configured admin credentials and issues a signed JWT.
func (h *Handler) Login(c *gin.Context) {
	if !h.auth.Enabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication is not enabled"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username != h.auth.AdminUser ||
		bcrypt.CompareHashAndPassword([]byte(h.auth.AdminPasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ttl := h.auth.TokenTTL
	if ttl <= 0 {
		ttl = 3600
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": req.Username,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(ttl) * time.Second).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.auth.JwtSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": ttl})
}

// saveUpload writes one uploaded file into dir under its base name, refusing
// names that would escape the directory.
func saveUpload(c *gin.Context, file *multipart.FileHeader, dir string) (string, error) {
	name := filepath.Base(file.Filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid upload filename %q", file.Filename)
	}
	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("failed to save upload %s: %w", name, err)
	}
	return path, nil
}

func formInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.PostForm(key))
	return v
}

func formFloat(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.PostForm(key), 64)
	return v
}
