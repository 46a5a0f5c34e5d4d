package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/disperse-validator/internal/logging"
	"github.com/ginjaninja78/disperse-validator/internal/reconcile"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

// Handler serves the validation API.
type Handler struct {
	options validation.Options
	logger  logging.Logger
	version string
}

// NewHandler creates a Handler that validates with the given options.
func NewHandler(options validation.Options, logger logging.Logger, version string) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{options: options, logger: logger, version: version}
}

// RegisterRoutes mounts the API under rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.GetStatus)
	rg.POST("/validate", h.Validate)
	rg.POST("/resolve", h.Resolve)
}

// ValidateRequest is the body of POST /api/validate.
type ValidateRequest struct {
	Text *string `json:"text" binding:"required"`
}

// ResolveRequest is the body of POST /api/resolve.
type ResolveRequest struct {
	Text   *string `json:"text" binding:"required"`
	Policy string  `json:"policy" binding:"required"`
}

// ValidateResponse mirrors a validation result.
type ValidateResponse struct {
	Valid      bool                         `json:"valid"`
	LineCount  int                          `json:"lineCount"`
	Errors     []validation.ValidationError `json:"errors"`
	Duplicates []validation.DuplicateGroup  `json:"duplicates"`
	Messages   []string                     `json:"messages"`
}

// ResolveResponse carries the rewritten text and its validation result.
type ResolveResponse struct {
	Policy      reconcile.Policy `json:"policy"`
	Text        string           `json:"text"`
	LinesBefore int              `json:"linesBefore"`
	LinesAfter  int              `json:"linesAfter"`
	ValidateResponse
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// GetStatus reports that the service is up.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", Version: h.version})
}

// Validate checks a recipient list.
// POST /api/validate
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := validation.New(h.options).Validate(*req.Text)
	h.logger.Debug("Validated %d line(s) via API: %d error(s), %d duplicate address(es)",
		result.LineCount, len(result.Errors), len(result.Duplicates))

	c.JSON(http.StatusOK, newValidateResponse(result))
}

// Resolve applies a duplicate policy and re-validates the rewritten list.
// POST /api/resolve
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := reconcile.ParsePolicy(req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := reconcile.New(validation.New(h.options)).Resolve(*req.Text, policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Debug("Resolved duplicates via API with %s: %d line(s) removed", policy, outcome.Removed())

	c.JSON(http.StatusOK, ResolveResponse{
		Policy:           outcome.Policy,
		Text:             outcome.Text,
		LinesBefore:      outcome.LinesBefore,
		LinesAfter:       outcome.LinesAfter,
		ValidateResponse: newValidateResponse(outcome.Result),
	})
}

func newValidateResponse(result validation.Result) ValidateResponse {
	resp := ValidateResponse{
		Valid:      result.Valid(),
		LineCount:  result.LineCount,
		Errors:     result.Errors,
		Duplicates: result.Duplicates,
		Messages:   result.Messages(),
	}
	// JSON clients expect arrays, never null.
	if resp.Errors == nil {
		resp.Errors = []validation.ValidationError{}
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []validation.DuplicateGroup{}
	}
	return resp
}
