package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/service"
)

// MatchHandler handles candidate/job match scoring.
type MatchHandler struct {
	scorer *service.MatchScorer
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(scorer *service.MatchScorer) *MatchHandler {
	return &MatchHandler{scorer: scorer}
}

// MatchRequest is the body of POST /api/v1/match.
type MatchRequest struct {
	Candidate      domain.CandidateProfile `json:"candidate" binding:"required"`
	JobTitle       string                  `json:"jobTitle" binding:"required"`
	Requirements   []string                `json:"requirements"`
	JobDescription string                  `json:"jobDescription"`
}

// Score handles POST /api/v1/match. Scoring is synchronous and stateless;
// nothing is persisted.
func (h *MatchHandler) Score(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.scorer.Score(c.Request.Context(), &req.Candidate, req.JobTitle, req.Requirements, req.JobDescription)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Match scoring failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
