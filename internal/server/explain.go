package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ExplainBaseline(c *gin.Context) {
	seuName := strings.TrimSpace(c.Query("seu"))
	energySource := strings.TrimSpace(c.Query("energy_source"))
	if seuName == "" || energySource == "" {
		abortBadRequest(c, "seu and energy_source query parameters are required",
			"for example: /v1/baselines/explain?seu=compressor-1&energy_source=electricity")
		return
	}
	c.Set("seu_code", seuName)

	explanation, err := s.explainSvc.Explain(c.Request.Context(), seuName, energySource)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, explanation)
}

func (s *Server) ExplainAllBaselines(c *gin.Context) {
	explanations, err := s.explainSvc.ExplainAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, gin.H{"count": len(explanations), "explanations": explanations})
}
