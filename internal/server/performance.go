package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	performancedomain "github.com/voltgrid/enbase/internal/performance/domain"
)

func (s *Server) GenerateReport(c *gin.Context) {
	var req performancedomain.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "could not parse the report request",
			"provide seu, energy_source and a period like 2026-01 or 2026-Q1")
		return
	}
	c.Set("seu_code", req.SEU)

	result, err := s.performanceSvc.GenerateReport(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, result)
}

func (s *Server) GenerateReportBatch(c *gin.Context) {
	var req performancedomain.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "could not parse the batch request",
			"provide a period like 2026-01, optionally an energy_source filter")
		return
	}

	result, err := s.performanceSvc.GenerateBatch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, result)
}

func (s *Server) ListReports(c *gin.Context) {
	seuName := c.Param("seu")
	energySource := strings.TrimSpace(c.Query("energy_source"))

	seu, err := s.resolveSEU(c, seuName, energySource)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("seu_code", seu.Code)

	limit := 12
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	reports, err := s.performanceSvc.ListReports(c.Request.Context(), seu.Code, seu.EnergySource, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, gin.H{
		"seu":           seu.Code,
		"energy_source": seu.EnergySource,
		"reports":       reports,
	})
}
