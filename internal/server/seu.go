package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

func (s *Server) CreateSEU(c *gin.Context) {
	var req seudomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "could not parse the SEU definition", "provide name, energy_source and equipment_ids")
		return
	}

	created, err := s.seuSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("seu_code", created.Code)
	respondCreated(c, created)
}

func (s *Server) ListSEUs(c *gin.Context) {
	seus, err := s.seuSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, seus)
}

// ListSEUFeatures returns the candidate driver variables for the SEU's
// energy source. The energy_source query parameter disambiguates SEUs that
// share a name across carriers; when absent the SEU's own source is used
// after a name-only match.
func (s *Server) ListSEUFeatures(c *gin.Context) {
	seuName := c.Param("seu")
	energySource := strings.TrimSpace(c.Query("energy_source"))

	seu, err := s.resolveSEU(c, seuName, energySource)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("seu_code", seu.Code)

	features, err := s.catalogSvc.FeaturesFor(c.Request.Context(), seu.EnergySource)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, gin.H{
		"seu":           seu.Code,
		"energy_source": seu.EnergySource,
		"features":      features,
	})
}

// resolveSEU handles the optional energy_source parameter: with it, a
// direct composite lookup; without it, a name match that fails loudly when
// the name is ambiguous across sources.
func (s *Server) resolveSEU(c *gin.Context, name, energySource string) (*seudomain.Response, error) {
	ctx := c.Request.Context()
	if energySource != "" {
		return s.seuSvc.Resolve(ctx, name, energySource)
	}

	seus, err := s.seuSvc.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []seudomain.Response
	for _, candidate := range seus {
		if strings.EqualFold(candidate.Code, name) || strings.EqualFold(candidate.Name, name) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}

	available := make([]string, 0, len(seus))
	for _, candidate := range seus {
		available = append(available, candidate.Name+" ("+candidate.EnergySource+")")
	}
	return nil, &seudomain.NotFoundError{
		Name:         name,
		EnergySource: energySource,
		Available:    available,
	}
}
