package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) ListEnergySources(c *gin.Context) {
	sources, err := s.sourceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, sources)
}
