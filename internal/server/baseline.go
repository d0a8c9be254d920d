package server

import (
	"github.com/gin-gonic/gin"

	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
)

func (s *Server) TrainBaseline(c *gin.Context) {
	var req baselinedomain.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "could not parse the training request", "provide seu, energy_source and optionally features")
		return
	}
	c.Set("seu_code", req.SEU)

	result, err := s.baselineSvc.Train(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, result)
}

func (s *Server) PredictBaseline(c *gin.Context) {
	var req baselinedomain.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "could not parse the prediction request", "provide seu, energy_source and a features map")
		return
	}
	c.Set("seu_code", req.SEU)

	result, err := s.baselineSvc.Predict(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, result)
}
