package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mcreview/mcreview-backend/internal/services"
)

type ReferenceHandler struct {
	programService services.ProgramService
}

func NewReferenceHandler(programService services.ProgramService) *ReferenceHandler {
	return &ReferenceHandler{programService: programService}
}

// GetState returns a state's catalog entry so clients can populate program
// pickers for contract and rate forms.
func (rh *ReferenceHandler) GetState(c *gin.Context) {
	state, err := rh.programService.GetState(c.Request.Context(), c.Param("stateCode"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, state)
}
