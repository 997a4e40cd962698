package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/services"
)

type QuestionHandler struct {
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (qh *QuestionHandler) ListForContract(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	views, err := qh.questionService.ListForContract(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": views})
}

func (qh *QuestionHandler) ListForRate(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	views, err := qh.questionService.ListForRate(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": views})
}

func (qh *QuestionHandler) AddForContract(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		Division  packages.Division   `json:"division"`
		Documents []packages.Document `json:"documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := qh.questionService.AddContractQuestion(c.Request.Context(), id, req.Division, req.Documents)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}

func (qh *QuestionHandler) AddForRate(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		Division  packages.Division   `json:"division"`
		Documents []packages.Document `json:"documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := qh.questionService.AddRateQuestion(c.Request.Context(), id, req.Division, req.Documents)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}

func (qh *QuestionHandler) Respond(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("questionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	var req struct {
		Documents []packages.Document `json:"documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := qh.questionService.AddResponse(c.Request.Context(), questionID, req.Documents)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}
