package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/services"
	"github.com/mcreview/mcreview-backend/internal/store"
)

type RateHandler struct {
	submissionService services.SubmissionService
}

func NewRateHandler(submissionService services.SubmissionService) *RateHandler {
	return &RateHandler{submissionService: submissionService}
}

func (rh *RateHandler) Get(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	view, err := rh.submissionService.GetRate(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (rh *RateHandler) Create(c *gin.Context) {
	var req struct {
		ParentContractID uuid.UUID             `json:"parentContractID"`
		FormData         packages.RateFormData `json:"formData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := rh.submissionService.CreateRate(c.Request.Context(), req.ParentContractID, req.FormData)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}

func (rh *RateHandler) UpdateDraft(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		FormData          packages.RateFormData `json:"formData"`
		LastSeenUpdatedAt time.Time             `json:"lastSeenUpdatedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := rh.submissionService.UpdateRateDraft(c.Request.Context(), store.UpdateRateDraftArgs{
		RateID:            id,
		FormData:          req.FormData,
		LastSeenUpdatedAt: req.LastSeenUpdatedAt,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (rh *RateHandler) Submit(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		SubmittedReason string `json:"submittedReason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := rh.submissionService.SubmitRate(c.Request.Context(), id, req.SubmittedReason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (rh *RateHandler) Unlock(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		UnlockedReason string `json:"unlockedReason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := rh.submissionService.UnlockRate(c.Request.Context(), id, req.UnlockedReason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (rh *RateHandler) ReviewAction(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		ActionType packages.ReviewActionType `json:"actionType"`
		Reason     string                    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := rh.submissionService.RateReviewAction(c.Request.Context(), id, req.ActionType, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}
