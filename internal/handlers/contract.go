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

type ContractHandler struct {
	submissionService services.SubmissionService
}

func NewContractHandler(submissionService services.SubmissionService) *ContractHandler {
	return &ContractHandler{submissionService: submissionService}
}

func parsePackageID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return uuid.Nil, false
	}
	return id, true
}

func (ch *ContractHandler) Index(c *gin.Context) {
	summaries, err := ch.submissionService.IndexContracts(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"contracts": summaries})
}

func (ch *ContractHandler) Get(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	view, err := ch.submissionService.GetContract(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *ContractHandler) Create(c *gin.Context) {
	var req struct {
		FormData packages.ContractFormData `json:"formData"`
		RateIDs  []uuid.UUID               `json:"rateIDs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := ch.submissionService.CreateContract(c.Request.Context(), req.FormData, req.RateIDs)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}

func (ch *ContractHandler) UpdateDraft(c *gin.Context) {
	id, ok := parsePackageID(c)
	if !ok {
		return
	}
	var req struct {
		FormData          packages.ContractFormData `json:"formData"`
		RateIDs           []uuid.UUID               `json:"rateIDs"`
		LastSeenUpdatedAt time.Time                 `json:"lastSeenUpdatedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_USER_INPUT", err)
		return
	}
	view, err := ch.submissionService.UpdateContractDraft(c.Request.Context(), store.UpdateContractDraftArgs{
		ContractID:        id,
		FormData:          req.FormData,
		RateIDs:           req.RateIDs,
		LastSeenUpdatedAt: req.LastSeenUpdatedAt,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *ContractHandler) Submit(c *gin.Context) {
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
	view, err := ch.submissionService.SubmitContract(c.Request.Context(), id, req.SubmittedReason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *ContractHandler) Unlock(c *gin.Context) {
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
	view, err := ch.submissionService.UnlockContract(c.Request.Context(), id, req.UnlockedReason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *ContractHandler) ReviewAction(c *gin.Context) {
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
	view, err := ch.submissionService.ContractReviewAction(c.Request.Context(), id, req.ActionType, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}
