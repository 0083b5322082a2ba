package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

// RecoveryHandler exposes the three-stage forgotten-credential flow.
type RecoveryHandler struct {
	recovery *usecase.RecoveryService
}

// NewRecoveryHandler constructs RecoveryHandler.
func NewRecoveryHandler(recovery *usecase.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recovery: recovery}
}

// RegisterRoutes binds recovery routes.
func (h *RecoveryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/identity", h.submitIdentity)
	r.POST("/answer", h.submitAnswer)
	r.POST("/reset", h.submitReset)
	r.POST("/cancel", h.cancel)
}

func (h *RecoveryHandler) submitIdentity(c *gin.Context) {
	var req RecoveryIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid recovery payload"))
		return
	}

	session, question, err := h.recovery.SubmitIdentity(c.Request.Context(), req.Email, req.Mobile)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRecoveryIdentityMismatch, Status: http.StatusUnauthorized, Message: "identity details do not match our records"},
		}, http.StatusInternalServerError, "recovery unavailable")
		return
	}

	c.JSON(http.StatusOK, RecoveryIdentityResponse{
		SessionID: session.ID,
		Question:  SecurityQuestionView{ID: question.ID, Text: question.Text},
	})
}

func (h *RecoveryHandler) submitAnswer(c *gin.Context) {
	var req RecoveryAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid recovery payload"))
		return
	}

	err := h.recovery.SubmitAnswer(c.Request.Context(), req.SessionID, req.Answer)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRecoverySessionNotFound, Status: http.StatusNotFound, Message: "recovery session not found"},
			{Err: usecase.ErrRecoveryStage, Status: http.StatusConflict, Message: "recovery flow is not at the answer stage"},
			{Err: usecase.ErrRecoveryAnswerMismatch, Status: http.StatusUnauthorized, Message: "security answer is incorrect"},
		}, http.StatusInternalServerError, "recovery unavailable")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "answer accepted"})
}

func (h *RecoveryHandler) submitReset(c *gin.Context) {
	var req RecoveryResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid recovery payload"))
		return
	}

	err := h.recovery.SubmitReset(c.Request.Context(), req.SessionID, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRecoverySessionNotFound, Status: http.StatusNotFound, Message: "recovery session not found"},
			{Err: usecase.ErrRecoveryStage, Status: http.StatusConflict, Message: "recovery flow is not at the reset stage"},
			{Err: security.ErrCredentialReused, Status: http.StatusConflict, Message: "new password was used recently"},
			{Err: security.ErrCredentialTooYoung, Status: http.StatusConflict, Message: "password was changed too recently"},
		}, http.StatusInternalServerError, "recovery unavailable")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}

func (h *RecoveryHandler) cancel(c *gin.Context) {
	var req RecoveryCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid recovery payload"))
		return
	}

	h.recovery.Cancel(req.SessionID)
	c.JSON(http.StatusOK, MessageResponse{Message: "recovery cancelled"})
}
