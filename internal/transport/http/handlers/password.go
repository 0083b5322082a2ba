package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/commerce-platform-auth/internal/infra/security"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

// PasswordHandler exposes authenticated credential changes.
type PasswordHandler struct {
	password *usecase.PasswordService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(password *usecase.PasswordService) *PasswordHandler {
	return &PasswordHandler{password: password}
}

// ChangePassword re-verifies the current credential and rotates to the new one.
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid change password payload"))
		return
	}

	err := h.password.ChangeCredential(c.Request.Context(), req.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: security.ErrCredentialReused, Status: http.StatusConflict, Message: "new password was used recently"},
			{Err: security.ErrCredentialTooYoung, Status: http.StatusConflict, Message: "password was changed too recently"},
		}, http.StatusInternalServerError, "password change failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}
