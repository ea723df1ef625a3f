package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/auth"
	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// AuthHandler exposes the account lifecycle over the legacy single
// endpoint: POST /api/auth with an action discriminator in the body.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler builds the handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type authRequest struct {
	Action string `json:"action" validate:"required"`

	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`

	Code  string `json:"code"`
	Token string `json:"token"`

	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`

	SessionToken string `json:"sessionToken"`
}

// Handle dispatches on the action field.
func (h *AuthHandler) Handle(c *gin.Context) {
	var req authRequest
	if !bindAndValidate(c, &req) {
		return
	}

	switch req.Action {
	case "register":
		h.register(c, req)
	case "login":
		h.login(c, req)
	case "verify-email":
		h.verifyEmail(c, req)
	case "resend-code":
		h.resendCode(c, req)
	case "forgot-password":
		h.forgotPassword(c, req)
	case "reset-password":
		h.resetPassword(c, req)
	case "change-password":
		h.changePassword(c, req)
	case "verify-session":
		h.verifySession(c, req)
	case "logout":
		h.logout(c, req)
	default:
		response.Error(c, apperrors.NewBadRequest("Unknown action"))
	}
}

func (h *AuthHandler) register(c *gin.Context, req authRequest) {
	result, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"success":           true,
		"needsVerification": result.NeedsVerification,
		"email":             result.User.Email,
		"message":           "Verification code sent",
	})
}

func (h *AuthHandler) login(c *gin.Context, req authRequest) {
	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.NeedsVerification {
		response.OK(c, gin.H{
			"success":           true,
			"needsVerification": true,
			"email":             result.User.Email,
			"message":           "Verification code sent",
		})
		return
	}

	response.OK(c, gin.H{
		"success":      true,
		"sessionToken": result.SessionToken,
		"email":        result.User.Email,
		"message":      "Login successful",
		"user":         userPayload(result.User),
	})
}

func (h *AuthHandler) verifyEmail(c *gin.Context, req authRequest) {
	result, err := h.svc.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"success":      true,
		"sessionToken": result.SessionToken,
		"email":        result.User.Email,
		"message":      "Email verified successfully",
		"user":         userPayload(result.User),
	})
}

func (h *AuthHandler) resendCode(c *gin.Context, req authRequest) {
	if err := h.svc.ResendCode(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "message": "Verification code sent"})
}

func (h *AuthHandler) forgotPassword(c *gin.Context, req authRequest) {
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	// Same answer whether or not the account exists.
	response.OK(c, gin.H{
		"success": true,
		"message": "If the email is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) resetPassword(c *gin.Context, req authRequest) {
	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *AuthHandler) changePassword(c *gin.Context, req authRequest) {
	token := req.SessionToken
	if token == "" {
		token = middleware.ExtractToken(c)
	}

	user, session, err := h.svc.ValidateSession(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), user, session, req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *AuthHandler) verifySession(c *gin.Context, req authRequest) {
	token := req.SessionToken
	if token == "" {
		token = middleware.ExtractToken(c)
	}

	user, _, err := h.svc.ValidateSession(c.Request.Context(), token)
	if err != nil {
		// Invalid tokens answer valid:false rather than an error so the
		// frontend can treat it as a normal signed-out state.
		response.JSON(c, http.StatusOK, gin.H{"valid": false})
		return
	}

	response.OK(c, gin.H{"valid": true, "email": user.Email, "user": userPayload(user)})
}

func (h *AuthHandler) logout(c *gin.Context, req authRequest) {
	token := req.SessionToken
	if token == "" {
		token = middleware.ExtractToken(c)
	}

	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func userPayload(user *models.User) gin.H {
	if user == nil {
		return nil
	}
	return gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"avatarUrl":   user.AvatarURL,
		"isVerified":  user.IsVerified,
		"isAdmin":     user.IsAdmin,
	}
}
