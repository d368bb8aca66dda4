package handlers

import (
	"context"
	"net/http"
	"time"

	"markethub_backend/internal/services"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService          services.AuthService
	passwordResetService services.PasswordResetService
}

func NewAuthHandler(
	base *BaseHandler,
	authService services.AuthService,
	passwordResetService services.PasswordResetService,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:          base,
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Signup(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyEmail обрабатывает переход по ссылке из письма
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	uid := c.Param("uid")
	token := c.Param("token")

	if err := h.authService.VerifyEmail(uid, token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.authService.ResendVerification(userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.authService.GetProfile(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) UpdateEmail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.UpdateEmail(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.UpdatePassword(userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *AuthHandler) UploadProfilePhoto(c *gin.Context) {
	h.uploadPhoto(c, h.authService.UploadProfilePhoto)
}

func (h *AuthHandler) UploadCoverPhoto(c *gin.Context) {
	h.uploadPhoto(c, h.authService.UploadCoverPhoto)
}

func (h *AuthHandler) uploadPhoto(c *gin.Context, upload func(ctx context.Context, userID string, file *dto.FileUpload) (string, error)) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		apperrors.HandleError(c, apperrors.MissingFieldError("photo"))
		return
	}

	file, closeFn, err := FormFile(fh)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read uploaded file"))
		return
	}
	defer closeFn()

	url, err := upload(c.Request.Context(), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// VerifyIdentity принимает multipart-форму с документом
func (h *AuthHandler) VerifyIdentity(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	dob, err := time.Parse("2006-01-02", c.PostForm("date_of_birth"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("date_of_birth must be YYYY-MM-DD"))
		return
	}

	req := &dto.VerifyIdentityRequest{
		DateOfBirth: dob,
		Gender:      c.PostForm("gender"),
		Address:     c.PostForm("address"),
	}

	fh, err := c.FormFile("id_document")
	if err == nil {
		upload, closeFn, ferr := FormFile(fh)
		if ferr != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read id_document"))
			return
		}
		defer closeFn()
		req.Document = upload
	}

	if err := h.authService.VerifyIdentity(c.Request.Context(), userID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Identity submitted for review"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.RequestPasswordResetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.passwordResetService.RequestReset(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email"})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.passwordResetService.VerifyOTP(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.passwordResetService.ResetPassword(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// Admin

func (h *AuthHandler) ListPendingIdentities(c *gin.Context) {
	page, limit := ParsePagination(c)

	identities, err := h.authService.ListPendingIdentities(limit, (page-1)*limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": identities, "page": page, "limit": limit})
}

func (h *AuthHandler) ApproveIdentity(c *gin.Context) {
	targetUserID := c.Param("user_id")

	if err := h.authService.ApproveIdentity(targetUserID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Identity approved"})
}
