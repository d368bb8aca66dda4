package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"markethub_backend/internal/auth"
	"markethub_backend/internal/logger"
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Оба артефакта сброса живут 15 минут
const resetArtifactTTL = 15 * time.Minute

type PasswordResetService interface {
	// RequestReset выпускает OTP и шлет его на почту.
	// Несуществующий email отвечает NotFound: поведение исходного API,
	// клиенты на него завязаны.
	RequestReset(req *dto.RequestPasswordResetRequest) error
	VerifyOTP(req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
	ResetPassword(req *dto.ResetPasswordRequest) error
}

type PasswordResetServiceImpl struct {
	userRepo     repositories.UserRepository
	resetRepo    repositories.PasswordResetRepository
	notification NotificationService
}

func NewPasswordResetService(
	userRepo repositories.UserRepository,
	resetRepo repositories.PasswordResetRepository,
	notification NotificationService,
) PasswordResetService {
	return &PasswordResetServiceImpl{
		userRepo:     userRepo,
		resetRepo:    resetRepo,
		notification: notification,
	}
}

func (s *PasswordResetServiceImpl) RequestReset(req *dto.RequestPasswordResetRequest) error {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "no account with this email")
		}
		return apperrors.InternalError(err)
	}

	code, err := randomDigits(4)
	if err != nil {
		return apperrors.InternalError(err)
	}

	otp := &models.PasswordResetOTP{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(resetArtifactTTL),
	}
	if err := s.resetRepo.CreateOTP(otp); err != nil {
		return apperrors.InternalError(err)
	}

	s.notification.SendPasswordResetOTP(user.Email, code)
	return nil
}

func (s *PasswordResetServiceImpl) VerifyOTP(req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, apperrors.InternalError(err)
	}

	// Попутная уборка просроченных кодов, как с токенами в ResetPassword
	if err := s.resetRepo.DeleteExpiredOTPs(time.Now()); err != nil {
		logger.Warn("failed to clean expired reset OTPs", "error", err)
	}

	tokenValue, err := randomDigits(8)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(resetArtifactTTL),
	}

	if err := s.resetRepo.ExchangeOTPForToken(user.ID, req.OTP, token); err != nil {
		if apperrors.Is(err, repositories.ErrOTPNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, apperrors.InternalError(err)
	}

	return &dto.VerifyOTPResponse{ResetToken: token.Token}, nil
}

func (s *PasswordResetServiceImpl) ResetPassword(req *dto.ResetPasswordRequest) error {
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	// Попутная уборка: все просроченные токены, не только этого пользователя
	if err := s.resetRepo.DeleteExpiredTokens(time.Now()); err != nil {
		logger.Warn("failed to clean expired reset tokens", "error", err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	err = s.resetRepo.ConsumeToken(req.ResetToken, time.Now(), func(tx *gorm.DB, userID string) error {
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("password_hash", hash).Error
	})
	if err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrResetTokenNotFound):
			return apperrors.ErrInvalidResetToken
		case apperrors.Is(err, repositories.ErrResetTokenExpired):
			return apperrors.ErrExpiredResetToken
		default:
			return apperrors.InternalError(err)
		}
	}
	return nil
}

// randomDigits возвращает строку из n случайных цифр (crypto/rand)
func randomDigits(n int) (string, error) {
	result := make([]byte, n)
	for i := range result {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		result[i] = byte('0' + d.Int64())
	}
	return string(result), nil
}
