package repositories

import (
	"errors"
	"time"

	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOTPNotFound        = errors.New("otp not found or expired")
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenExpired  = errors.New("reset token expired")
)

type PasswordResetRepository interface {
	CreateOTP(otp *models.PasswordResetOTP) error
	// ExchangeOTPForToken атомарно: находит валидный OTP, удаляет ВСЕ
	// OTP пользователя и создает reset token.
	ExchangeOTPForToken(userID, code string, token *models.PasswordResetToken) error
	// ConsumeToken атомарно проверяет токен и вызывает apply внутри
	// транзакции; при успехе удаляет все токены пользователя.
	ConsumeToken(token string, now time.Time, apply func(tx *gorm.DB, userID string) error) error
	DeleteExpiredTokens(now time.Time) error
	DeleteExpiredOTPs(now time.Time) error
}

type PasswordResetRepositoryImpl struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &PasswordResetRepositoryImpl{db: db}
}

func (r *PasswordResetRepositoryImpl) CreateOTP(otp *models.PasswordResetOTP) error {
	return r.db.Create(otp).Error
}

func (r *PasswordResetRepositoryImpl) ExchangeOTPForToken(userID, code string, token *models.PasswordResetToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var otp models.PasswordResetOTP
		err := tx.Where("user_id = ? AND code = ? AND expires_at > ?", userID, code, time.Now()).
			Order("created_at DESC").
			First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOTPNotFound
			}
			return err
		}

		// Код одноразовый: сжигаем все коды пользователя, не только совпавший
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetOTP{}).Error; err != nil {
			return err
		}

		return tx.Create(token).Error
	})
}

func (r *PasswordResetRepositoryImpl) ConsumeToken(token string, now time.Time, apply func(tx *gorm.DB, userID string) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var rt models.PasswordResetToken
		err := tx.Where("token = ?", token).First(&rt).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetTokenNotFound
			}
			return err
		}

		if rt.IsExpired(now) {
			// Просроченный токен удаляем сразу, чтобы он не висел в базе
			if err := tx.Delete(&rt).Error; err != nil {
				return err
			}
			return ErrResetTokenExpired
		}

		if err := apply(tx, rt.UserID); err != nil {
			return err
		}

		// Токен одноразовый: после успеха удаляем все токены пользователя
		return tx.Where("user_id = ?", rt.UserID).Delete(&models.PasswordResetToken{}).Error
	})
}

func (r *PasswordResetRepositoryImpl) DeleteExpiredTokens(now time.Time) error {
	return r.db.Where("expires_at < ?", now).Delete(&models.PasswordResetToken{}).Error
}

func (r *PasswordResetRepositoryImpl) DeleteExpiredOTPs(now time.Time) error {
	return r.db.Where("expires_at < ?", now).Delete(&models.PasswordResetOTP{}).Error
}
