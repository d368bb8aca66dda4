package services

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"markethub_backend/internal/models"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetService(users *fakeUserRepo, resets *fakeResetRepo, notif *fakeNotification) PasswordResetService {
	return NewPasswordResetService(users, resets, notif)
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	svc := newResetService(newFakeUserRepo(), &fakeResetRepo{}, &fakeNotification{})

	err := svc.RequestReset(&dto.RequestPasswordResetRequest{Email: "nobody@test.com"})

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestRequestReset_IssuesFourDigitOTP(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	notif := &fakeNotification{}
	svc := newResetService(users, resets, notif)

	err := svc.RequestReset(&dto.RequestPasswordResetRequest{Email: user.Email})

	require.NoError(t, err)
	require.Len(t, resets.otps, 1)
	otp := resets.otps[0]
	assert.Equal(t, user.ID, otp.UserID)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), otp.Code)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), otp.ExpiresAt, time.Minute)

	// Код из письма совпадает с кодом в базе
	assert.Equal(t, otp.Code, notif.lastOTPCode)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	svc := newResetService(users, resets, &fakeNotification{})

	resets.otps = append(resets.otps, models.PasswordResetOTP{
		UserID:    user.ID,
		Code:      "1234",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	})

	_, err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: user.Email, OTP: "9999"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestVerifyOTP_UnknownEmailMapsToInvalidOTP(t *testing.T) {
	svc := newResetService(newFakeUserRepo(), &fakeResetRepo{}, &fakeNotification{})

	_, err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: "nobody@test.com", OTP: "1234"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestVerifyOTP_ExpiredCode(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	svc := newResetService(users, resets, &fakeNotification{})

	resets.otps = append(resets.otps, models.PasswordResetOTP{
		UserID:    user.ID,
		Code:      "1234",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	_, err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: user.Email, OTP: "1234"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

// Просроченные коды убираются при каждой проверке, даже неудачной
func TestVerifyOTP_FailedAttemptSweepsExpiredCodes(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	svc := newResetService(users, resets, &fakeNotification{})

	resets.otps = append(resets.otps, models.PasswordResetOTP{
		UserID:    user.ID,
		Code:      "1111",
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	_, err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: user.Email, OTP: "9999"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	assert.Empty(t, resets.otps)
}

// Обмен OTP на reset token: код сгорает, выдается 8-значный токен
func TestVerifyOTP_ExchangesForResetToken(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	svc := newResetService(users, resets, &fakeNotification{})

	resets.otps = append(resets.otps,
		models.PasswordResetOTP{UserID: user.ID, Code: "1111", ExpiresAt: time.Now().Add(15 * time.Minute)},
		models.PasswordResetOTP{UserID: user.ID, Code: "2222", ExpiresAt: time.Now().Add(15 * time.Minute)},
	)

	resp, err := svc.VerifyOTP(&dto.VerifyOTPRequest{Email: user.Email, OTP: "2222"})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}$`), resp.ResetToken)

	// Сгорают ВСЕ коды пользователя, не только совпавший
	assert.Empty(t, resets.otps)
	require.Len(t, resets.tokens, 1)
	assert.Equal(t, user.ID, resets.tokens[0].UserID)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc := newResetService(newFakeUserRepo(), &fakeResetRepo{}, &fakeNotification{})

	err := svc.ResetPassword(&dto.ResetPasswordRequest{
		ResetToken:  "00000000",
		NewPassword: "new-password-1",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

func TestResetPassword_ExpiredTokenIsRemoved(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	svc := newResetService(users, resets, &fakeNotification{})

	resets.tokens = append(resets.tokens, models.PasswordResetToken{
		UserID:    user.ID,
		Token:     "12345678",
		ExpiresAt: time.Now().Add(-time.Second),
	})

	err := svc.ResetPassword(&dto.ResetPasswordRequest{
		ResetToken:  "12345678",
		NewPassword: "new-password-1",
	})

	// Просроченный токен убирается попутной уборкой до проверки,
	// клиенту это неотличимо от несуществующего токена
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
	assert.Empty(t, resets.tokens)
}

func TestResetPassword_TooShortPassword(t *testing.T) {
	svc := newResetService(newFakeUserRepo(), &fakeResetRepo{}, &fakeNotification{})

	err := svc.ResetPassword(&dto.ResetPasswordRequest{
		ResetToken:  "12345678",
		NewPassword: "short",
	})

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestResetPassword_ConsumesAllUserTokens(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	resets := &fakeResetRepo{}
	svc := newResetService(users, resets, &fakeNotification{})

	resets.tokens = append(resets.tokens,
		models.PasswordResetToken{UserID: user.ID, Token: "11111111", ExpiresAt: time.Now().Add(15 * time.Minute)},
		models.PasswordResetToken{UserID: user.ID, Token: "22222222", ExpiresAt: time.Now().Add(15 * time.Minute)},
	)

	err := svc.ResetPassword(&dto.ResetPasswordRequest{
		ResetToken:  "11111111",
		NewPassword: "new-password-1",
	})

	require.NoError(t, err)
	assert.True(t, resets.sweepCalled)
	assert.Empty(t, resets.tokens)
}

func TestRandomDigits(t *testing.T) {
	for _, n := range []int{4, 8} {
		s, err := randomDigits(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		assert.Regexp(t, regexp.MustCompile(`^\d+$`), s)
	}
}
