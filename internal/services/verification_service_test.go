package services

import (
	"net/http"
	"testing"
	"time"

	"markethub_backend/internal/models"
	"markethub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Порядок проверок гейта фиксирован: email -> подача анкеты -> одобрение.
// Каждая ступень отдает свой код ошибки.
func TestCanAct_EmailNotVerified(t *testing.T) {
	svc := NewVerificationService(newFakeUserRepo())

	user := &models.User{
		EmailVerified: false,
		Identity:      &models.IdentityVerification{Verified: true},
	}

	err := svc.CanAct(user)

	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestCanAct_IdentityNotSubmitted(t *testing.T) {
	svc := NewVerificationService(newFakeUserRepo())

	user := &models.User{EmailVerified: true}

	err := svc.CanAct(user)

	assert.ErrorIs(t, err, apperrors.ErrIdentityNotSubmitted)
}

func TestCanAct_IdentityNotApproved(t *testing.T) {
	svc := NewVerificationService(newFakeUserRepo())

	user := &models.User{
		EmailVerified: true,
		Identity:      &models.IdentityVerification{Verified: false, SubmittedAt: time.Now()},
	}

	err := svc.CanAct(user)

	assert.ErrorIs(t, err, apperrors.ErrIdentityNotApproved)
}

func TestCanAct_FullyVerified(t *testing.T) {
	svc := NewVerificationService(newFakeUserRepo())

	user := &models.User{
		EmailVerified: true,
		Identity:      &models.IdentityVerification{Verified: true},
	}

	assert.NoError(t, svc.CanAct(user))
}

func TestCanActByID_UserNotFound(t *testing.T) {
	svc := NewVerificationService(newFakeUserRepo())

	_, err := svc.CanActByID("missing-id")

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestCanActByID_LoadsUserAndPassesGate(t *testing.T) {
	repo := newFakeUserRepo()
	user := verifiedUser(repo)
	svc := NewVerificationService(repo)

	loaded, err := svc.CanActByID(user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
}
