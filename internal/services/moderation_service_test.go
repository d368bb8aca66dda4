package services

import (
	"net/http"
	"testing"

	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePropertyStore struct {
	listings map[string]models.ModerableListing
	saveErr  error
}

func (s *fakePropertyStore) FindForModeration(id string) (models.ModerableListing, error) {
	if l, ok := s.listings[id]; ok {
		return l, nil
	}
	return nil, repositories.ErrPropertyNotFound
}

func (s *fakePropertyStore) SaveModeration(models.ModerableListing) error { return s.saveErr }

func newModerationService(jobs *fakeJobRepo, props ModerableStore) *ModerationServiceImpl {
	return &ModerationServiceImpl{
		jobRepo:      jobs,
		propertyRepo: props,
		notification: &fakeNotification{},
	}
}

func pendingJob(jobs *fakeJobRepo) *models.Job {
	return jobs.add(&models.Job{
		JobTitle:   "Сварщик",
		Status:     models.ListingStatusPending,
		PostedByID: "owner-1",
	})
}

func TestApproveJob_FromPending(t *testing.T) {
	jobs := newFakeJobRepo()
	job := pendingJob(jobs)
	svc := newModerationService(jobs, &fakePropertyStore{})

	err := svc.ApproveJob(job.ID, "admin-1")

	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusApproved, job.Status)
	require.NotNil(t, job.ApprovedByID)
	assert.Equal(t, "admin-1", *job.ApprovedByID)
	assert.NotNil(t, job.ApprovalDate)
}

func TestRejectJob_FromPending(t *testing.T) {
	jobs := newFakeJobRepo()
	job := pendingJob(jobs)
	svc := newModerationService(jobs, &fakePropertyStore{})

	err := svc.RejectJob(job.ID, "admin-1", "duplicate posting")

	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusRejected, job.Status)
	assert.Equal(t, "duplicate posting", job.RejectionReason)
}

// approved терминален: ни повторный approve, ни reject не проходят
func TestModeration_ApprovedIsTerminal(t *testing.T) {
	jobs := newFakeJobRepo()
	job := pendingJob(jobs)
	job.Status = models.ListingStatusApproved
	svc := newModerationService(jobs, &fakePropertyStore{})

	assert.ErrorIs(t, svc.ApproveJob(job.ID, "admin-1"), apperrors.ErrAlreadyApproved)
	assert.ErrorIs(t, svc.RejectJob(job.ID, "admin-1", "late"), apperrors.ErrAlreadyApproved)
	assert.Equal(t, models.ListingStatusApproved, job.Status)
}

func TestModeration_RejectedIsTerminal(t *testing.T) {
	jobs := newFakeJobRepo()
	job := pendingJob(jobs)
	job.Status = models.ListingStatusRejected
	svc := newModerationService(jobs, &fakePropertyStore{})

	assert.ErrorIs(t, svc.ApproveJob(job.ID, "admin-1"), apperrors.ErrAlreadyRejected)
	assert.ErrorIs(t, svc.RejectJob(job.ID, "admin-1", "again"), apperrors.ErrAlreadyRejected)
}

func TestModeration_ListingNotFound(t *testing.T) {
	svc := newModerationService(newFakeJobRepo(), &fakePropertyStore{})

	err := svc.ApproveJob("missing-id", "admin-1")

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

// Property проходит через ту же машину состояний
func TestApproveProperty_FromPending(t *testing.T) {
	property := &models.Property{
		PropertyTitle: "Квартира в центре",
		Status:        models.ListingStatusPending,
		PostedByID:    "owner-1",
	}
	property.ID = "prop-1"
	props := &fakePropertyStore{listings: map[string]models.ModerableListing{"prop-1": property}}
	svc := newModerationService(newFakeJobRepo(), props)

	err := svc.ApproveProperty("prop-1", "admin-2")

	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusApproved, property.Status)
	require.NotNil(t, property.ApprovedByID)
	assert.Equal(t, "admin-2", *property.ApprovedByID)
}

// Два конкурентных перехода читают pending, но условный UPDATE
// пропускает только один; проигравший получает InvalidState
func TestModeration_ConcurrentTransitionLosesRace(t *testing.T) {
	property := &models.Property{
		PropertyTitle: "Офис",
		Status:        models.ListingStatusPending,
	}
	property.ID = "prop-3"
	props := &fakePropertyStore{
		listings: map[string]models.ModerableListing{"prop-3": property},
		saveErr:  repositories.ErrListingNotPending,
	}
	svc := newModerationService(newFakeJobRepo(), props)

	err := svc.ApproveProperty("prop-3", "admin-2")

	assert.ErrorIs(t, err, apperrors.ErrNotPending)
}

func TestRejectProperty_AlreadyRejected(t *testing.T) {
	property := &models.Property{
		PropertyTitle: "Гараж",
		Status:        models.ListingStatusRejected,
	}
	property.ID = "prop-2"
	props := &fakePropertyStore{listings: map[string]models.ModerableListing{"prop-2": property}}
	svc := newModerationService(newFakeJobRepo(), props)

	assert.ErrorIs(t, svc.RejectProperty("prop-2", "admin-2", "spam"), apperrors.ErrAlreadyRejected)
}
