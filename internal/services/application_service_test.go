package services

import (
	"context"
	"strings"
	"testing"

	"markethub_backend/internal/models"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicationService(
	apps *fakeApplicationRepo,
	jobs *fakeJobRepo,
	users *fakeUserRepo,
	store *fakeStorage,
) ApplicationService {
	return NewApplicationService(apps, jobs, NewVerificationService(users), store, &fakeNotification{})
}

func approvedJob(jobs *fakeJobRepo, ownerID string) *models.Job {
	return jobs.add(&models.Job{
		JobTitle:   "Бариста",
		Status:     models.ListingStatusApproved,
		IsActive:   true,
		PostedByID: ownerID,
	})
}

func validApplyRequest() *dto.ApplyRequest {
	return &dto.ApplyRequest{
		FullName:    "Данияр Серик",
		Email:       "daniyar@test.com",
		PhoneNumber: "+77001234567",
		CoverLetter: "Хочу работать у вас",
		CV: &dto.FileUpload{
			Reader:      strings.NewReader("cv"),
			Filename:    "cv.pdf",
			ContentType: "application/pdf",
			Size:        2,
		},
	}
}

func TestApply_BlockedByVerificationGate(t *testing.T) {
	users := newFakeUserRepo()
	user := users.add(&models.User{Email: "raw@test.com", EmailVerified: true})
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	svc := newApplicationService(newFakeApplicationRepo(), jobs, users, &fakeStorage{})

	_, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())

	assert.ErrorIs(t, err, apperrors.ErrIdentityNotSubmitted)
}

// Неодобренная вакансия откликов не принимает
func TestApply_PendingJobNotOpen(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := jobs.add(&models.Job{Status: models.ListingStatusPending, PostedByID: "owner-1"})
	svc := newApplicationService(newFakeApplicationRepo(), jobs, users, &fakeStorage{})

	_, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())

	assert.ErrorIs(t, err, apperrors.ErrListingNotOpen)
}

func TestApply_ReportsFirstMissingField(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	svc := newApplicationService(newFakeApplicationRepo(), jobs, users, &fakeStorage{})

	req := validApplyRequest()
	req.FullName = ""
	req.CoverLetter = ""

	_, err := svc.Apply(context.Background(), job.ID, user.ID, req)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "full_name")
}

func TestApply_CVIsRequired(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	svc := newApplicationService(newFakeApplicationRepo(), jobs, users, &fakeStorage{})

	req := validApplyRequest()
	req.CV = nil

	_, err := svc.Apply(context.Background(), job.ID, user.ID, req)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "cv")
}

func TestApply_CreatesPendingApplication(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	apps := newFakeApplicationRepo()
	store := &fakeStorage{}
	svc := newApplicationService(apps, jobs, users, store)

	resp, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())

	require.NoError(t, err)
	assert.Equal(t, string(models.ApplicationStatusPending), resp.Status)
	assert.Equal(t, job.ID, resp.JobID)
	assert.Equal(t, user.ID, resp.ApplicantID)
	assert.NotEmpty(t, resp.CVURL)
	assert.Equal(t, 1, apps.counts[job.ID])
	assert.Len(t, store.saved, 1)
}

// Повторный отклик той же пары (вакансия, соискатель) отклоняется,
// а уже загруженный CV зачищается
func TestApply_DuplicatePair(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	apps := newFakeApplicationRepo()
	store := &fakeStorage{}
	svc := newApplicationService(apps, jobs, users, store)

	_, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())

	assert.ErrorIs(t, err, apperrors.ErrDuplicateApplication)
	assert.Equal(t, 1, apps.counts[job.ID])
	assert.Len(t, store.deleted, 1)
}

func TestUpdateApplicationStatus_InvalidValue(t *testing.T) {
	svc := newApplicationService(newFakeApplicationRepo(), newFakeJobRepo(), newFakeUserRepo(), &fakeStorage{})

	err := svc.UpdateStatus("app-1", "owner-1", "hired")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInteractionStatus)
}

func TestUpdateApplicationStatus_OwnerOnly(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	apps := newFakeApplicationRepo()
	svc := newApplicationService(apps, jobs, users, &fakeStorage{})

	resp, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())
	require.NoError(t, err)

	// Сам соискатель статус менять не может
	err = svc.UpdateStatus(resp.ID, user.ID, string(models.ApplicationStatusShortlisted))
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	// Реальный репозиторий подгружает Job через Preload
	apps.apps[resp.ID].Job = job

	err = svc.UpdateStatus(resp.ID, "owner-1", string(models.ApplicationStatusShortlisted))
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusShortlisted, apps.apps[resp.ID].Status)
}

func TestWithdraw_ApplicantOnly(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	apps := newFakeApplicationRepo()
	svc := newApplicationService(apps, jobs, users, &fakeStorage{})

	resp, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())
	require.NoError(t, err)

	err = svc.Withdraw(resp.ID, "owner-1")
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	err = svc.Withdraw(resp.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, apps.counts[job.ID])
}

func TestWithdraw_CounterNeverGoesNegative(t *testing.T) {
	apps := newFakeApplicationRepo()
	application := &models.JobApplication{JobID: "job-1", ApplicantID: "user-1"}
	require.NoError(t, apps.Create(application))
	apps.counts["job-1"] = 0 // счетчик уже на нуле

	require.NoError(t, apps.Delete(application.ID))

	assert.Equal(t, 0, apps.counts["job-1"])
}

func TestGetApplicationDetail_VisibleToApplicantAndOwner(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	jobs := newFakeJobRepo()
	job := approvedJob(jobs, "owner-1")
	apps := newFakeApplicationRepo()
	svc := newApplicationService(apps, jobs, users, &fakeStorage{})

	resp, err := svc.Apply(context.Background(), job.ID, user.ID, validApplyRequest())
	require.NoError(t, err)
	apps.apps[resp.ID].Job = job

	_, err = svc.GetDetail(resp.ID, user.ID)
	assert.NoError(t, err)

	_, err = svc.GetDetail(resp.ID, "owner-1")
	assert.NoError(t, err)

	_, err = svc.GetDetail(resp.ID, "stranger")
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}
