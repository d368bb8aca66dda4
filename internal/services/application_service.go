package services

import (
	"context"

	"markethub_backend/internal/logger"
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/services/dto"
	"markethub_backend/internal/storage"
	"markethub_backend/internal/validator"
	"markethub_backend/pkg/apperrors"
)

type ApplicationService interface {
	Apply(ctx context.Context, jobID, userID string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error)
	MyApplications(userID string) ([]dto.ApplicationResponse, error)
	ListForJob(jobID, requesterID string) ([]dto.ApplicationResponse, error)
	GetDetail(applicationID, requesterID string) (*dto.ApplicationResponse, error)
	UpdateStatus(applicationID, requesterID, status string) error
	Withdraw(applicationID, requesterID string) error
}

type ApplicationServiceImpl struct {
	applicationRepo repositories.ApplicationRepository
	jobRepo         repositories.JobRepository
	verification    VerificationService
	store           storage.Storage
	notification    NotificationService
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	verification VerificationService,
	store storage.Storage,
	notification NotificationService,
) ApplicationService {
	return &ApplicationServiceImpl{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		verification:    verification,
		store:           store,
		notification:    notification,
	}
}

// Apply - отклик на вакансию.
// Неодобренная вакансия откликов не принимает, даже от владельца.
// Вставка, проверка дубликата и инкремент счетчика атомарны в репозитории.
func (s *ApplicationServiceImpl) Apply(ctx context.Context, jobID, userID string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	user, err := s.verification.CanActByID(userID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.NewNotFoundError("job", "job not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if job.Status != models.ListingStatusApproved {
		return nil, apperrors.ErrListingNotOpen
	}

	if field, missing := validator.FirstMissing([]validator.RequiredField{
		{Name: "full_name", Value: req.FullName},
		{Name: "email", Value: req.Email},
		{Name: "phone_number", Value: req.PhoneNumber},
		{Name: "cover_letter", Value: req.CoverLetter},
	}); missing {
		return nil, apperrors.MissingFieldError(field)
	}
	if req.CV == nil {
		return nil, apperrors.MissingFieldError("cv")
	}

	cvURL, _, err := storage.UploadFile(ctx, s.store, storage.FolderJobApplications,
		req.CV.Filename, req.CV.Reader, req.CV.ContentType)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "storage", "failed to upload cv")
	}

	application := &models.JobApplication{
		JobID:            jobID,
		ApplicantID:      userID,
		FullName:         req.FullName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		CVURL:            cvURL,
		ExpectedSalary:   req.ExpectedSalary,
		PortfolioWebsite: req.PortfolioWebsite,
		CoverLetter:      req.CoverLetter,
		Status:           models.ApplicationStatusPending,
	}

	if err := s.applicationRepo.Create(application); err != nil {
		s.cleanupUpload(ctx, cvURL)
		if apperrors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, apperrors.ErrDuplicateApplication
		}
		return nil, apperrors.InternalError(err)
	}

	// Вставка закоммичена: оба письма строго best-effort
	go func() {
		s.notification.SendInteractionConfirmation(user.Email, "application", job.JobTitle)
		if job.PostedBy != nil {
			s.notification.SendInteractionNotification(job.PostedBy.Email, "application", job.JobTitle, req.FullName)
		}
	}()

	return buildApplicationResponse(application), nil
}

func (s *ApplicationServiceImpl) MyApplications(userID string) ([]dto.ApplicationResponse, error) {
	applications, err := s.applicationRepo.FindByApplicant(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.ApplicationResponse, len(applications))
	for i := range applications {
		resp := buildApplicationResponse(&applications[i])
		if job := applications[i].Job; job != nil {
			resp.JobTitle = job.JobTitle
			resp.CompanyName = job.CompanyName
			resp.JobThumbnail = jobThumbnailURL(job.Images)
		}
		responses[i] = *resp
	}
	return responses, nil
}

func (s *ApplicationServiceImpl) ListForJob(jobID, requesterID string) ([]dto.ApplicationResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.NewNotFoundError("job", "job not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if job.PostedByID != requesterID {
		return nil, apperrors.ErrNotOwner
	}

	applications, err := s.applicationRepo.FindByJob(jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.ApplicationResponse, len(applications))
	for i := range applications {
		responses[i] = *buildApplicationResponse(&applications[i])
	}
	return responses, nil
}

// GetDetail доступен соискателю и владельцу вакансии
func (s *ApplicationServiceImpl) GetDetail(applicationID, requesterID string) (*dto.ApplicationResponse, error) {
	application, err := s.applicationRepo.FindByID(applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.NewNotFoundError("application", "application not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if application.ApplicantID != requesterID &&
		(application.Job == nil || application.Job.PostedByID != requesterID) {
		return nil, apperrors.ErrNotOwner
	}

	resp := buildApplicationResponse(application)
	if job := application.Job; job != nil {
		resp.JobTitle = job.JobTitle
		resp.CompanyName = job.CompanyName
	}
	return resp, nil
}

func (s *ApplicationServiceImpl) UpdateStatus(applicationID, requesterID, status string) error {
	if !models.IsValidApplicationStatus(models.ApplicationStatus(status)) {
		return apperrors.ErrInvalidInteractionStatus
	}

	application, err := s.applicationRepo.FindByID(applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.NewNotFoundError("application", "application not found")
		}
		return apperrors.InternalError(err)
	}

	if application.Job == nil || application.Job.PostedByID != requesterID {
		return apperrors.ErrNotOwner
	}

	if err := s.applicationRepo.UpdateStatus(applicationID, models.ApplicationStatus(status)); err != nil {
		return apperrors.InternalError(err)
	}

	go s.notification.SendInteractionStatusChanged(
		application.Email, "application", application.Job.JobTitle, status)

	return nil
}

// Withdraw - соискатель забирает свой отклик, счетчик уменьшается
func (s *ApplicationServiceImpl) Withdraw(applicationID, requesterID string) error {
	application, err := s.applicationRepo.FindByID(applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.NewNotFoundError("application", "application not found")
		}
		return apperrors.InternalError(err)
	}

	if application.ApplicantID != requesterID {
		return apperrors.ErrNotOwner
	}

	if err := s.applicationRepo.Delete(applicationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ApplicationServiceImpl) cleanupUpload(ctx context.Context, url string) {
	if key, ok := storageKeyFromURL(url); ok {
		if err := s.store.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete orphaned upload", "key", key, "error", err)
		}
	}
}

func buildApplicationResponse(a *models.JobApplication) *dto.ApplicationResponse {
	return &dto.ApplicationResponse{
		ID:               a.ID,
		JobID:            a.JobID,
		ApplicantID:      a.ApplicantID,
		FullName:         a.FullName,
		Email:            a.Email,
		PhoneNumber:      a.PhoneNumber,
		CVURL:            a.CVURL,
		ExpectedSalary:   a.ExpectedSalary,
		PortfolioWebsite: a.PortfolioWebsite,
		CoverLetter:      a.CoverLetter,
		Status:           string(a.Status),
		AppliedAt:        a.AppliedAt,
	}
}
