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

type JobService interface {
	Create(ctx context.Context, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetDetail(jobID string) (*dto.JobResponse, error)
	List(page, limit int) (*dto.ListResponse, error)
	MyListings(userID string) ([]dto.JobListItem, error)
	ByOwner(ownerID string) ([]dto.JobListItem, error)
	Delete(ctx context.Context, jobID, userID string) error
	SetThumbnail(jobID, userID, imageID string) error
}

type JobServiceImpl struct {
	jobRepo      repositories.JobRepository
	verification VerificationService
	store        storage.Storage
	notification NotificationService
}

func NewJobService(
	jobRepo repositories.JobRepository,
	verification VerificationService,
	store storage.Storage,
	notification NotificationService,
) JobService {
	return &JobServiceImpl{
		jobRepo:      jobRepo,
		verification: verification,
		store:        store,
		notification: notification,
	}
}

// Create создает вакансию со статусом pending.
// Картинки сначала уходят в хранилище, затем вакансия и строки картинок
// пишутся одной транзакцией: частично созданных вакансий не бывает.
func (s *JobServiceImpl) Create(ctx context.Context, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	user, err := s.verification.CanActByID(userID)
	if err != nil {
		return nil, err
	}

	if field, missing := validator.FirstMissing(jobRequiredFields(req)); missing {
		return nil, apperrors.MissingFieldError(field)
	}

	urls, err := s.uploadImages(ctx, storage.FolderJobImages, req.Images)
	if err != nil {
		return nil, err
	}

	job := &models.Job{
		JobTitle:            req.JobTitle,
		CompanyName:         req.CompanyName,
		Category:            req.Category,
		JobType:             req.JobType,
		FullAddress:         req.FullAddress,
		State:               req.State,
		City:                req.City,
		JobDescription:      req.JobDescription,
		Requirements:        req.Requirements,
		KeyResponsibilities: req.KeyResponsibilities,
		Benefits:            req.Benefits,
		ExperienceYears:     req.ExperienceYears,
		Education:           req.Education,
		MinimumSalary:       req.MinimumSalary,
		MaximumSalary:       req.MaximumSalary,
		SalaryPeriod:        req.SalaryPeriod,
		ApplicationMethod:   req.ApplicationMethod,
		ExternalLink:        req.ExternalLink,
		Status:              models.ListingStatusPending,
		IsActive:            true,
		PostedByID:          userID,
	}

	images := make([]models.JobImage, len(urls))
	for i, u := range urls {
		caption := ""
		if i < len(req.Captions) {
			caption = req.Captions[i]
		}
		images[i] = models.JobImage{
			ImageURL:    u,
			IsThumbnail: i == req.ThumbnailIndex,
			Order:       i,
			Caption:     caption,
		}
	}

	if err := s.jobRepo.CreateWithImages(job, images); err != nil {
		s.cleanupUploads(ctx, urls)
		return nil, apperrors.InternalError(err)
	}

	job.PostedBy = user

	// Транзакция закоммичена: письмо владельцу строго best-effort
	go s.notification.SendListingSubmitted(user, job)

	return buildJobResponse(job), nil
}

func (s *JobServiceImpl) GetDetail(jobID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.NewNotFoundError("job", "job not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return buildJobResponse(job), nil
}

func (s *JobServiceImpl) List(page, limit int) (*dto.ListResponse, error) {
	page, limit = normalizePage(page, limit)

	jobs, total, err := s.jobRepo.FindApproved(limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.JobListItem, len(jobs))
	for i := range jobs {
		items[i] = buildJobListItem(&jobs[i])
	}

	return &dto.ListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *JobServiceImpl) MyListings(userID string) ([]dto.JobListItem, error) {
	jobs, err := s.jobRepo.FindByOwner(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.JobListItem, len(jobs))
	for i := range jobs {
		items[i] = buildJobListItem(&jobs[i])
	}
	return items, nil
}

func (s *JobServiceImpl) ByOwner(ownerID string) ([]dto.JobListItem, error) {
	jobs, err := s.jobRepo.FindPublicByOwner(ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.JobListItem, len(jobs))
	for i := range jobs {
		items[i] = buildJobListItem(&jobs[i])
	}
	return items, nil
}

func (s *JobServiceImpl) Delete(ctx context.Context, jobID, userID string) error {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return apperrors.NewNotFoundError("job", "job not found")
		}
		return apperrors.InternalError(err)
	}

	if job.PostedByID != userID {
		return apperrors.ErrNotOwner
	}

	urls := make([]string, len(job.Images))
	for i, img := range job.Images {
		urls[i] = img.ImageURL
	}

	if err := s.jobRepo.Delete(jobID); err != nil {
		return apperrors.InternalError(err)
	}

	s.cleanupUploads(ctx, urls)
	return nil
}

func (s *JobServiceImpl) SetThumbnail(jobID, userID, imageID string) error {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return apperrors.NewNotFoundError("job", "job not found")
		}
		return apperrors.InternalError(err)
	}

	if job.PostedByID != userID {
		return apperrors.ErrNotOwner
	}

	if err := s.jobRepo.SetThumbnail(jobID, imageID); err != nil {
		if apperrors.Is(err, repositories.ErrImageNotFound) {
			return apperrors.NewNotFoundError("image", "image not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) uploadImages(ctx context.Context, folder string, files []dto.FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i := range files {
		if err := ValidateImageUpload(&files[i]); err != nil {
			s.cleanupUploads(ctx, urls)
			return nil, err
		}
		url, _, err := storage.UploadFile(ctx, s.store, folder, files[i].Filename, files[i].Reader, files[i].ContentType)
		if err != nil {
			s.cleanupUploads(ctx, urls)
			return nil, apperrors.UpstreamError(err, "storage", "failed to upload image")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// cleanupUploads удаляет осиротевшие объекты, сбои только логируем
func (s *JobServiceImpl) cleanupUploads(ctx context.Context, urls []string) {
	for _, u := range urls {
		if key, ok := storageKeyFromURL(u); ok {
			if err := s.store.Delete(ctx, key); err != nil {
				logger.Warn("failed to delete orphaned upload", "key", key, "error", err)
			}
		}
	}
}

func jobRequiredFields(req *dto.CreateJobRequest) []validator.RequiredField {
	return []validator.RequiredField{
		{Name: "job_title", Value: req.JobTitle},
		{Name: "company_name", Value: req.CompanyName},
		{Name: "category", Value: req.Category},
		{Name: "job_type", Value: req.JobType},
		{Name: "full_address", Value: req.FullAddress},
		{Name: "state", Value: req.State},
		{Name: "city", Value: req.City},
		{Name: "job_description", Value: req.JobDescription},
		{Name: "requirements", Value: req.Requirements},
		{Name: "education", Value: req.Education},
		{Name: "salary_period", Value: req.SalaryPeriod},
		{Name: "application_method", Value: req.ApplicationMethod},
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func buildJobResponse(job *models.Job) *dto.JobResponse {
	images := make([]dto.ImageResponse, len(job.Images))
	for i, img := range job.Images {
		images[i] = dto.ImageResponse{
			ID:          img.ID,
			ImageURL:    img.ImageURL,
			IsThumbnail: img.IsThumbnail,
			Order:       img.Order,
			Caption:     img.Caption,
		}
	}

	return &dto.JobResponse{
		ID:                  job.ID,
		JobTitle:            job.JobTitle,
		CompanyName:         job.CompanyName,
		Category:            job.Category,
		JobType:             job.JobType,
		FullAddress:         job.FullAddress,
		State:               job.State,
		City:                job.City,
		JobDescription:      job.JobDescription,
		Requirements:        job.Requirements,
		KeyResponsibilities: job.KeyResponsibilities,
		Benefits:            job.Benefits,
		ExperienceYears:     job.ExperienceYears,
		Education:           job.Education,
		MinimumSalary:       job.MinimumSalary,
		MaximumSalary:       job.MaximumSalary,
		SalaryPeriod:        job.SalaryPeriod,
		ApplicationMethod:   job.ApplicationMethod,
		ExternalLink:        job.ExternalLink,
		Status:              string(job.Status),
		IsActive:            job.IsActive,
		RejectionReason:     job.RejectionReason,
		ApplicantCount:      job.ApplicantCount,
		PostedBy:            dto.NewOwnerSummary(job.PostedBy),
		Images:              images,
		CreatedAt:           job.CreatedAt,
	}
}

func buildJobListItem(job *models.Job) dto.JobListItem {
	return dto.JobListItem{
		ID:             job.ID,
		JobTitle:       job.JobTitle,
		CompanyName:    job.CompanyName,
		Category:       job.Category,
		JobType:        job.JobType,
		City:           job.City,
		State:          job.State,
		MinimumSalary:  job.MinimumSalary,
		MaximumSalary:  job.MaximumSalary,
		SalaryPeriod:   job.SalaryPeriod,
		Status:         string(job.Status),
		ApplicantCount: job.ApplicantCount,
		Thumbnail:      jobThumbnailURL(job.Images),
		PostedBy:       dto.NewOwnerSummary(job.PostedBy),
		CreatedAt:      job.CreatedAt,
	}
}

// jobThumbnailURL - URL картинки с is_thumbnail=true, иначе null
func jobThumbnailURL(images []models.JobImage) *string {
	for i := range images {
		if images[i].IsThumbnail {
			return &images[i].ImageURL
		}
	}
	return nil
}
