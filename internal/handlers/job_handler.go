package handlers

import (
	"net/http"
	"strconv"

	"markethub_backend/internal/services"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService         services.JobService
	applicationService services.ApplicationService
	moderationService  services.ModerationService
}

func NewJobHandler(
	base *BaseHandler,
	jobService services.JobService,
	applicationService services.ApplicationService,
	moderationService services.ModerationService,
) *JobHandler {
	return &JobHandler{
		BaseHandler:        base,
		jobService:         jobService,
		applicationService: applicationService,
		moderationService:  moderationService,
	}
}

// Create принимает multipart-форму: поля вакансии + файлы images
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	req := &dto.CreateJobRequest{
		JobTitle:            c.PostForm("job_title"),
		CompanyName:         c.PostForm("company_name"),
		Category:            c.PostForm("category"),
		JobType:             c.PostForm("job_type"),
		FullAddress:         c.PostForm("full_address"),
		State:               c.PostForm("state"),
		City:                c.PostForm("city"),
		JobDescription:      c.PostForm("job_description"),
		Requirements:        c.PostForm("requirements"),
		KeyResponsibilities: c.PostForm("key_responsibilities"),
		Benefits:            c.PostForm("benefits"),
		ExperienceYears:     ParseFormInt(c, "experience_years"),
		Education:           c.PostForm("education"),
		MinimumSalary:       ParseFormFloat(c, "minimum_salary"),
		MaximumSalary:       ParseFormFloat(c, "maximum_salary"),
		SalaryPeriod:        c.PostForm("salary_period"),
		ApplicationMethod:   c.PostForm("application_method"),
		ExternalLink:        c.PostForm("external_link"),
		Captions:            c.PostFormArray("captions"),
		ThumbnailIndex:      parseThumbnailIndex(c),
	}

	images, closers, ok := h.collectImages(c)
	if !ok {
		return
	}
	defer func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}()
	req.Images = images

	resp, err := h.jobService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *JobHandler) List(c *gin.Context) {
	page, limit := ParsePagination(c)

	resp, err := h.jobService.List(page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) GetDetail(c *gin.Context) {
	resp, err := h.jobService.GetDetail(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) MyListings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	items, err := h.jobService.MyListings(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *JobHandler) ByOwner(c *gin.Context) {
	items, err := h.jobService.ByOwner(c.Param("user_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *JobHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

func (h *JobHandler) SetThumbnail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req struct {
		ImageID string `json:"image_id" validate:"required"`
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.jobService.SetThumbnail(c.Param("id"), userID, req.ImageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thumbnail updated"})
}

// Applications

// Apply принимает multipart-форму: поля отклика + файл cv
func (h *JobHandler) Apply(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	req := &dto.ApplyRequest{
		FullName:         c.PostForm("full_name"),
		Email:            c.PostForm("email"),
		PhoneNumber:      c.PostForm("phone_number"),
		ExpectedSalary:   ParseFormFloat(c, "expected_salary"),
		PortfolioWebsite: c.PostForm("portfolio_website"),
		CoverLetter:      c.PostForm("cover_letter"),
	}

	if fh, err := c.FormFile("cv"); err == nil {
		upload, closeFn, ferr := FormFile(fh)
		if ferr != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read cv"))
			return
		}
		defer closeFn()
		req.CV = upload
	}

	resp, err := h.applicationService.Apply(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *JobHandler) MyApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	items, err := h.applicationService.MyApplications(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *JobHandler) ListApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	items, err := h.applicationService.ListForJob(c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *JobHandler) GetApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.GetDetail(c.Param("application_id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateInteractionStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.applicationService.UpdateStatus(c.Param("application_id"), userID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application status updated"})
}

func (h *JobHandler) WithdrawApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.applicationService.Withdraw(c.Param("application_id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}

// Moderation (admin-only, роль проверяет middleware)

func (h *JobHandler) Approve(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.moderationService.ApproveJob(c.Param("id"), adminID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job approved"})
}

func (h *JobHandler) Reject(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.moderationService.RejectJob(c.Param("id"), adminID, req.Reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job rejected"})
}

// collectImages собирает файлы из поля images multipart-формы
func (h *BaseHandler) collectImages(c *gin.Context) ([]dto.FileUpload, []func(), bool) {
	form, err := c.MultipartForm()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("invalid multipart form"))
		return nil, nil, false
	}

	headers := form.File["images"]
	images := make([]dto.FileUpload, 0, len(headers))
	closers := make([]func(), 0, len(headers))

	for _, fh := range headers {
		upload, closeFn, err := FormFile(fh)
		if err != nil {
			for _, cf := range closers {
				cf()
			}
			apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read uploaded image"))
			return nil, nil, false
		}
		images = append(images, *upload)
		closers = append(closers, closeFn)
	}

	return images, closers, true
}

// parseThumbnailIndex: отсутствие поля означает "без миниатюры"
func parseThumbnailIndex(c *gin.Context) int {
	v := c.PostForm("thumbnail_index")
	if v == "" {
		return -1
	}
	idx, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return idx
}
