package services

import (
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"
)

type InquiryService interface {
	Create(propertyID, userID string, req *dto.InquiryCreateRequest) (*dto.InquiryResponse, error)
	MyInquiries(userID string) ([]dto.InquiryResponse, error)
	ListForProperty(propertyID, requesterID string) ([]dto.InquiryResponse, error)
	GetDetail(inquiryID, requesterID string) (*dto.InquiryResponse, error)
	UpdateStatus(inquiryID, requesterID, status string) error
	Withdraw(inquiryID, requesterID string) error
}

type InquiryServiceImpl struct {
	inquiryRepo  repositories.InquiryRepository
	propertyRepo repositories.PropertyRepository
	verification VerificationService
	notification NotificationService
}

func NewInquiryService(
	inquiryRepo repositories.InquiryRepository,
	propertyRepo repositories.PropertyRepository,
	verification VerificationService,
	notification NotificationService,
) InquiryService {
	return &InquiryServiceImpl{
		inquiryRepo:  inquiryRepo,
		propertyRepo: propertyRepo,
		verification: verification,
		notification: notification,
	}
}

// Create - запрос по объекту недвижимости.
// Неодобренный объект запросов не принимает, даже от владельца.
// Вставка, проверка дубликата и инкремент счетчика атомарны в репозитории.
func (s *InquiryServiceImpl) Create(propertyID, userID string, req *dto.InquiryCreateRequest) (*dto.InquiryResponse, error) {
	user, err := s.verification.CanActByID(userID)
	if err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(propertyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return nil, apperrors.NewNotFoundError("property", "property not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if property.Status != models.ListingStatusApproved {
		return nil, apperrors.ErrListingNotOpen
	}

	inquiry := &models.PropertyInquiry{
		PropertyID:  propertyID,
		InquirerID:  userID,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Message:     req.Message,
		Budget:      req.Budget,
		MoveInDate:  req.MoveInDate,
		Status:      models.InquiryStatusPending,
	}

	if err := s.inquiryRepo.Create(inquiry); err != nil {
		if apperrors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, apperrors.ErrDuplicateInquiry
		}
		return nil, apperrors.InternalError(err)
	}

	// Вставка закоммичена: оба письма строго best-effort
	go func() {
		s.notification.SendInteractionConfirmation(user.Email, "inquiry", property.PropertyTitle)
		if property.PostedBy != nil {
			s.notification.SendInteractionNotification(property.PostedBy.Email, "inquiry", property.PropertyTitle, req.FullName)
		}
	}()

	return buildInquiryResponse(inquiry), nil
}

func (s *InquiryServiceImpl) MyInquiries(userID string) ([]dto.InquiryResponse, error) {
	inquiries, err := s.inquiryRepo.FindByInquirer(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.InquiryResponse, len(inquiries))
	for i := range inquiries {
		resp := buildInquiryResponse(&inquiries[i])
		if property := inquiries[i].Property; property != nil {
			resp.PropertyTitle = property.PropertyTitle
			resp.PropertyThumbnail = propertyThumbnailURL(property.Images)
		}
		responses[i] = *resp
	}
	return responses, nil
}

func (s *InquiryServiceImpl) ListForProperty(propertyID, requesterID string) ([]dto.InquiryResponse, error) {
	property, err := s.propertyRepo.FindByID(propertyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return nil, apperrors.NewNotFoundError("property", "property not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if property.PostedByID != requesterID {
		return nil, apperrors.ErrNotOwner
	}

	inquiries, err := s.inquiryRepo.FindByProperty(propertyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.InquiryResponse, len(inquiries))
	for i := range inquiries {
		responses[i] = *buildInquiryResponse(&inquiries[i])
	}
	return responses, nil
}

// GetDetail доступен автору запроса и владельцу объекта
func (s *InquiryServiceImpl) GetDetail(inquiryID, requesterID string) (*dto.InquiryResponse, error) {
	inquiry, err := s.inquiryRepo.FindByID(inquiryID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrInquiryNotFound) {
			return nil, apperrors.NewNotFoundError("inquiry", "inquiry not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if inquiry.InquirerID != requesterID &&
		(inquiry.Property == nil || inquiry.Property.PostedByID != requesterID) {
		return nil, apperrors.ErrNotOwner
	}

	resp := buildInquiryResponse(inquiry)
	if property := inquiry.Property; property != nil {
		resp.PropertyTitle = property.PropertyTitle
	}
	return resp, nil
}

func (s *InquiryServiceImpl) UpdateStatus(inquiryID, requesterID, status string) error {
	if !models.IsValidInquiryStatus(models.InquiryStatus(status)) {
		return apperrors.ErrInvalidInteractionStatus
	}

	inquiry, err := s.inquiryRepo.FindByID(inquiryID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrInquiryNotFound) {
			return apperrors.NewNotFoundError("inquiry", "inquiry not found")
		}
		return apperrors.InternalError(err)
	}

	if inquiry.Property == nil || inquiry.Property.PostedByID != requesterID {
		return apperrors.ErrNotOwner
	}

	if err := s.inquiryRepo.UpdateStatus(inquiryID, models.InquiryStatus(status)); err != nil {
		return apperrors.InternalError(err)
	}

	go s.notification.SendInteractionStatusChanged(
		inquiry.Email, "inquiry", inquiry.Property.PropertyTitle, status)

	return nil
}

// Withdraw - автор забирает свой запрос, счетчик уменьшается
func (s *InquiryServiceImpl) Withdraw(inquiryID, requesterID string) error {
	inquiry, err := s.inquiryRepo.FindByID(inquiryID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrInquiryNotFound) {
			return apperrors.NewNotFoundError("inquiry", "inquiry not found")
		}
		return apperrors.InternalError(err)
	}

	if inquiry.InquirerID != requesterID {
		return apperrors.ErrNotOwner
	}

	if err := s.inquiryRepo.Delete(inquiryID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func buildInquiryResponse(i *models.PropertyInquiry) *dto.InquiryResponse {
	return &dto.InquiryResponse{
		ID:          i.ID,
		PropertyID:  i.PropertyID,
		InquirerID:  i.InquirerID,
		FullName:    i.FullName,
		Email:       i.Email,
		PhoneNumber: i.PhoneNumber,
		Message:     i.Message,
		Budget:      i.Budget,
		MoveInDate:  i.MoveInDate,
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
	}
}
