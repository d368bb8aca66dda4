package services

import (
	"context"
	"encoding/json"

	"markethub_backend/internal/logger"
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/services/dto"
	"markethub_backend/internal/storage"
	"markethub_backend/internal/validator"
	"markethub_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type PropertyService interface {
	Create(ctx context.Context, userID string, req *dto.CreatePropertyRequest) (*dto.PropertyResponse, error)
	// GetDetail инкрементирует view_count на каждый вызов, без
	// дедупликации по зрителю
	GetDetail(propertyID string) (*dto.PropertyResponse, error)
	List(page, limit int) (*dto.ListResponse, error)
	MyListings(userID string) ([]dto.PropertyListItem, error)
	ByOwner(ownerID string) ([]dto.PropertyListItem, error)
	Delete(ctx context.Context, propertyID, userID string) error
	SetThumbnail(propertyID, userID, imageID string) error
}

type PropertyServiceImpl struct {
	propertyRepo repositories.PropertyRepository
	verification VerificationService
	store        storage.Storage
	notification NotificationService
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	verification VerificationService,
	store storage.Storage,
	notification NotificationService,
) PropertyService {
	return &PropertyServiceImpl{
		propertyRepo: propertyRepo,
		verification: verification,
		store:        store,
		notification: notification,
	}
}

func (s *PropertyServiceImpl) Create(ctx context.Context, userID string, req *dto.CreatePropertyRequest) (*dto.PropertyResponse, error) {
	user, err := s.verification.CanActByID(userID)
	if err != nil {
		return nil, err
	}

	if field, missing := validator.FirstMissing(propertyRequiredFields(req)); missing {
		return nil, apperrors.MissingFieldError(field)
	}

	urls, err := s.uploadImages(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	amenities, err := json.Marshal(req.Amenities)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	property := &models.Property{
		PropertyTitle:       req.PropertyTitle,
		PropertyType:        req.PropertyType,
		ListingType:         req.ListingType,
		FullAddress:         req.FullAddress,
		State:               req.State,
		City:                req.City,
		Bedrooms:            req.Bedrooms,
		Bathrooms:           req.Bathrooms,
		SizeSqm:             req.SizeSqm,
		ParkingSpots:        req.ParkingSpots,
		PropertyDescription: req.PropertyDescription,
		FurnishingStatus:    req.FurnishingStatus,
		Amenities:           datatypes.JSON(amenities),
		Price:               req.Price,
		PricePeriod:         req.PricePeriod,
		ContactMethod:       req.ContactMethod,
		ExternalLink:        req.ExternalLink,
		Status:              models.ListingStatusPending,
		IsActive:            true,
		PostedByID:          userID,
	}

	images := make([]models.PropertyImage, len(urls))
	for i, u := range urls {
		caption := ""
		if i < len(req.Captions) {
			caption = req.Captions[i]
		}
		images[i] = models.PropertyImage{
			ImageURL:    u,
			IsThumbnail: i == req.ThumbnailIndex,
			Order:       i,
			Caption:     caption,
		}
	}

	if err := s.propertyRepo.CreateWithImages(property, images); err != nil {
		s.cleanupUploads(ctx, urls)
		return nil, apperrors.InternalError(err)
	}

	property.PostedBy = user

	// Транзакция закоммичена: письмо владельцу строго best-effort
	go s.notification.SendListingSubmitted(user, property)

	return buildPropertyResponse(property), nil
}

func (s *PropertyServiceImpl) GetDetail(propertyID string) (*dto.PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(propertyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return nil, apperrors.NewNotFoundError("property", "property not found")
		}
		return nil, apperrors.InternalError(err)
	}

	// Каждый просмотр считается, повторы того же зрителя тоже
	if err := s.propertyRepo.IncrementViewCount(propertyID); err != nil {
		logger.Warn("failed to increment view count", "property_id", propertyID, "error", err)
	} else {
		property.ViewCount++
	}

	return buildPropertyResponse(property), nil
}

func (s *PropertyServiceImpl) List(page, limit int) (*dto.ListResponse, error) {
	page, limit = normalizePage(page, limit)

	properties, total, err := s.propertyRepo.FindApproved(limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.PropertyListItem, len(properties))
	for i := range properties {
		items[i] = buildPropertyListItem(&properties[i])
	}

	return &dto.ListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *PropertyServiceImpl) MyListings(userID string) ([]dto.PropertyListItem, error) {
	properties, err := s.propertyRepo.FindByOwner(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.PropertyListItem, len(properties))
	for i := range properties {
		items[i] = buildPropertyListItem(&properties[i])
	}
	return items, nil
}

func (s *PropertyServiceImpl) ByOwner(ownerID string) ([]dto.PropertyListItem, error) {
	properties, err := s.propertyRepo.FindPublicByOwner(ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.PropertyListItem, len(properties))
	for i := range properties {
		items[i] = buildPropertyListItem(&properties[i])
	}
	return items, nil
}

func (s *PropertyServiceImpl) Delete(ctx context.Context, propertyID, userID string) error {
	property, err := s.propertyRepo.FindByID(propertyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return apperrors.NewNotFoundError("property", "property not found")
		}
		return apperrors.InternalError(err)
	}

	if property.PostedByID != userID {
		return apperrors.ErrNotOwner
	}

	urls := make([]string, len(property.Images))
	for i, img := range property.Images {
		urls[i] = img.ImageURL
	}

	if err := s.propertyRepo.Delete(propertyID); err != nil {
		return apperrors.InternalError(err)
	}

	s.cleanupUploads(ctx, urls)
	return nil
}

func (s *PropertyServiceImpl) SetThumbnail(propertyID, userID, imageID string) error {
	property, err := s.propertyRepo.FindByID(propertyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return apperrors.NewNotFoundError("property", "property not found")
		}
		return apperrors.InternalError(err)
	}

	if property.PostedByID != userID {
		return apperrors.ErrNotOwner
	}

	if err := s.propertyRepo.SetThumbnail(propertyID, imageID); err != nil {
		if apperrors.Is(err, repositories.ErrImageNotFound) {
			return apperrors.NewNotFoundError("image", "image not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *PropertyServiceImpl) uploadImages(ctx context.Context, files []dto.FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i := range files {
		if err := ValidateImageUpload(&files[i]); err != nil {
			s.cleanupUploads(ctx, urls)
			return nil, err
		}
		url, _, err := storage.UploadFile(ctx, s.store, storage.FolderPropertyImages,
			files[i].Filename, files[i].Reader, files[i].ContentType)
		if err != nil {
			s.cleanupUploads(ctx, urls)
			return nil, apperrors.UpstreamError(err, "storage", "failed to upload image")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *PropertyServiceImpl) cleanupUploads(ctx context.Context, urls []string) {
	for _, u := range urls {
		if key, ok := storageKeyFromURL(u); ok {
			if err := s.store.Delete(ctx, key); err != nil {
				logger.Warn("failed to delete orphaned upload", "key", key, "error", err)
			}
		}
	}
}

func propertyRequiredFields(req *dto.CreatePropertyRequest) []validator.RequiredField {
	return []validator.RequiredField{
		{Name: "property_title", Value: req.PropertyTitle},
		{Name: "property_type", Value: req.PropertyType},
		{Name: "listing_type", Value: req.ListingType},
		{Name: "full_address", Value: req.FullAddress},
		{Name: "state", Value: req.State},
		{Name: "city", Value: req.City},
		{Name: "property_description", Value: req.PropertyDescription},
		{Name: "furnishing_status", Value: req.FurnishingStatus},
		{Name: "price_period", Value: req.PricePeriod},
		{Name: "contact_method", Value: req.ContactMethod},
	}
}

func buildPropertyResponse(property *models.Property) *dto.PropertyResponse {
	images := make([]dto.ImageResponse, len(property.Images))
	for i, img := range property.Images {
		images[i] = dto.ImageResponse{
			ID:          img.ID,
			ImageURL:    img.ImageURL,
			IsThumbnail: img.IsThumbnail,
			Order:       img.Order,
			Caption:     img.Caption,
		}
	}

	var amenities []string
	if len(property.Amenities) > 0 {
		// Некорректный JSON в колонке означает баг записи, отдаем пустой список
		_ = json.Unmarshal(property.Amenities, &amenities)
	}

	return &dto.PropertyResponse{
		ID:                  property.ID,
		PropertyTitle:       property.PropertyTitle,
		PropertyType:        property.PropertyType,
		ListingType:         property.ListingType,
		FullAddress:         property.FullAddress,
		State:               property.State,
		City:                property.City,
		Bedrooms:            property.Bedrooms,
		Bathrooms:           property.Bathrooms,
		SizeSqm:             property.SizeSqm,
		ParkingSpots:        property.ParkingSpots,
		PropertyDescription: property.PropertyDescription,
		FurnishingStatus:    property.FurnishingStatus,
		Amenities:           amenities,
		Price:               property.Price,
		PricePeriod:         property.PricePeriod,
		ContactMethod:       property.ContactMethod,
		ExternalLink:        property.ExternalLink,
		Status:              string(property.Status),
		IsActive:            property.IsActive,
		RejectionReason:     property.RejectionReason,
		InquiryCount:        property.InquiryCount,
		ViewCount:           property.ViewCount,
		PostedBy:            dto.NewOwnerSummary(property.PostedBy),
		Images:              images,
		CreatedAt:           property.CreatedAt,
	}
}

func buildPropertyListItem(property *models.Property) dto.PropertyListItem {
	return dto.PropertyListItem{
		ID:            property.ID,
		PropertyTitle: property.PropertyTitle,
		PropertyType:  property.PropertyType,
		ListingType:   property.ListingType,
		City:          property.City,
		State:         property.State,
		Bedrooms:      property.Bedrooms,
		Bathrooms:     property.Bathrooms,
		Price:         property.Price,
		PricePeriod:   property.PricePeriod,
		Status:        string(property.Status),
		InquiryCount:  property.InquiryCount,
		ViewCount:     property.ViewCount,
		Thumbnail:     propertyThumbnailURL(property.Images),
		PostedBy:      dto.NewOwnerSummary(property.PostedBy),
		CreatedAt:     property.CreatedAt,
	}
}

func propertyThumbnailURL(images []models.PropertyImage) *string {
	for i := range images {
		if images[i].IsThumbnail {
			return &images[i].ImageURL
		}
	}
	return nil
}
