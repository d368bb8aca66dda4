package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/services/dto"
	"markethub_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[string]*models.Property
	viewErr    error
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: map[string]*models.Property{}}
}

func (r *fakePropertyRepo) add(p *models.Property) *models.Property {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.properties[p.ID] = p
	return p
}

func (r *fakePropertyRepo) CreateWithImages(property *models.Property, images []models.PropertyImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property.ID = uuid.NewString()
	for i := range images {
		images[i].ID = uuid.NewString()
		images[i].PropertyID = property.ID
	}
	property.Images = images
	r.properties[property.ID] = property
	return nil
}

func (r *fakePropertyRepo) FindByID(id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.properties[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrPropertyNotFound
}

func (r *fakePropertyRepo) FindApproved(limit, offset int) ([]models.Property, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Property
	for _, p := range r.properties {
		if p.Status == models.ListingStatusApproved && p.IsActive {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakePropertyRepo) FindByOwner(userID string) ([]models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Property
	for _, p := range r.properties {
		if p.PostedByID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakePropertyRepo) FindPublicByOwner(userID string) ([]models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Property
	for _, p := range r.properties {
		if p.PostedByID == userID && p.Status == models.ListingStatusApproved {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakePropertyRepo) Delete(propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[propertyID]; !ok {
		return repositories.ErrPropertyNotFound
	}
	delete(r.properties, propertyID)
	return nil
}

func (r *fakePropertyRepo) IncrementViewCount(propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewErr != nil {
		return r.viewErr
	}
	p, ok := r.properties[propertyID]
	if !ok {
		return repositories.ErrPropertyNotFound
	}
	p.ViewCount++
	return nil
}

func (r *fakePropertyRepo) SetThumbnail(propertyID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[propertyID]
	if !ok {
		return repositories.ErrPropertyNotFound
	}
	found := false
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			found = true
		}
	}
	if !found {
		return repositories.ErrImageNotFound
	}
	for i := range p.Images {
		p.Images[i].IsThumbnail = p.Images[i].ID == imageID
	}
	return nil
}

func (r *fakePropertyRepo) FindForModeration(id string) (models.ModerableListing, error) {
	return r.FindByID(id)
}

func (r *fakePropertyRepo) SaveModeration(listing models.ModerableListing) error { return nil }

func newPropertyService(props *fakePropertyRepo, users *fakeUserRepo, store *fakeStorage) PropertyService {
	return NewPropertyService(props, NewVerificationService(users), store, &fakeNotification{})
}

func validPropertyRequest() *dto.CreatePropertyRequest {
	return &dto.CreatePropertyRequest{
		PropertyTitle:       "Двушка у метро",
		PropertyType:        "apartment",
		ListingType:         "rent",
		FullAddress:         "мкр. Самал-2, 33",
		State:               "Алматы",
		City:                "Алматы",
		Bedrooms:            2,
		Bathrooms:           1,
		SizeSqm:             58,
		PropertyDescription: "Светлая квартира с ремонтом",
		FurnishingStatus:    "furnished",
		Amenities:           []string{"parking", "elevator"},
		Price:               250000,
		PricePeriod:         "per_month",
		ContactMethod:       "internal",
		ThumbnailIndex:      -1,
	}
}

func TestPropertyCreate_PendingWithAmenities(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	props := newFakePropertyRepo()
	svc := newPropertyService(props, users, &fakeStorage{})

	resp, err := svc.Create(context.Background(), user.ID, validPropertyRequest())

	require.NoError(t, err)
	assert.Equal(t, string(models.ListingStatusPending), resp.Status)
	assert.ElementsMatch(t, []string{"parking", "elevator"}, resp.Amenities)
}

func TestPropertyCreate_ReportsFirstMissingField(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	svc := newPropertyService(newFakePropertyRepo(), users, &fakeStorage{})

	req := validPropertyRequest()
	req.ListingType = ""
	req.ContactMethod = ""

	_, err := svc.Create(context.Background(), user.ID, req)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "listing_type")
}

// Каждый просмотр детальной страницы увеличивает счетчик,
// повторные просмотры того же зрителя тоже считаются
func TestPropertyGetDetail_CountsEveryView(t *testing.T) {
	props := newFakePropertyRepo()
	property := props.add(&models.Property{
		PropertyTitle: "Офис",
		Status:        models.ListingStatusApproved,
	})
	svc := newPropertyService(props, newFakeUserRepo(), &fakeStorage{})

	first, err := svc.GetDetail(property.ID)
	require.NoError(t, err)
	second, err := svc.GetDetail(property.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.ViewCount)
	assert.Equal(t, 2, second.ViewCount)
}

// Сбой инкремента не ломает выдачу деталей
func TestPropertyGetDetail_ViewCountFailureIsSoft(t *testing.T) {
	props := newFakePropertyRepo()
	property := props.add(&models.Property{PropertyTitle: "Склад", ViewCount: 7})
	props.viewErr = assert.AnError
	svc := newPropertyService(props, newFakeUserRepo(), &fakeStorage{})

	resp, err := svc.GetDetail(property.ID)

	require.NoError(t, err)
	assert.Equal(t, 7, resp.ViewCount)
}

func TestPropertySetThumbnail_UnknownImage(t *testing.T) {
	props := newFakePropertyRepo()
	property := props.add(&models.Property{
		PostedByID: "owner-1",
		Images:     []models.PropertyImage{{ID: "img-1"}},
	})
	svc := newPropertyService(props, newFakeUserRepo(), &fakeStorage{})

	err := svc.SetThumbnail(property.ID, "owner-1", "img-missing")

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, strings.ToLower(appErr.Message), "image")
}
