package services

import (
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

type fakeInquiryRepo struct {
	mu        sync.Mutex
	inquiries map[string]*models.PropertyInquiry
	counts    map[string]int
}

func newFakeInquiryRepo() *fakeInquiryRepo {
	return &fakeInquiryRepo{
		inquiries: map[string]*models.PropertyInquiry{},
		counts:    map[string]int{},
	}
}

func (r *fakeInquiryRepo) Create(inquiry *models.PropertyInquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.inquiries {
		if i.PropertyID == inquiry.PropertyID && i.InquirerID == inquiry.InquirerID {
			return repositories.ErrDuplicateEntry
		}
	}
	inquiry.ID = uuid.NewString()
	r.inquiries[inquiry.ID] = inquiry
	r.counts[inquiry.PropertyID]++
	return nil
}

func (r *fakeInquiryRepo) FindByID(id string) (*models.PropertyInquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.inquiries[id]; ok {
		return i, nil
	}
	return nil, repositories.ErrInquiryNotFound
}

func (r *fakeInquiryRepo) FindByProperty(propertyID string) ([]models.PropertyInquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.PropertyInquiry
	for _, i := range r.inquiries {
		if i.PropertyID == propertyID {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (r *fakeInquiryRepo) FindByInquirer(inquirerID string) ([]models.PropertyInquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.PropertyInquiry
	for _, i := range r.inquiries {
		if i.InquirerID == inquirerID {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (r *fakeInquiryRepo) ExistsForPair(propertyID, inquirerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.inquiries {
		if i.PropertyID == propertyID && i.InquirerID == inquirerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInquiryRepo) UpdateStatus(inquiryID string, status models.InquiryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.inquiries[inquiryID]
	if !ok {
		return repositories.ErrInquiryNotFound
	}
	i.Status = status
	return nil
}

func (r *fakeInquiryRepo) Delete(inquiryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.inquiries[inquiryID]
	if !ok {
		return repositories.ErrInquiryNotFound
	}
	delete(r.inquiries, inquiryID)
	if r.counts[i.PropertyID] > 0 {
		r.counts[i.PropertyID]--
	}
	return nil
}

func newInquiryService(inquiries *fakeInquiryRepo, props *fakePropertyRepo, users *fakeUserRepo) InquiryService {
	return NewInquiryService(inquiries, props, NewVerificationService(users), &fakeNotification{})
}

func approvedProperty(props *fakePropertyRepo, ownerID string) *models.Property {
	return props.add(&models.Property{
		PropertyTitle: "Студия",
		Status:        models.ListingStatusApproved,
		IsActive:      true,
		PostedByID:    ownerID,
	})
}

func validInquiryRequest() *dto.InquiryCreateRequest {
	return &dto.InquiryCreateRequest{
		FullName:    "Медет Абенов",
		Email:       "medet@test.com",
		PhoneNumber: "+77017654321",
		Message:     "Когда можно посмотреть квартиру?",
	}
}

func TestInquiryCreate_PendingProperty(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	props := newFakePropertyRepo()
	property := props.add(&models.Property{Status: models.ListingStatusPending, PostedByID: "owner-1"})
	svc := newInquiryService(newFakeInquiryRepo(), props, users)

	_, err := svc.Create(property.ID, user.ID, validInquiryRequest())

	assert.ErrorIs(t, err, apperrors.ErrListingNotOpen)
}

func TestInquiryCreate_Success(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	props := newFakePropertyRepo()
	property := approvedProperty(props, "owner-1")
	inquiries := newFakeInquiryRepo()
	svc := newInquiryService(inquiries, props, users)

	resp, err := svc.Create(property.ID, user.ID, validInquiryRequest())

	require.NoError(t, err)
	assert.Equal(t, string(models.InquiryStatusPending), resp.Status)
	assert.Equal(t, 1, inquiries.counts[property.ID])
}

func TestInquiryCreate_DuplicatePair(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	props := newFakePropertyRepo()
	property := approvedProperty(props, "owner-1")
	inquiries := newFakeInquiryRepo()
	svc := newInquiryService(inquiries, props, users)

	_, err := svc.Create(property.ID, user.ID, validInquiryRequest())
	require.NoError(t, err)

	_, err = svc.Create(property.ID, user.ID, validInquiryRequest())

	assert.ErrorIs(t, err, apperrors.ErrDuplicateInquiry)
	assert.Equal(t, 1, inquiries.counts[property.ID])
}

func TestInquiryUpdateStatus_InvalidValue(t *testing.T) {
	svc := newInquiryService(newFakeInquiryRepo(), newFakePropertyRepo(), newFakeUserRepo())

	err := svc.UpdateStatus("inq-1", "owner-1", "maybe_later")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInteractionStatus)
}

func TestInquiryWithdraw_InquirerOnly(t *testing.T) {
	users := newFakeUserRepo()
	user := verifiedUser(users)
	props := newFakePropertyRepo()
	property := approvedProperty(props, "owner-1")
	inquiries := newFakeInquiryRepo()
	svc := newInquiryService(inquiries, props, users)

	resp, err := svc.Create(property.ID, user.ID, validInquiryRequest())
	require.NoError(t, err)

	err = svc.Withdraw(resp.ID, "owner-1")
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	err = svc.Withdraw(resp.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, inquiries.counts[property.ID])
}
