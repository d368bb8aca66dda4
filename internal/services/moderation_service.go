package services

import (
	"time"

	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/pkg/apperrors"
)

// ModerableStore - часть репозитория листинга, нужная модерации.
// Job и Property проходят один и тот же жизненный цикл, поэтому машина
// состояний написана один раз поверх этого интерфейса.
type ModerableStore interface {
	FindForModeration(id string) (models.ModerableListing, error)
	SaveModeration(listing models.ModerableListing) error
}

type ModerationService interface {
	ApproveJob(jobID, adminID string) error
	RejectJob(jobID, adminID, reason string) error
	ApproveProperty(propertyID, adminID string) error
	RejectProperty(propertyID, adminID, reason string) error
}

type ModerationServiceImpl struct {
	jobRepo      ModerableStore
	propertyRepo ModerableStore
	notification NotificationService
}

func NewModerationService(
	jobRepo repositories.JobRepository,
	propertyRepo repositories.PropertyRepository,
	notification NotificationService,
) ModerationService {
	return &ModerationServiceImpl{
		jobRepo:      jobRepo,
		propertyRepo: propertyRepo,
		notification: notification,
	}
}

func (s *ModerationServiceImpl) ApproveJob(jobID, adminID string) error {
	return s.transition(s.jobRepo, jobID, adminID, models.ListingStatusApproved, "")
}

func (s *ModerationServiceImpl) RejectJob(jobID, adminID, reason string) error {
	return s.transition(s.jobRepo, jobID, adminID, models.ListingStatusRejected, reason)
}

func (s *ModerationServiceImpl) ApproveProperty(propertyID, adminID string) error {
	return s.transition(s.propertyRepo, propertyID, adminID, models.ListingStatusApproved, "")
}

func (s *ModerationServiceImpl) RejectProperty(propertyID, adminID, reason string) error {
	return s.transition(s.propertyRepo, propertyID, adminID, models.ListingStatusRejected, reason)
}

// transition - единственная точка смены статуса листинга.
// approved и rejected терминальны: повторный перевод в любое состояние
// отклоняется с InvalidState, различая already approved / already rejected.
func (s *ModerationServiceImpl) transition(store ModerableStore, listingID, adminID string, target models.ListingStatus, reason string) error {
	listing, err := store.FindForModeration(listingID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) || apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return apperrors.NewNotFoundError("listing", "listing not found")
		}
		return apperrors.InternalError(err)
	}

	switch listing.GetStatus() {
	case models.ListingStatusApproved:
		return apperrors.ErrAlreadyApproved
	case models.ListingStatusRejected:
		return apperrors.ErrAlreadyRejected
	case models.ListingStatusPending:
		// единственное состояние, из которого разрешен переход
	default:
		return apperrors.ErrNotPending
	}

	listing.SetStatus(target)
	listing.SetModeration(adminID, time.Now(), reason)

	if err := store.SaveModeration(listing); err != nil {
		// Параллельный переход успел первым: статус уже не pending
		if apperrors.Is(err, repositories.ErrListingNotPending) {
			return apperrors.ErrNotPending
		}
		return apperrors.InternalError(err)
	}

	// Переход уже закоммичен: письмо владельцу строго best-effort
	if owner := listingOwner(listing); owner != nil {
		go func() {
			if target == models.ListingStatusApproved {
				s.notification.SendListingApproved(owner, listing)
			} else {
				s.notification.SendListingRejected(owner, listing, reason)
			}
		}()
	}

	return nil
}

func listingOwner(listing models.ModerableListing) *models.User {
	switch l := listing.(type) {
	case *models.Job:
		return l.PostedBy
	case *models.Property:
		return l.PostedBy
	}
	return nil
}
