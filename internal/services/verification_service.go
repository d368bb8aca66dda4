package services

import (
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/pkg/apperrors"
)

// VerificationService - гейт доступности действий.
// Порядок проверок фиксирован: сначала email, потом наличие анкеты,
// потом одобрение; клиент различает причины отказа по коду ошибки.
type VerificationService interface {
	// CanAct возвращает nil, если пользователю можно создавать листинги
	// и взаимодействовать с чужими
	CanAct(user *models.User) error
	// CanActByID загружает пользователя и проверяет гейт
	CanActByID(userID string) (*models.User, error)
}

type VerificationServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewVerificationService(userRepo repositories.UserRepository) VerificationService {
	return &VerificationServiceImpl{userRepo: userRepo}
}

func (s *VerificationServiceImpl) CanAct(user *models.User) error {
	if !user.EmailVerified {
		return apperrors.ErrEmailNotVerified
	}
	if user.Identity == nil {
		return apperrors.ErrIdentityNotSubmitted
	}
	if !user.Identity.Verified {
		return apperrors.ErrIdentityNotApproved
	}
	return nil
}

func (s *VerificationServiceImpl) CanActByID(userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if err := s.CanAct(user); err != nil {
		return nil, err
	}
	return user, nil
}
