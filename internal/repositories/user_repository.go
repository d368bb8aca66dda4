package repositories

import (
	"errors"
	"strings"
	"time"

	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	// User operations
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdatePassword(userID string, passwordHash string) error
	// UpdateEmail меняет адрес и сбрасывает флаг верификации
	UpdateEmail(userID string, email string) error
	UpdatePhoto(userID string, column string, url string) error
	MarkEmailVerified(userID string) error
	Delete(userID string) error
	ExistsByEmail(email string) (bool, error)

	// Identity operations
	FindIdentity(userID string) (*models.IdentityVerification, error)
	SaveIdentity(identity *models.IdentityVerification) error
	SetIdentityVerified(userID string, verified bool) error
	FindPendingIdentities(limit, offset int) ([]models.IdentityVerification, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// User operations

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Identity").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Identity").
		First(&user, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	user.Email = strings.ToLower(user.Email)

	// Check if user already exists
	var existing models.User
	if err := r.db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) Update(user *models.User) error {
	result := r.db.Model(user).Updates(map[string]interface{}{
		"email":         strings.ToLower(user.Email),
		"first_name":    user.FirstName,
		"surname":       user.Surname,
		"last_name":     user.LastName,
		"phone_number":  user.PhoneNumber,
		"location":      user.Location,
		"profile_photo": user.ProfilePhoto,
		"cover_photo":   user.CoverPhoto,
		"updated_at":    time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdatePassword(userID string, passwordHash string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateEmail(userID string, email string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email":          strings.ToLower(email),
		"email_verified": false,
		"updated_at":     time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdatePhoto(userID string, column string, url string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		column:       url,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) MarkEmailVerified(userID string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email_verified": true,
		"updated_at":     time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.IdentityVerification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetOTP{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

// Identity operations

func (r *UserRepositoryImpl) FindIdentity(userID string) (*models.IdentityVerification, error) {
	var identity models.IdentityVerification
	err := r.db.First(&identity, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// SaveIdentity создает или обновляет анкету верификации личности.
// При повторной отправке флаг verified не трогаем: одобренный пользователь
// не теряет доступ из-за обновления документов.
func (r *UserRepositoryImpl) SaveIdentity(identity *models.IdentityVerification) error {
	var existing models.IdentityVerification
	err := r.db.First(&existing, "user_id = ?", identity.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(identity).Error
		}
		return err
	}

	return r.db.Model(&existing).Updates(map[string]interface{}{
		"id_document":   identity.IDDocument,
		"date_of_birth": identity.DateOfBirth,
		"gender":        identity.Gender,
		"address":       identity.Address,
		"submitted_at":  time.Now(),
	}).Error
}

func (r *UserRepositoryImpl) SetIdentityVerified(userID string, verified bool) error {
	result := r.db.Model(&models.IdentityVerification{}).
		Where("user_id = ?", userID).
		Update("verified", verified)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindPendingIdentities(limit, offset int) ([]models.IdentityVerification, error) {
	var identities []models.IdentityVerification
	err := r.db.Where("verified = ?", false).
		Order("submitted_at ASC").
		Limit(limit).Offset(offset).
		Find(&identities).Error
	return identities, err
}
