package repositories

import (
	"errors"

	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPropertyNotFound = errors.New("property not found")

type PropertyRepository interface {
	// CreateWithImages атомарно создает объект вместе с картинками
	CreateWithImages(property *models.Property, images []models.PropertyImage) error
	FindByID(id string) (*models.Property, error)
	FindApproved(limit, offset int) ([]models.Property, int64, error)
	FindByOwner(userID string) ([]models.Property, error)
	FindPublicByOwner(userID string) ([]models.Property, error)
	Delete(propertyID string) error

	// IncrementViewCount добавляет ровно 1 к view_count на стороне SQL
	IncrementViewCount(propertyID string) error

	// SetThumbnail атомарно снимает флаг с остальных картинок и ставит новой
	SetThumbnail(propertyID, imageID string) error

	// Moderation
	FindForModeration(id string) (models.ModerableListing, error)
	SaveModeration(listing models.ModerableListing) error
}

type PropertyRepositoryImpl struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &PropertyRepositoryImpl{db: db}
}

func (r *PropertyRepositoryImpl) CreateWithImages(property *models.Property, images []models.PropertyImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(property).Error; err != nil {
			return err
		}

		for i := range images {
			images[i].PropertyID = property.ID
			if err := tx.Create(&images[i]).Error; err != nil {
				return err
			}
		}

		property.Images = images
		return nil
	})
}

func (r *PropertyRepositoryImpl) FindByID(id string) (*models.Property, error) {
	var property models.Property
	err := r.db.Preload("PostedBy").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(imageOrderClause)
		}).
		First(&property, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepositoryImpl) FindApproved(limit, offset int) ([]models.Property, int64, error) {
	query := r.db.Model(&models.Property{}).
		Where("status = ? AND is_active = ?", models.ListingStatusApproved, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []models.Property
	err := query.Preload("PostedBy").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(imageOrderClause)
		}).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&properties).Error

	return properties, total, err
}

func (r *PropertyRepositoryImpl) FindByOwner(userID string) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order(imageOrderClause)
	}).
		Where("posted_by_id = ?", userID).
		Order("created_at DESC").
		Find(&properties).Error
	return properties, err
}

func (r *PropertyRepositoryImpl) FindPublicByOwner(userID string) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order(imageOrderClause)
	}).
		Where("posted_by_id = ? AND status = ? AND is_active = ?",
			userID, models.ListingStatusApproved, true).
		Order("created_at DESC").
		Find(&properties).Error
	return properties, err
}

func (r *PropertyRepositoryImpl) Delete(propertyID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", propertyID).Delete(&models.PropertyInquiry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", propertyID).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", propertyID).Delete(&models.Property{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPropertyNotFound
		}
		return nil
	})
}

func (r *PropertyRepositoryImpl) IncrementViewCount(propertyID string) error {
	result := r.db.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepositoryImpl) SetThumbnail(propertyID, imageID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var image models.PropertyImage
		err := tx.First(&image, "id = ? AND property_id = ?", imageID, propertyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return err
		}

		if err := tx.Model(&models.PropertyImage{}).
			Where("property_id = ?", propertyID).
			Update("is_thumbnail", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.PropertyImage{}).
			Where("id = ?", imageID).
			Update("is_thumbnail", true).Error
	})
}

// Moderation

func (r *PropertyRepositoryImpl) FindForModeration(id string) (models.ModerableListing, error) {
	var property models.Property
	err := r.db.Preload("PostedBy").First(&property, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepositoryImpl) SaveModeration(listing models.ModerableListing) error {
	property, ok := listing.(*models.Property)
	if !ok {
		return ErrPropertyNotFound
	}

	// Условие по статусу держит машину состояний на уровне БД:
	// из двух конкурентных переходов коммитится ровно один
	result := r.db.Model(&models.Property{}).
		Where("id = ? AND status = ?", property.ID, models.ListingStatusPending).
		Updates(map[string]interface{}{
			"status":           property.Status,
			"approved_by_id":   property.ApprovedByID,
			"approval_date":    property.ApprovalDate,
			"rejection_reason": property.RejectionReason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotPending
	}
	return nil
}
