package repositories

import (
	"errors"

	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrInquiryNotFound = errors.New("inquiry not found")

type InquiryRepository interface {
	// Create атомарно: проверка дубликата, вставка запроса и инкремент
	// inquiry_count в одной транзакции
	Create(inquiry *models.PropertyInquiry) error
	FindByID(id string) (*models.PropertyInquiry, error)
	FindByProperty(propertyID string) ([]models.PropertyInquiry, error)
	FindByInquirer(inquirerID string) ([]models.PropertyInquiry, error)
	ExistsForPair(propertyID, inquirerID string) (bool, error)
	UpdateStatus(inquiryID string, status models.InquiryStatus) error
	// Delete удаляет запрос и декрементирует счетчик (не ниже нуля)
	Delete(inquiryID string) error
}

type InquiryRepositoryImpl struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &InquiryRepositoryImpl{db: db}
}

func (r *InquiryRepositoryImpl) Create(inquiry *models.PropertyInquiry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.PropertyInquiry{}).
			Where("property_id = ? AND inquirer_id = ?", inquiry.PropertyID, inquiry.InquirerID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEntry
		}

		if err := tx.Create(inquiry).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEntry
			}
			return err
		}

		return tx.Model(&models.Property{}).
			Where("id = ?", inquiry.PropertyID).
			Update("inquiry_count", gorm.Expr("inquiry_count + 1")).Error
	})
}

func (r *InquiryRepositoryImpl) FindByID(id string) (*models.PropertyInquiry, error) {
	var inquiry models.PropertyInquiry
	err := r.db.Preload("Inquirer").Preload("Property").
		First(&inquiry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}
	return &inquiry, nil
}

func (r *InquiryRepositoryImpl) FindByProperty(propertyID string) ([]models.PropertyInquiry, error) {
	var inquiries []models.PropertyInquiry
	err := r.db.Preload("Inquirer").
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&inquiries).Error
	return inquiries, err
}

func (r *InquiryRepositoryImpl) FindByInquirer(inquirerID string) ([]models.PropertyInquiry, error) {
	var inquiries []models.PropertyInquiry
	err := r.db.Preload("Property").Preload("Property.Images", func(db *gorm.DB) *gorm.DB {
		return db.Order(imageOrderClause)
	}).
		Where("inquirer_id = ?", inquirerID).
		Order("created_at DESC").
		Find(&inquiries).Error
	return inquiries, err
}

func (r *InquiryRepositoryImpl) ExistsForPair(propertyID, inquirerID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PropertyInquiry{}).
		Where("property_id = ? AND inquirer_id = ?", propertyID, inquirerID).
		Count(&count).Error
	return count > 0, err
}

func (r *InquiryRepositoryImpl) UpdateStatus(inquiryID string, status models.InquiryStatus) error {
	result := r.db.Model(&models.PropertyInquiry{}).
		Where("id = ?", inquiryID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

func (r *InquiryRepositoryImpl) Delete(inquiryID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var inquiry models.PropertyInquiry
		err := tx.First(&inquiry, "id = ?", inquiryID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInquiryNotFound
			}
			return err
		}

		if err := tx.Delete(&inquiry).Error; err != nil {
			return err
		}

		// Счетчик не уходит в минус даже при рассинхроне
		return tx.Model(&models.Property{}).
			Where("id = ?", inquiry.PropertyID).
			Update("inquiry_count", gorm.Expr("GREATEST(inquiry_count - 1, 0)")).Error
	})
}
