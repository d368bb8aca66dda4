package repositories

import (
	"errors"
	"strings"

	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrDuplicateEntry      = errors.New("duplicate entry")
)

// isUniqueViolation распознает нарушение уникального индекса.
// Уникальный индекс по (listing, actor) - страховка от гонки
// check-then-insert, поэтому ошибку БД переводим в доменную.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

type ApplicationRepository interface {
	// Create атомарно: проверка дубликата, вставка отклика и инкремент
	// applicant_count в одной транзакции
	Create(application *models.JobApplication) error
	FindByID(id string) (*models.JobApplication, error)
	FindByJob(jobID string) ([]models.JobApplication, error)
	FindByApplicant(applicantID string) ([]models.JobApplication, error)
	ExistsForPair(jobID, applicantID string) (bool, error)
	UpdateStatus(applicationID string, status models.ApplicationStatus) error
	// Delete удаляет отклик и декрементирует счетчик (не ниже нуля)
	Delete(applicationID string) error
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(application *models.JobApplication) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.JobApplication{}).
			Where("job_id = ? AND applicant_id = ?", application.JobID, application.ApplicantID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEntry
		}

		if err := tx.Create(application).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEntry
			}
			return err
		}

		return tx.Model(&models.Job{}).
			Where("id = ?", application.JobID).
			Update("applicant_count", gorm.Expr("applicant_count + 1")).Error
	})
}

func (r *ApplicationRepositoryImpl) FindByID(id string) (*models.JobApplication, error) {
	var application models.JobApplication
	err := r.db.Preload("Applicant").Preload("Job").
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByJob(jobID string) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := r.db.Preload("Applicant").
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindByApplicant(applicantID string) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := r.db.Preload("Job").Preload("Job.Images", func(db *gorm.DB) *gorm.DB {
		return db.Order(imageOrderClause)
	}).
		Where("applicant_id = ?", applicantID).
		Order("applied_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) ExistsForPair(jobID, applicantID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.JobApplication{}).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepositoryImpl) UpdateStatus(applicationID string, status models.ApplicationStatus) error {
	result := r.db.Model(&models.JobApplication{}).
		Where("id = ?", applicationID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) Delete(applicationID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var application models.JobApplication
		err := tx.First(&application, "id = ?", applicationID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		if err := tx.Delete(&application).Error; err != nil {
			return err
		}

		// Счетчик не уходит в минус даже при рассинхроне
		return tx.Model(&models.Job{}).
			Where("id = ?", application.JobID).
			Update("applicant_count", gorm.Expr("GREATEST(applicant_count - 1, 0)")).Error
	})
}
