package repositories

import (
	"errors"

	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrImageNotFound = errors.New("image not found")
	// ErrListingNotPending - условный UPDATE модерации не нашел строку
	// в статусе pending: параллельный переход успел раньше
	ErrListingNotPending = errors.New("listing is not pending")
)

// Порядок выдачи картинок листинга
const imageOrderClause = "display_order ASC, is_thumbnail DESC, uploaded_at ASC"

type JobRepository interface {
	// CreateWithImages атомарно создает вакансию вместе с картинками
	CreateWithImages(job *models.Job, images []models.JobImage) error
	FindByID(id string) (*models.Job, error)
	FindApproved(limit, offset int) ([]models.Job, int64, error)
	FindByOwner(userID string) ([]models.Job, error)
	FindPublicByOwner(userID string) ([]models.Job, error)
	Delete(jobID string) error

	// SetThumbnail атомарно снимает флаг с остальных картинок и ставит новой
	SetThumbnail(jobID, imageID string) error

	// Moderation
	FindForModeration(id string) (models.ModerableListing, error)
	SaveModeration(listing models.ModerableListing) error
}

type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) CreateWithImages(job *models.Job, images []models.JobImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(job).Error; err != nil {
			return err
		}

		for i := range images {
			images[i].JobID = job.ID
			if err := tx.Create(&images[i]).Error; err != nil {
				return err
			}
		}

		job.Images = images
		return nil
	})
}

func (r *JobRepositoryImpl) FindByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.db.Preload("PostedBy").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(imageOrderClause)
		}).
		First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) FindApproved(limit, offset int) ([]models.Job, int64, error) {
	query := r.db.Model(&models.Job{}).
		Where("status = ? AND is_active = ?", models.ListingStatusApproved, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.Job
	err := query.Preload("PostedBy").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(imageOrderClause)
		}).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&jobs).Error

	return jobs, total, err
}

func (r *JobRepositoryImpl) FindByOwner(userID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order(imageOrderClause)
	}).
		Where("posted_by_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) FindPublicByOwner(userID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order(imageOrderClause)
	}).
		Where("posted_by_id = ? AND status = ? AND is_active = ?",
			userID, models.ListingStatusApproved, true).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) Delete(jobID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&models.JobApplication{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", jobID).Delete(&models.JobImage{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", jobID).Delete(&models.Job{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrJobNotFound
		}
		return nil
	})
}

func (r *JobRepositoryImpl) SetThumbnail(jobID, imageID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var image models.JobImage
		err := tx.First(&image, "id = ? AND job_id = ?", imageID, jobID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return err
		}

		// Сначала снимаем флаг со всех, затем ставим выбранной
		if err := tx.Model(&models.JobImage{}).
			Where("job_id = ?", jobID).
			Update("is_thumbnail", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.JobImage{}).
			Where("id = ?", imageID).
			Update("is_thumbnail", true).Error
	})
}

// Moderation

func (r *JobRepositoryImpl) FindForModeration(id string) (models.ModerableListing, error) {
	var job models.Job
	err := r.db.Preload("PostedBy").First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) SaveModeration(listing models.ModerableListing) error {
	job, ok := listing.(*models.Job)
	if !ok {
		return ErrJobNotFound
	}

	// Условие по статусу держит машину состояний на уровне БД:
	// из двух конкурентных переходов коммитится ровно один
	result := r.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, models.ListingStatusPending).
		Updates(map[string]interface{}{
			"status":           job.Status,
			"approved_by_id":   job.ApprovedByID,
			"approval_date":    job.ApprovalDate,
			"rejection_reason": job.RejectionReason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotPending
	}
	return nil
}
