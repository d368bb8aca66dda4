package database

import (
	"markethub_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate применяет схему всех моделей.
// Расширение uuid-ossp нужно для default uuid_generate_v4().
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.IdentityVerification{},
		&models.PasswordResetOTP{},
		&models.PasswordResetToken{},
		&models.Job{},
		&models.JobImage{},
		&models.JobApplication{},
		&models.Property{},
		&models.PropertyImage{},
		&models.PropertyInquiry{},
	)
}
