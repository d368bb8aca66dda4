package models

import "time"

// DefaultCoverPhoto - обложка по умолчанию для нового пользователя
const DefaultCoverPhoto = "https://markethub-media.s3.eu-north-1.amazonaws.com/cover-photo.jpg"

type User struct {
	BaseModel
	Email         string `gorm:"uniqueIndex;not null"` // хранится в lowercase
	PasswordHash  string `gorm:"not null" json:"-"`
	FirstName     string `gorm:"not null"`
	Surname       string `gorm:"not null"`
	LastName      string
	PhoneNumber   string
	Location      string
	ProfilePhoto  string
	CoverPhoto    string `gorm:"default:null"`
	EmailVerified bool   `gorm:"default:false"`
	IsAdmin       bool   `gorm:"default:false"`

	// Relations
	Identity *IdentityVerification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IdentityVerification - документы пользователя, один-к-одному с User.
// verified выставляет только админ; повторная подача НЕ сбрасывает флаг
// (поведение исходной системы сохранено намеренно).
type IdentityVerification struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      string    `gorm:"type:uuid;uniqueIndex;not null"`
	IDDocument  string    `gorm:"not null"` // URL документа в хранилище
	DateOfBirth time.Time `gorm:"not null"`
	Gender      string    `gorm:"type:varchar(10);not null"`
	Address     string    `gorm:"not null"`
	Verified    bool      `gorm:"default:false"`
	SubmittedAt time.Time `gorm:"autoCreateTime"`
}

// PasswordResetOTP - одноразовый 4-значный код, живет 15 минут.
// Валидным считается последний не просроченный код пользователя.
type PasswordResetOTP struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	Code      string    `gorm:"type:varchar(4);not null"`
	CreatedAt time.Time `gorm:"default:now()"`
	ExpiresAt time.Time `gorm:"not null"`
}

// PasswordResetToken - одноразовый токен сброса пароля, живет 15 минут.
// После успешного сброса удаляются ВСЕ токены пользователя.
type PasswordResetToken struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"default:now()"`
	ExpiresAt time.Time `gorm:"not null"`
}

// IsExpired проверяет срок действия OTP
func (o *PasswordResetOTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// IsExpired проверяет срок действия reset token
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
