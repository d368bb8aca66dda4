package dto

import "time"

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required"`
	Surname     string `json:"surname" validate:"required"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
}

// SignupResponse - при падении письма верификации регистрация все равно
// успешна, но EmailSent=false и клиенту отдается предупреждение
type SignupResponse struct {
	User      *UserResponse `json:"user"`
	EmailSent bool          `json:"email_sent"`
	Warning   string        `json:"warning,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

type UserResponse struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	Surname       string            `json:"surname"`
	LastName      string            `json:"last_name,omitempty"`
	PhoneNumber   string            `json:"phone_number,omitempty"`
	Location      string            `json:"location,omitempty"`
	ProfilePhoto  string            `json:"profile_photo,omitempty"`
	CoverPhoto    string            `json:"cover_photo,omitempty"`
	EmailVerified bool              `json:"email_verified"`
	IsAdmin       bool              `json:"is_admin"`
	Identity      *IdentityResponse `json:"identity,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type IdentityResponse struct {
	Submitted   bool       `json:"submitted"`
	Verified    bool       `json:"verified"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	Surname     string `json:"surname" validate:"required"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
}

type UpdateEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// VerifyIdentityRequest приходит multipart-формой, документ отдельным файлом
type VerifyIdentityRequest struct {
	DateOfBirth time.Time
	Gender      string
	Address     string
	Document    *FileUpload
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4"`
}

type VerifyOTPResponse struct {
	ResetToken string `json:"reset_token"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
