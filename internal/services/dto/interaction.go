package dto

import "time"

// ApplyRequest приходит multipart-формой: CV отдельным файлом
type ApplyRequest struct {
	FullName         string
	Email            string
	PhoneNumber      string
	ExpectedSalary   float64
	PortfolioWebsite string
	CoverLetter      string
	CV               *FileUpload
}

type ApplicationResponse struct {
	ID               string    `json:"id"`
	JobID            string    `json:"job_id"`
	ApplicantID      string    `json:"applicant_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	CVURL            string    `json:"cv_url"`
	ExpectedSalary   float64   `json:"expected_salary,omitempty"`
	PortfolioWebsite string    `json:"portfolio_website,omitempty"`
	CoverLetter      string    `json:"cover_letter"`
	Status           string    `json:"status"`
	AppliedAt        time.Time `json:"applied_at"`

	// Заполняется для списка "мои отклики"
	JobTitle     string  `json:"job_title,omitempty"`
	CompanyName  string  `json:"company_name,omitempty"`
	JobThumbnail *string `json:"job_thumbnail,omitempty"`
}

type InquiryCreateRequest struct {
	FullName    string     `json:"full_name" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	PhoneNumber string     `json:"phone_number" validate:"required"`
	Message     string     `json:"message" validate:"required"`
	Budget      *float64   `json:"budget"`
	MoveInDate  *time.Time `json:"move_in_date"`
}

type InquiryResponse struct {
	ID          string     `json:"id"`
	PropertyID  string     `json:"property_id"`
	InquirerID  string     `json:"inquirer_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	Message     string     `json:"message"`
	Budget      *float64   `json:"budget,omitempty"`
	MoveInDate  *time.Time `json:"move_in_date,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`

	// Заполняется для списка "мои запросы"
	PropertyTitle     string  `json:"property_title,omitempty"`
	PropertyThumbnail *string `json:"property_thumbnail,omitempty"`
}

type UpdateInteractionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
