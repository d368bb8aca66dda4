package dto

import (
	"io"
	"time"

	"markethub_backend/internal/models"
)

// FileUpload - файл из multipart-формы, не привязан к gin
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateJobRequest собирается хендлером из multipart-формы.
// ThumbnailIndex = -1 означает "миниатюра не выбрана".
type CreateJobRequest struct {
	JobTitle            string
	CompanyName         string
	Category            string
	JobType             string
	FullAddress         string
	State               string
	City                string
	JobDescription      string
	Requirements        string
	KeyResponsibilities string
	Benefits            string
	ExperienceYears     int
	Education           string
	MinimumSalary       float64
	MaximumSalary       float64
	SalaryPeriod        string
	ApplicationMethod   string
	ExternalLink        string

	Images         []FileUpload
	Captions       []string
	ThumbnailIndex int
}

type CreatePropertyRequest struct {
	PropertyTitle       string
	PropertyType        string
	ListingType         string
	FullAddress         string
	State               string
	City                string
	Bedrooms            int
	Bathrooms           int
	SizeSqm             float64
	ParkingSpots        int
	PropertyDescription string
	FurnishingStatus    string
	Amenities           []string
	Price               float64
	PricePeriod         string
	ContactMethod       string
	ExternalLink        string

	Images         []FileUpload
	Captions       []string
	ThumbnailIndex int
}

type ImageResponse struct {
	ID          string `json:"id"`
	ImageURL    string `json:"image_url"`
	IsThumbnail bool   `json:"is_thumbnail"`
	Order       int    `json:"order"`
	Caption     string `json:"caption,omitempty"`
}

// OwnerSummary - публичные поля владельца листинга
type OwnerSummary struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	Surname      string `json:"surname"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
	Location     string `json:"location,omitempty"`
}

type JobResponse struct {
	ID                  string          `json:"id"`
	JobTitle            string          `json:"job_title"`
	CompanyName         string          `json:"company_name"`
	Category            string          `json:"category"`
	JobType             string          `json:"job_type"`
	FullAddress         string          `json:"full_address"`
	State               string          `json:"state"`
	City                string          `json:"city"`
	JobDescription      string          `json:"job_description"`
	Requirements        string          `json:"requirements"`
	KeyResponsibilities string          `json:"key_responsibilities,omitempty"`
	Benefits            string          `json:"benefits,omitempty"`
	ExperienceYears     int             `json:"experience_years"`
	Education           string          `json:"education"`
	MinimumSalary       float64         `json:"minimum_salary"`
	MaximumSalary       float64         `json:"maximum_salary"`
	SalaryPeriod        string          `json:"salary_period"`
	ApplicationMethod   string          `json:"application_method"`
	ExternalLink        string          `json:"external_link,omitempty"`
	Status              string          `json:"status"`
	IsActive            bool            `json:"is_active"`
	RejectionReason     string          `json:"rejection_reason,omitempty"`
	ApplicantCount      int             `json:"applicant_count"`
	PostedBy            *OwnerSummary   `json:"posted_by,omitempty"`
	Images              []ImageResponse `json:"images"`
	CreatedAt           time.Time       `json:"created_at"`
}

// JobListItem - сокращенный вид для списков: одна миниатюра вместо всех картинок
type JobListItem struct {
	ID             string        `json:"id"`
	JobTitle       string        `json:"job_title"`
	CompanyName    string        `json:"company_name"`
	Category       string        `json:"category"`
	JobType        string        `json:"job_type"`
	City           string        `json:"city"`
	State          string        `json:"state"`
	MinimumSalary  float64       `json:"minimum_salary"`
	MaximumSalary  float64       `json:"maximum_salary"`
	SalaryPeriod   string        `json:"salary_period"`
	Status         string        `json:"status"`
	ApplicantCount int           `json:"applicant_count"`
	Thumbnail      *string       `json:"thumbnail"`
	PostedBy       *OwnerSummary `json:"posted_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

type PropertyResponse struct {
	ID                  string          `json:"id"`
	PropertyTitle       string          `json:"property_title"`
	PropertyType        string          `json:"property_type"`
	ListingType         string          `json:"listing_type"`
	FullAddress         string          `json:"full_address"`
	State               string          `json:"state"`
	City                string          `json:"city"`
	Bedrooms            int             `json:"bedrooms"`
	Bathrooms           int             `json:"bathrooms"`
	SizeSqm             float64         `json:"size_sqm"`
	ParkingSpots        int             `json:"parking_spots"`
	PropertyDescription string          `json:"property_description"`
	FurnishingStatus    string          `json:"furnishing_status"`
	Amenities           []string        `json:"amenities"`
	Price               float64         `json:"price"`
	PricePeriod         string          `json:"price_period"`
	ContactMethod       string          `json:"contact_method"`
	ExternalLink        string          `json:"external_link,omitempty"`
	Status              string          `json:"status"`
	IsActive            bool            `json:"is_active"`
	RejectionReason     string          `json:"rejection_reason,omitempty"`
	InquiryCount        int             `json:"inquiry_count"`
	ViewCount           int             `json:"view_count"`
	PostedBy            *OwnerSummary   `json:"posted_by,omitempty"`
	Images              []ImageResponse `json:"images"`
	CreatedAt           time.Time       `json:"created_at"`
}

type PropertyListItem struct {
	ID            string        `json:"id"`
	PropertyTitle string        `json:"property_title"`
	PropertyType  string        `json:"property_type"`
	ListingType   string        `json:"listing_type"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	Bedrooms      int           `json:"bedrooms"`
	Bathrooms     int           `json:"bathrooms"`
	Price         float64       `json:"price"`
	PricePeriod   string        `json:"price_period"`
	Status        string        `json:"status"`
	InquiryCount  int           `json:"inquiry_count"`
	ViewCount     int           `json:"view_count"`
	Thumbnail     *string       `json:"thumbnail"`
	PostedBy      *OwnerSummary `json:"posted_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// NewOwnerSummary строит публичное представление владельца
func NewOwnerSummary(u *models.User) *OwnerSummary {
	if u == nil {
		return nil
	}
	return &OwnerSummary{
		ID:           u.ID,
		FirstName:    u.FirstName,
		Surname:      u.Surname,
		ProfilePhoto: u.ProfilePhoto,
		Location:     u.Location,
	}
}
