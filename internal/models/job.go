package models

import "time"

type Job struct {
	BaseModel
	JobTitle    string `gorm:"not null"`
	CompanyName string `gorm:"not null"`
	Category    string `gorm:"not null"`
	JobType     string `gorm:"not null"` // full_time, part_time, contract...
	FullAddress string `gorm:"not null"`
	State       string `gorm:"not null"`
	City        string `gorm:"not null"`

	JobDescription      string `gorm:"type:text;not null"`
	Requirements        string `gorm:"type:text;not null"`
	KeyResponsibilities string `gorm:"type:text"`
	Benefits            string `gorm:"type:text"`
	ExperienceYears     int    `gorm:"not null"`
	Education           string `gorm:"not null"`

	MinimumSalary float64 `gorm:"not null"`
	MaximumSalary float64 `gorm:"not null"`
	SalaryPeriod  string  `gorm:"not null"` // per_month, per_year...

	ApplicationMethod string `gorm:"not null"`
	ExternalLink      string

	Status          ListingStatus `gorm:"type:varchar(20);default:'pending';index"`
	IsActive        bool          `gorm:"default:true"`
	ApprovedByID    *string       `gorm:"type:uuid"`
	ApprovalDate    *time.Time
	RejectionReason string `gorm:"type:text"`

	PostedByID string `gorm:"type:uuid;not null;index"`
	PostedBy   *User  `gorm:"foreignKey:PostedByID;constraint:OnDelete:CASCADE"`

	// Меняется только атомарными инкрементами в репозитории
	ApplicantCount int `gorm:"default:0"`

	Images       []JobImage       `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Applications []JobApplication `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

type JobImage struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	JobID       string    `gorm:"type:uuid;not null;index"`
	ImageURL    string    `gorm:"not null"`
	IsThumbnail bool      `gorm:"default:false"` // не более одной на вакансию
	Order       int       `gorm:"column:display_order;default:0"`
	Caption     string
	UploadedAt  time.Time `gorm:"autoCreateTime"`
}

// JobApplication - отклик на вакансию, уникален по паре (job, applicant)
type JobApplication struct {
	ID          string `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	JobID       string `gorm:"type:uuid;not null;uniqueIndex:idx_job_applicant"`
	ApplicantID string `gorm:"type:uuid;not null;uniqueIndex:idx_job_applicant"`
	Applicant   *User  `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE"`
	Job         *Job   `gorm:"foreignKey:JobID"`

	FullName         string `gorm:"not null"`
	Email            string `gorm:"not null"`
	PhoneNumber      string `gorm:"not null"`
	CVURL            string `gorm:"not null"`
	ExpectedSalary   float64
	PortfolioWebsite string
	CoverLetter      string `gorm:"type:text;not null"`

	Status    ApplicationStatus `gorm:"type:varchar(20);default:'pending'"`
	AppliedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}
