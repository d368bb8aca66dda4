package models

import (
	"time"

	"gorm.io/datatypes"
)

type Property struct {
	BaseModel
	PropertyTitle string `gorm:"not null"`
	PropertyType  string `gorm:"not null"` // apartment, house, office...
	ListingType   string `gorm:"not null"` // rent, sale
	FullAddress   string `gorm:"not null"`
	State         string `gorm:"not null"`
	City          string `gorm:"not null"`

	Bedrooms            int     `gorm:"not null"`
	Bathrooms           int     `gorm:"not null"`
	SizeSqm             float64 `gorm:"not null"`
	ParkingSpots        int     `gorm:"not null"`
	PropertyDescription string  `gorm:"type:text;not null"`
	FurnishingStatus    string  `gorm:"not null"`
	Amenities           datatypes.JSON `gorm:"type:jsonb"`

	Price       float64 `gorm:"not null"`
	PricePeriod string  `gorm:"not null"` // per_month, per_year, total

	ContactMethod string `gorm:"not null"`
	ExternalLink  string

	Status          ListingStatus `gorm:"type:varchar(20);default:'pending';index"`
	IsActive        bool          `gorm:"default:true"`
	ApprovedByID    *string       `gorm:"type:uuid"`
	ApprovalDate    *time.Time
	RejectionReason string `gorm:"type:text"`

	PostedByID string `gorm:"type:uuid;not null;index"`
	PostedBy   *User  `gorm:"foreignKey:PostedByID;constraint:OnDelete:CASCADE"`

	// Меняются только атомарными инкрементами в репозитории
	InquiryCount int `gorm:"default:0"`
	ViewCount    int `gorm:"default:0"`

	Images    []PropertyImage   `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	Inquiries []PropertyInquiry `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

type PropertyImage struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PropertyID  string    `gorm:"type:uuid;not null;index"`
	ImageURL    string    `gorm:"not null"`
	IsThumbnail bool      `gorm:"default:false"` // не более одной на объект
	Order       int       `gorm:"column:display_order;default:0"`
	Caption     string
	UploadedAt  time.Time `gorm:"autoCreateTime"`
}

// PropertyInquiry - запрос по объекту, уникален по паре (property, inquirer)
type PropertyInquiry struct {
	ID         string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PropertyID string    `gorm:"type:uuid;not null;uniqueIndex:idx_property_inquirer"`
	InquirerID string    `gorm:"type:uuid;not null;uniqueIndex:idx_property_inquirer"`
	Inquirer   *User     `gorm:"foreignKey:InquirerID;constraint:OnDelete:CASCADE"`
	Property   *Property `gorm:"foreignKey:PropertyID"`

	FullName    string `gorm:"not null"`
	Email       string `gorm:"not null"`
	PhoneNumber string `gorm:"not null"`
	Message     string `gorm:"type:text;not null"`
	Budget      *float64
	MoveInDate  *time.Time

	Status    InquiryStatus `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time     `gorm:"default:now()"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime"`
}
