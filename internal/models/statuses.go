package models

type ListingStatus string
type ListingKind string
type ApplicationStatus string
type InquiryStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"

	ListingKindJob      ListingKind = "job"
	ListingKindProperty ListingKind = "property"

	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"

	InquiryStatusPending       InquiryStatus = "pending"
	InquiryStatusContacted     InquiryStatus = "contacted"
	InquiryStatusInterested    InquiryStatus = "interested"
	InquiryStatusNotInterested InquiryStatus = "not_interested"
	InquiryStatusDealClosed    InquiryStatus = "deal_closed"
)

var applicationStatuses = map[ApplicationStatus]bool{
	ApplicationStatusPending:     true,
	ApplicationStatusReviewed:    true,
	ApplicationStatusShortlisted: true,
	ApplicationStatusRejected:    true,
	ApplicationStatusAccepted:    true,
}

var inquiryStatuses = map[InquiryStatus]bool{
	InquiryStatusPending:       true,
	InquiryStatusContacted:     true,
	InquiryStatusInterested:    true,
	InquiryStatusNotInterested: true,
	InquiryStatusDealClosed:    true,
}

// IsValidApplicationStatus проверяет значение суб-статуса отклика
func IsValidApplicationStatus(s ApplicationStatus) bool {
	return applicationStatuses[s]
}

// IsValidInquiryStatus проверяет значение суб-статуса запроса
func IsValidInquiryStatus(s InquiryStatus) bool {
	return inquiryStatuses[s]
}
