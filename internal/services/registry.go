package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService          AuthService
	PasswordResetService PasswordResetService
	VerificationService  VerificationService
	JobService           JobService
	PropertyService      PropertyService
	ModerationService    ModerationService
	ApplicationService   ApplicationService
	InquiryService       InquiryService
	NotificationService  NotificationService
}
