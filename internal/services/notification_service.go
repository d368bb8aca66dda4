package services

import (
	"fmt"

	"markethub_backend/internal/config"
	"markethub_backend/internal/email"
	"markethub_backend/internal/logger"
	"markethub_backend/internal/models"
)

// NotificationService - исходящие письма поверх email.Provider.
// Все методы, кроме SendVerificationEmail, вызываются после коммита
// транзакции и строго best-effort: ошибка логируется и глотается.
type NotificationService interface {
	// SendVerificationEmail возвращает ошибку: на signup клиент должен
	// узнать о degraded success
	SendVerificationEmail(user *models.User, token string) error
	SendPasswordResetOTP(toEmail, code string)
	SendListingSubmitted(owner *models.User, listing models.ModerableListing)
	SendListingApproved(owner *models.User, listing models.ModerableListing)
	SendListingRejected(owner *models.User, listing models.ModerableListing, reason string)
	SendInteractionConfirmation(actorEmail, action, listingTitle string)
	SendInteractionNotification(ownerEmail, action, listingTitle, actorName string)
	SendInteractionStatusChanged(actorEmail, action, listingTitle, status string)
}

type NotificationServiceImpl struct {
	provider email.Provider
}

func NewNotificationService(provider email.Provider) NotificationService {
	return &NotificationServiceImpl{provider: provider}
}

func (s *NotificationServiceImpl) SendVerificationEmail(user *models.User, token string) error {
	baseURL := config.GetConfig().Email.BaseURL
	verificationURL := fmt.Sprintf("%s/verify-email/%s/%s", baseURL, user.ID, token)

	return s.provider.SendWithTemplate(email.TemplateVerification, email.TemplateData{
		"Name":            user.FirstName,
		"VerificationURL": verificationURL,
	}, &email.Email{
		To:      []string{user.Email},
		Subject: "Verify your MarketHub email",
	})
}

func (s *NotificationServiceImpl) SendPasswordResetOTP(toEmail, code string) {
	err := s.provider.SendWithTemplate(email.TemplatePasswordResetOTP, email.TemplateData{
		"Code": code,
	}, &email.Email{
		To:      []string{toEmail},
		Subject: "Your MarketHub password reset code",
	})
	s.logSendError("password_reset_otp", toEmail, err)
}

func (s *NotificationServiceImpl) SendListingSubmitted(owner *models.User, listing models.ModerableListing) {
	err := s.provider.SendWithTemplate(email.TemplateListingSubmitted, email.TemplateData{
		"Kind":  string(listing.Kind()),
		"Title": listing.Title(),
	}, &email.Email{
		To:      []string{owner.Email},
		Subject: "Your listing was submitted for review",
	})
	s.logSendError("listing_submitted", owner.Email, err)
}

func (s *NotificationServiceImpl) SendListingApproved(owner *models.User, listing models.ModerableListing) {
	err := s.provider.SendWithTemplate(email.TemplateListingApproved, email.TemplateData{
		"Kind":  string(listing.Kind()),
		"Title": listing.Title(),
	}, &email.Email{
		To:      []string{owner.Email},
		Subject: "Your listing is live",
	})
	s.logSendError("listing_approved", owner.Email, err)
}

func (s *NotificationServiceImpl) SendListingRejected(owner *models.User, listing models.ModerableListing, reason string) {
	err := s.provider.SendWithTemplate(email.TemplateListingRejected, email.TemplateData{
		"Kind":   string(listing.Kind()),
		"Title":  listing.Title(),
		"Reason": reason,
	}, &email.Email{
		To:      []string{owner.Email},
		Subject: "Your listing was rejected",
	})
	s.logSendError("listing_rejected", owner.Email, err)
}

func (s *NotificationServiceImpl) SendInteractionConfirmation(actorEmail, action, listingTitle string) {
	err := s.provider.SendWithTemplate(email.TemplateInteractionConfirmation, email.TemplateData{
		"Action": action,
		"Title":  listingTitle,
	}, &email.Email{
		To:      []string{actorEmail},
		Subject: fmt.Sprintf("Your %s was sent", action),
	})
	s.logSendError("interaction_confirmation", actorEmail, err)
}

func (s *NotificationServiceImpl) SendInteractionNotification(ownerEmail, action, listingTitle, actorName string) {
	err := s.provider.SendWithTemplate(email.TemplateInteractionNotification, email.TemplateData{
		"Action":    action,
		"Title":     listingTitle,
		"ActorName": actorName,
	}, &email.Email{
		To:      []string{ownerEmail},
		Subject: fmt.Sprintf("New %s on your listing", action),
	})
	s.logSendError("interaction_notification", ownerEmail, err)
}

func (s *NotificationServiceImpl) SendInteractionStatusChanged(actorEmail, action, listingTitle, status string) {
	err := s.provider.SendWithTemplate(email.TemplateInteractionStatus, email.TemplateData{
		"Action": action,
		"Title":  listingTitle,
		"Status": status,
	}, &email.Email{
		To:      []string{actorEmail},
		Subject: "Status update on your " + action,
	})
	s.logSendError("interaction_status", actorEmail, err)
}

func (s *NotificationServiceImpl) logSendError(kind, recipient string, err error) {
	if err != nil {
		logger.Warn("notification send failed",
			"kind", kind,
			"recipient", recipient,
			"error", err)
	}
}
