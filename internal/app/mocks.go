package app

import (
	"markethub_backend/internal/email"
	"markethub_backend/internal/logger"
)

// MockEmailProvider используется, когда SMTP не сконфигурирован:
// письма не уходят, а только логируются.
type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(e *email.Email) error {
	logger.Info("[mock email] send", "to", e.To, "subject", e.Subject)
	return nil
}

func (m *MockEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, e *email.Email) error {
	logger.Info("[mock email] send with template", "template", templateName, "to", e.To, "subject", e.Subject)
	return nil
}

func (m *MockEmailProvider) Validate() error { return nil }

func (m *MockEmailProvider) Close() error { return nil }
