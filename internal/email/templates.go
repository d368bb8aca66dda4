package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Имена встроенных шаблонов
const (
	TemplateVerification            = "verification"
	TemplatePasswordResetOTP        = "password_reset_otp"
	TemplateListingSubmitted        = "listing_submitted"
	TemplateListingApproved         = "listing_approved"
	TemplateListingRejected         = "listing_rejected"
	TemplateInteractionConfirmation = "interaction_confirmation"
	TemplateInteractionNotification = "interaction_notification"
	TemplateInteractionStatus       = "interaction_status"
)

// TemplateManager реализует TemplateRenderer для управления шаблонами email
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер с набором встроенных шаблонов
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	for name, body := range builtinTemplates {
		// встроенные шаблоны статичные, ошибка парсинга означает опечатку в коде
		if err := tm.AddTemplate(name, body); err != nil {
			panic(fmt.Sprintf("email: bad builtin template %s: %v", name, err))
		}
	}

	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return sb.String(), nil
}

// AddTemplate добавляет шаблон в рендерер
func (tm *TemplateManager) AddTemplate(name string, body string) error {
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

var builtinTemplates = map[string]string{
	TemplateVerification: `<html><body>
<h2>Welcome to MarketHub, {{.Name}}!</h2>
<p>Please confirm your email address by clicking the link below:</p>
<p><a href="{{.VerificationURL}}">Verify my email</a></p>
<p>The link is valid for 24 hours. If you did not sign up, ignore this message.</p>
</body></html>`,

	TemplatePasswordResetOTP: `<html><body>
<h2>Password reset requested</h2>
<p>Your one-time code:</p>
<p style="font-size:24px;letter-spacing:4px;"><b>{{.Code}}</b></p>
<p>The code expires in 15 minutes. If you did not request a reset, ignore this message.</p>
</body></html>`,

	TemplateListingSubmitted: `<html><body>
<h2>Your {{.Kind}} listing was submitted</h2>
<p>"{{.Title}}" is now awaiting review. We will notify you once a moderator has looked at it.</p>
</body></html>`,

	TemplateListingApproved: `<html><body>
<h2>Your {{.Kind}} listing is live</h2>
<p>"{{.Title}}" was approved and is now visible to everyone on MarketHub.</p>
</body></html>`,

	TemplateListingRejected: `<html><body>
<h2>Your {{.Kind}} listing was rejected</h2>
<p>"{{.Title}}" did not pass review.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p>You can update the listing and submit it again.</p>
</body></html>`,

	TemplateInteractionConfirmation: `<html><body>
<h2>{{.Action}} sent</h2>
<p>Your {{.Action}} for "{{.Title}}" has been delivered to the owner.</p>
</body></html>`,

	TemplateInteractionNotification: `<html><body>
<h2>New {{.Action}} on your listing</h2>
<p>{{.ActorName}} responded to "{{.Title}}".</p>
<p>Log in to MarketHub to review the details.</p>
</body></html>`,

	TemplateInteractionStatus: `<html><body>
<h2>Status update</h2>
<p>Your {{.Action}} for "{{.Title}}" is now: <b>{{.Status}}</b>.</p>
</body></html>`,
}
