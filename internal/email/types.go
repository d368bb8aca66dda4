package email

// Email представляет одно исходящее сообщение
type Email struct {
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// TemplateData - данные для подстановки в шаблон
type TemplateData map[string]interface{}
