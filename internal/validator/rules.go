package validator

// RequiredField описывает обязательное поле формы листинга:
// имя для сообщения об ошибке и значение из запроса.
type RequiredField struct {
	Name  string
	Value string
}

// FirstMissing возвращает имя первого незаполненного обязательного поля.
// Отчет именно о первом поле (а не о всех сразу) - поведение исходного
// API, на которое завязаны клиенты.
func FirstMissing(fields []RequiredField) (string, bool) {
	for _, f := range fields {
		if f.Value == "" {
			return f.Name, true
		}
	}
	return "", false
}
