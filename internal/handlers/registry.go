package handlers

// AppHandlers содержит все обработчики приложения.
type AppHandlers struct {
	Auth     *AuthHandler
	Job      *JobHandler
	Property *PropertyHandler
}
