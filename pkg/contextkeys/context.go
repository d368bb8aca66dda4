package contextkeys

// Ключи gin.Context, под которыми middleware кладет данные запроса.
// Вынесены в отдельный пакет, чтобы handlers и middleware не зависели
// друг от друга.
const (
	// UserIDKey - id аутентифицированного пользователя (AuthMiddleware)
	UserIDKey = "userID"

	// IsAdminKey - признак администратора из JWT (AuthMiddleware)
	IsAdminKey = "isAdmin"

	// RequestIDKey - сквозной id запроса (RequestIDMiddleware)
	RequestIDKey = "requestID"
)
