package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные и неизвестные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	CodeDuplicateSubmission ErrorCode = "DUPLICATE_SUBMISSION"
	CodeInvalidState        ErrorCode = "INVALID_STATE"

	// Аутентификация и Авторизация
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeExpiredCredential  ErrorCode = "EXPIRED_CREDENTIAL"

	// Гейт верификации: клиент различает причину отказа по коду
	CodeEmailNotVerified     ErrorCode = "EMAIL_NOT_VERIFIED"
	CodeIdentityNotSubmitted ErrorCode = "IDENTITY_NOT_SUBMITTED"
	CodeIdentityNotApproved  ErrorCode = "IDENTITY_NOT_APPROVED"
)
