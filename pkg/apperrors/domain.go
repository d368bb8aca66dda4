package apperrors

import (
	"net/http"
)

/*
Предопределенные доменные ошибки. Каждая причина отказа должна быть
различима для клиента, поэтому здесь отдельная переменная на причину,
а не общий 403/400.
*/

// --- Verification Gate ---

// ErrEmailNotVerified - email пользователя не подтвержден.
var ErrEmailNotVerified = New(
	CodeEmailNotVerified,
	"verification",
	"Please verify your email before performing this action.",
	http.StatusForbidden,
)

// ErrIdentityNotSubmitted - пользователь не загружал документы.
var ErrIdentityNotSubmitted = New(
	CodeIdentityNotSubmitted,
	"verification",
	"Please submit your identity verification before performing this action.",
	http.StatusForbidden,
)

// ErrIdentityNotApproved - документы загружены, но еще не одобрены админом.
var ErrIdentityNotApproved = New(
	CodeIdentityNotApproved,
	"verification",
	"Your identity verification has not been approved yet.",
	http.StatusForbidden,
)

// --- Auth ---

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = New(
	CodeDuplicateSubmission,
	"auth",
	"An account with that email already exists.",
	http.StatusConflict,
)

// ErrInvalidCredentials - неверный email или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidVerificationToken - ссылка верификации битая или просрочена.
var ErrInvalidVerificationToken = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid or expired verification token",
	http.StatusBadRequest,
)

// ErrEmailAlreadyVerified - повторная верификация не нужна.
var ErrEmailAlreadyVerified = New(
	CodeInvalidState,
	"auth",
	"Email is already verified",
	http.StatusBadRequest,
)

// ErrWrongCurrentPassword - текущий пароль не совпал при смене.
var ErrWrongCurrentPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Current password is incorrect",
	http.StatusBadRequest,
)

// --- Password reset (OTP / token) ---

// ErrInvalidOTP - нет действующего OTP с таким кодом.
var ErrInvalidOTP = New(
	CodeInvalidCredentials,
	"password_reset",
	"Invalid OTP",
	http.StatusBadRequest,
)

// ErrInvalidResetToken - reset token не найден.
var ErrInvalidResetToken = New(
	CodeInvalidCredentials,
	"password_reset",
	"Invalid reset token",
	http.StatusBadRequest,
)

// ErrExpiredResetToken - reset token просрочен (и удален при проверке).
var ErrExpiredResetToken = New(
	CodeExpiredCredential,
	"password_reset",
	"Reset token expired",
	http.StatusBadRequest,
)

// --- Moderation ---

// ErrAdminOnly - действие доступно только администратору.
var ErrAdminOnly = New(
	CodeForbidden,
	"moderation",
	"Only administrators can perform this action.",
	http.StatusForbidden,
)

// ErrAlreadyApproved - листинг уже одобрен, повторный approve запрещен.
var ErrAlreadyApproved = New(
	CodeInvalidState,
	"moderation",
	"Listing is already approved.",
	http.StatusBadRequest,
)

// ErrAlreadyRejected - листинг уже отклонен, повторный reject запрещен.
var ErrAlreadyRejected = New(
	CodeInvalidState,
	"moderation",
	"Listing is already rejected.",
	http.StatusBadRequest,
)

// ErrNotPending - переход возможен только из статуса pending.
var ErrNotPending = New(
	CodeInvalidState,
	"moderation",
	"Listing has already been moderated.",
	http.StatusBadRequest,
)

// --- Interactions ---

// ErrDuplicateApplication - пользователь уже откликался на эту вакансию.
var ErrDuplicateApplication = New(
	CodeDuplicateSubmission,
	"applications",
	"You have already applied for this job.",
	http.StatusBadRequest,
)

// ErrDuplicateInquiry - пользователь уже отправлял запрос по этому объекту.
var ErrDuplicateInquiry = New(
	CodeDuplicateSubmission,
	"inquiries",
	"You have already made an inquiry for this property.",
	http.StatusBadRequest,
)

// ErrListingNotOpen - листинг не существует или еще не одобрен.
var ErrListingNotOpen = New(
	CodeNotFound,
	"listings",
	"Listing not found or not open for submissions.",
	http.StatusNotFound,
)

// ErrInvalidInteractionStatus - недопустимое значение суб-статуса.
var ErrInvalidInteractionStatus = New(
	CodeValidationFailed,
	"interactions",
	"Invalid status.",
	http.StatusBadRequest,
)

// ErrNotOwner - операция доступна только владельцу ресурса.
var ErrNotOwner = New(
	CodeForbidden,
	"ownership",
	"You are not allowed to perform this action on this resource.",
	http.StatusForbidden,
)
