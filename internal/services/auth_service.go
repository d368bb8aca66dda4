package services

import (
	"context"
	"strings"

	"markethub_backend/internal/auth"
	"markethub_backend/internal/config"
	"markethub_backend/internal/logger"
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/services/dto"
	"markethub_backend/internal/storage"
	"markethub_backend/pkg/apperrors"
)

type AuthService interface {
	Signup(req *dto.SignupRequest) (*dto.SignupResponse, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyEmail(userID, token string) error
	ResendVerification(userID string) error
	GetProfile(userID string) (*dto.UserResponse, error)
	UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateEmail(userID string, req *dto.UpdateEmailRequest) (*dto.SignupResponse, error)
	UpdatePassword(userID string, req *dto.UpdatePasswordRequest) error
	UploadProfilePhoto(ctx context.Context, userID string, file *dto.FileUpload) (string, error)
	UploadCoverPhoto(ctx context.Context, userID string, file *dto.FileUpload) (string, error)
	VerifyIdentity(ctx context.Context, userID string, req *dto.VerifyIdentityRequest) error
	ApproveIdentity(targetUserID string) error
	ListPendingIdentities(limit, offset int) ([]models.IdentityVerification, error)
}

type AuthServiceImpl struct {
	userRepo     repositories.UserRepository
	store        storage.Storage
	notification NotificationService
}

func NewAuthService(
	userRepo repositories.UserRepository,
	store storage.Storage,
	notification NotificationService,
) AuthService {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		store:        store,
		notification: notification,
	}
}

// Signup - регистрация нового пользователя.
// Падение письма верификации регистрацию НЕ отменяет: пользователь
// создан, клиент получает предупреждение и может запросить resend.
func (s *AuthServiceImpl) Signup(req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		Surname:      req.Surname,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Location:     req.Location,
		CoverPhoto:   models.DefaultCoverPhoto,
	}

	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.SignupResponse{
		User:      buildUserResponse(user),
		EmailSent: true,
	}

	token, err := auth.GenerateEmailVerificationToken(user.ID)
	if err == nil {
		err = s.notification.SendVerificationEmail(user, token)
	}
	if err != nil {
		logger.Warn("verification email failed at signup", "user_id", user.ID, "error", err)
		resp.EmailSent = false
		resp.Warning = "account created, but the verification email could not be sent"
	}

	return resp, nil
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserResponse(user),
	}, nil
}

// VerifyEmail подтверждает адрес по ссылке uid+token
func (s *AuthServiceImpl) VerifyEmail(userID, token string) error {
	claims, err := auth.ParseEmailVerificationToken(token)
	if err != nil || claims.UserID != userID {
		return apperrors.ErrInvalidVerificationToken
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidVerificationToken
		}
		return apperrors.InternalError(err)
	}

	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	if err := s.userRepo.MarkEmailVerified(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ResendVerification повторно шлет письмо верификации.
// Здесь сбой отправки - это уже ошибка запроса, не degraded success.
func (s *AuthServiceImpl) ResendVerification(userID string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "user not found")
		}
		return apperrors.InternalError(err)
	}

	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	token, err := auth.GenerateEmailVerificationToken(user.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.notification.SendVerificationEmail(user, token); err != nil {
		return apperrors.UpstreamError(err, "email", "failed to send verification email")
	}
	return nil
}

func (s *AuthServiceImpl) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return buildUserResponse(user), nil
}

func (s *AuthServiceImpl) UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		return nil, apperrors.InternalError(err)
	}

	user.FirstName = req.FirstName
	user.Surname = req.Surname
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	user.Location = req.Location

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildUserResponse(user), nil
}

// UpdateEmail меняет адрес: подтверждение сбрасывается, новое письмо
// верификации уходит best-effort (как на signup)
func (s *AuthServiceImpl) UpdateEmail(userID string, req *dto.UpdateEmailRequest) (*dto.SignupResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrWrongCurrentPassword
	}

	taken, err := s.userRepo.ExistsByEmail(req.NewEmail)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	if err := s.userRepo.UpdateEmail(userID, req.NewEmail); err != nil {
		return nil, apperrors.InternalError(err)
	}

	user.Email = strings.ToLower(req.NewEmail)
	user.EmailVerified = false

	resp := &dto.SignupResponse{
		User:      buildUserResponse(user),
		EmailSent: true,
	}

	token, err := auth.GenerateEmailVerificationToken(user.ID)
	if err == nil {
		err = s.notification.SendVerificationEmail(user, token)
	}
	if err != nil {
		logger.Warn("verification email failed after email change", "user_id", user.ID, "error", err)
		resp.EmailSent = false
		resp.Warning = "email updated, but the verification email could not be sent"
	}

	return resp, nil
}

func (s *AuthServiceImpl) UpdatePassword(userID string, req *dto.UpdatePasswordRequest) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "user not found")
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrWrongCurrentPassword
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) UploadProfilePhoto(ctx context.Context, userID string, file *dto.FileUpload) (string, error) {
	return s.uploadUserPhoto(ctx, userID, file, storage.FolderProfilePhotos, "profile_photo")
}

func (s *AuthServiceImpl) UploadCoverPhoto(ctx context.Context, userID string, file *dto.FileUpload) (string, error) {
	return s.uploadUserPhoto(ctx, userID, file, storage.FolderCoverPhotos, "cover_photo")
}

func (s *AuthServiceImpl) uploadUserPhoto(ctx context.Context, userID string, file *dto.FileUpload, folder, column string) (string, error) {
	if err := ValidateImageUpload(file); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.NewNotFoundError("user", "user not found")
		}
		return "", apperrors.InternalError(err)
	}

	url, _, err := storage.UploadFile(ctx, s.store, folder, file.Filename, file.Reader, file.ContentType)
	if err != nil {
		return "", apperrors.UpstreamError(err, "storage", "failed to upload photo")
	}

	// Старый файл чистим best-effort: его потеря не должна ломать запрос
	old := user.ProfilePhoto
	if column == "cover_photo" {
		old = user.CoverPhoto
	}
	if key, ok := storageKeyFromURL(old); ok {
		if err := s.store.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete old photo", "user_id", userID, "key", key, "error", err)
		}
	}

	if err := s.userRepo.UpdatePhoto(userID, column, url); err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

// VerifyIdentity - подача (или повторная подача) документов
func (s *AuthServiceImpl) VerifyIdentity(ctx context.Context, userID string, req *dto.VerifyIdentityRequest) error {
	if req.Document == nil {
		return apperrors.MissingFieldError("id_document")
	}
	if req.Gender == "" {
		return apperrors.MissingFieldError("gender")
	}
	if req.Address == "" {
		return apperrors.MissingFieldError("address")
	}
	if req.DateOfBirth.IsZero() {
		return apperrors.MissingFieldError("date_of_birth")
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user", "user not found")
		}
		return apperrors.InternalError(err)
	}

	url, _, err := storage.UploadFile(ctx, s.store, storage.FolderIDDocuments,
		req.Document.Filename, req.Document.Reader, req.Document.ContentType)
	if err != nil {
		return apperrors.UpstreamError(err, "storage", "failed to upload id document")
	}

	identity := &models.IdentityVerification{
		UserID:      userID,
		IDDocument:  url,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
	}

	if err := s.userRepo.SaveIdentity(identity); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ApproveIdentity - одобрение анкеты админом (проверка роли в middleware)
func (s *AuthServiceImpl) ApproveIdentity(targetUserID string) error {
	if err := s.userRepo.SetIdentityVerified(targetUserID, true); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("identity", "identity submission not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) ListPendingIdentities(limit, offset int) ([]models.IdentityVerification, error) {
	identities, err := s.userRepo.FindPendingIdentities(limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return identities, nil
}

// ValidateImageUpload проверяет mime-тип и размер картинки против лимитов
func ValidateImageUpload(file *dto.FileUpload) error {
	if file == nil {
		return apperrors.MissingFieldError("image")
	}

	cfg := config.GetConfig()
	if file.Size > cfg.Upload.MaxImageSize {
		return apperrors.NewBadRequestError("image exceeds the maximum allowed size")
	}

	for _, allowed := range cfg.Upload.AllowedTypes {
		if file.ContentType == allowed {
			return nil
		}
	}
	return apperrors.NewBadRequestError("unsupported image type: " + file.ContentType)
}

// storageKeyFromURL достает ключ объекта из публичного URL
func storageKeyFromURL(url string) (string, bool) {
	if url == "" || url == models.DefaultCoverPhoto {
		return "", false
	}
	const marker = ".amazonaws.com/"
	if idx := strings.Index(url, marker); idx >= 0 {
		return url[idx+len(marker):], true
	}
	if strings.HasPrefix(url, "/files/") {
		return strings.TrimPrefix(url, "/files/"), true
	}
	return "", false
}

func buildUserResponse(u *models.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		Surname:       u.Surname,
		LastName:      u.LastName,
		PhoneNumber:   u.PhoneNumber,
		Location:      u.Location,
		ProfilePhoto:  u.ProfilePhoto,
		CoverPhoto:    u.CoverPhoto,
		EmailVerified: u.EmailVerified,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt,
	}

	if u.Identity != nil {
		submittedAt := u.Identity.SubmittedAt
		resp.Identity = &dto.IdentityResponse{
			Submitted:   true,
			Verified:    u.Identity.Verified,
			SubmittedAt: &submittedAt,
		}
	}

	return resp
}
