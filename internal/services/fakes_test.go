package services

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"markethub_backend/internal/config"
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	// Сервисы читают конфиг через config.GetConfig: подсовываем тестовый,
	// чтобы не зависеть от config.yaml на диске
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.Email.BaseURL = "http://localhost:3000"
	cfg.Upload.MaxImageSize = 5 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png"}
	config.AppConfig = cfg

	os.Exit(m.Run())
}

// ---------- users ----------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = email
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(userID, passwordHash string) error {
	u, err := r.FindByID(userID)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateEmail(userID, email string) error {
	u, err := r.FindByID(userID)
	if err != nil {
		return err
	}
	u.Email = strings.ToLower(email)
	u.EmailVerified = false
	return nil
}

func (r *fakeUserRepo) UpdatePhoto(userID, column, url string) error {
	u, err := r.FindByID(userID)
	if err != nil {
		return err
	}
	if column == "cover_photo" {
		u.CoverPhoto = url
	} else {
		u.ProfilePhoto = url
	}
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(userID string) error {
	u, err := r.FindByID(userID)
	if err != nil {
		return err
	}
	u.EmailVerified = true
	return nil
}

func (r *fakeUserRepo) Delete(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) FindIdentity(userID string) (*models.IdentityVerification, error) {
	u, err := r.FindByID(userID)
	if err != nil || u.Identity == nil {
		return nil, repositories.ErrUserNotFound
	}
	return u.Identity, nil
}

func (r *fakeUserRepo) SaveIdentity(identity *models.IdentityVerification) error {
	u, err := r.FindByID(identity.UserID)
	if err != nil {
		return err
	}
	if u.Identity != nil {
		identity.Verified = u.Identity.Verified
	}
	identity.SubmittedAt = time.Now()
	u.Identity = identity
	return nil
}

func (r *fakeUserRepo) SetIdentityVerified(userID string, verified bool) error {
	u, err := r.FindByID(userID)
	if err != nil || u.Identity == nil {
		return repositories.ErrUserNotFound
	}
	u.Identity.Verified = verified
	return nil
}

func (r *fakeUserRepo) FindPendingIdentities(limit, offset int) ([]models.IdentityVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.IdentityVerification
	for _, u := range r.users {
		if u.Identity != nil && !u.Identity.Verified {
			result = append(result, *u.Identity)
		}
	}
	return result, nil
}

// verifiedUser - пользователь, прошедший весь гейт
func verifiedUser(repo *fakeUserRepo) *models.User {
	return repo.add(&models.User{
		Email:         "verified@test.com",
		PasswordHash:  "hash",
		FirstName:     "Айгерим",
		Surname:       "Тестова",
		EmailVerified: true,
		Identity:      &models.IdentityVerification{Verified: true, SubmittedAt: time.Now()},
	})
}

// ---------- password reset ----------

type fakeResetRepo struct {
	mu          sync.Mutex
	otps        []models.PasswordResetOTP
	tokens      []models.PasswordResetToken
	sweepCalled bool
}

func (r *fakeResetRepo) CreateOTP(otp *models.PasswordResetOTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps = append(r.otps, *otp)
	return nil
}

func (r *fakeResetRepo) ExchangeOTPForToken(userID, code string, token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, otp := range r.otps {
		if otp.UserID == userID && otp.Code == code && otp.ExpiresAt.After(time.Now()) {
			found = true
			break
		}
	}
	if !found {
		return repositories.ErrOTPNotFound
	}
	kept := r.otps[:0]
	for _, otp := range r.otps {
		if otp.UserID != userID {
			kept = append(kept, otp)
		}
	}
	r.otps = kept
	r.tokens = append(r.tokens, *token)
	return nil
}

func (r *fakeResetRepo) ConsumeToken(token string, now time.Time, apply func(tx *gorm.DB, userID string) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, t := range r.tokens {
		if t.Token == token {
			idx = i
			break
		}
	}
	if idx < 0 {
		return repositories.ErrResetTokenNotFound
	}
	rt := r.tokens[idx]
	if rt.IsExpired(now) {
		r.tokens = append(r.tokens[:idx], r.tokens[idx+1:]...)
		return repositories.ErrResetTokenExpired
	}
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if t.UserID != rt.UserID {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

func (r *fakeResetRepo) DeleteExpiredTokens(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepCalled = true
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if !t.IsExpired(now) {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

func (r *fakeResetRepo) DeleteExpiredOTPs(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.otps[:0]
	for _, o := range r.otps {
		if !o.IsExpired(now) {
			kept = append(kept, o)
		}
	}
	r.otps = kept
	return nil
}

// ---------- notifications ----------

type fakeNotification struct {
	mu              sync.Mutex
	verificationErr error
	sent            []string
	lastOTPCode     string
}

func (n *fakeNotification) record(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, kind)
}

func (n *fakeNotification) sentKinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func (n *fakeNotification) SendVerificationEmail(user *models.User, token string) error {
	n.record("verification")
	return n.verificationErr
}

func (n *fakeNotification) SendPasswordResetOTP(toEmail, code string) {
	n.mu.Lock()
	n.lastOTPCode = code
	n.mu.Unlock()
	n.record("password_reset_otp")
}

func (n *fakeNotification) SendListingSubmitted(owner *models.User, listing models.ModerableListing) {
	n.record("listing_submitted")
}

func (n *fakeNotification) SendListingApproved(owner *models.User, listing models.ModerableListing) {
	n.record("listing_approved")
}

func (n *fakeNotification) SendListingRejected(owner *models.User, listing models.ModerableListing, reason string) {
	n.record("listing_rejected")
}

func (n *fakeNotification) SendInteractionConfirmation(actorEmail, action, listingTitle string) {
	n.record("interaction_confirmation")
}

func (n *fakeNotification) SendInteractionNotification(ownerEmail, action, listingTitle, actorName string) {
	n.record("interaction_notification")
}

func (n *fakeNotification) SendInteractionStatusChanged(actorEmail, action, listingTitle, status string) {
	n.record("interaction_status")
}

// ---------- storage ----------

type fakeStorage struct {
	mu        sync.Mutex
	saved     []string
	deleted   []string
	saveCalls int
	failOn    int // 1-based номер вызова Save, который должен упасть; 0 - никогда
	saveErr   error
}

func (s *fakeStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.failOn > 0 && s.saveCalls == s.failOn {
		return s.saveErr
	}
	s.saved = append(s.saved, key)
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.saved {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStorage) GetURL(ctx context.Context, key string) (string, error) {
	return "/files/" + key, nil
}

// ---------- jobs ----------

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]*models.Job
	createErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[string]*models.Job{}}
}

func (r *fakeJobRepo) add(job *models.Job) *models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return job
}

func (r *fakeJobRepo) CreateWithImages(job *models.Job, images []models.JobImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	job.ID = uuid.NewString()
	for i := range images {
		images[i].ID = uuid.NewString()
		images[i].JobID = job.ID
	}
	job.Images = images
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) FindByID(id string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		return job, nil
	}
	return nil, repositories.ErrJobNotFound
}

func (r *fakeJobRepo) FindApproved(limit, offset int) ([]models.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Job
	for _, job := range r.jobs {
		if job.Status == models.ListingStatusApproved && job.IsActive {
			result = append(result, *job)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeJobRepo) FindByOwner(userID string) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Job
	for _, job := range r.jobs {
		if job.PostedByID == userID {
			result = append(result, *job)
		}
	}
	return result, nil
}

func (r *fakeJobRepo) FindPublicByOwner(userID string) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Job
	for _, job := range r.jobs {
		if job.PostedByID == userID && job.Status == models.ListingStatusApproved {
			result = append(result, *job)
		}
	}
	return result, nil
}

func (r *fakeJobRepo) Delete(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; !ok {
		return repositories.ErrJobNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

func (r *fakeJobRepo) SetThumbnail(jobID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return repositories.ErrJobNotFound
	}
	found := false
	for i := range job.Images {
		if job.Images[i].ID == imageID {
			found = true
		}
	}
	if !found {
		return repositories.ErrImageNotFound
	}
	for i := range job.Images {
		job.Images[i].IsThumbnail = job.Images[i].ID == imageID
	}
	return nil
}

func (r *fakeJobRepo) FindForModeration(id string) (models.ModerableListing, error) {
	return r.FindByID(id)
}

func (r *fakeJobRepo) SaveModeration(listing models.ModerableListing) error {
	return nil
}

// ---------- applications ----------

type fakeApplicationRepo struct {
	mu     sync.Mutex
	apps   map[string]*models.JobApplication
	counts map[string]int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{
		apps:   map[string]*models.JobApplication{},
		counts: map[string]int{},
	}
}

func (r *fakeApplicationRepo) Create(application *models.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.JobID == application.JobID && a.ApplicantID == application.ApplicantID {
			return repositories.ErrDuplicateEntry
		}
	}
	application.ID = uuid.NewString()
	application.AppliedAt = time.Now()
	r.apps[application.ID] = application
	r.counts[application.JobID]++
	return nil
}

func (r *fakeApplicationRepo) FindByID(id string) (*models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.apps[id]; ok {
		return a, nil
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) FindByJob(jobID string) ([]models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.JobApplication
	for _, a := range r.apps {
		if a.JobID == jobID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeApplicationRepo) FindByApplicant(applicantID string) ([]models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.JobApplication
	for _, a := range r.apps {
		if a.ApplicantID == applicantID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeApplicationRepo) ExistsForPair(jobID, applicantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) UpdateStatus(applicationID string, status models.ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[applicationID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeApplicationRepo) Delete(applicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[applicationID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	delete(r.apps, applicationID)
	if r.counts[a.JobID] > 0 {
		r.counts[a.JobID]--
	}
	return nil
}
