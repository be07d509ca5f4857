package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/wiibec/donations-backend/pkg/auth"
	"github.com/wiibec/donations-backend/pkg/config"
	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/security"
)

type stubProfileRepo struct {
	byID         map[uuid.UUID]*models.Profile
	byEmail      map[string]*models.Profile
	findCalls    int
	lastLogins   int
	visibleAfter int
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		byID:    make(map[uuid.UUID]*models.Profile),
		byEmail: make(map[string]*models.Profile),
	}
}

func (s *stubProfileRepo) add(profile *models.Profile) {
	s.byID[profile.ID] = profile
	s.byEmail[profile.Email] = profile
}

func (s *stubProfileRepo) WithTx(tx *gorm.DB) ProfileRepository { return s }

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	s.add(profile)
	return nil
}

func (s *stubProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	s.add(profile)
	return nil
}

func (s *stubProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	s.findCalls++
	if s.findCalls <= s.visibleAfter {
		return nil, nil
	}
	return s.byID[id], nil
}

func (s *stubProfileRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.byEmail[strings.ToLower(strings.TrimSpace(email))], nil
}

func (s *stubProfileRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogins++
	if profile, ok := s.byID[id]; ok {
		profile.LastLoginAt = &at
	}
	return nil
}

func (s *stubProfileRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	profile, ok := s.byID[id]
	if !ok {
		return 0, nil
	}
	delete(s.byID, id)
	delete(s.byEmail, profile.Email)
	return 1, nil
}

func (s *stubProfileRepo) List(ctx context.Context) ([]models.Profile, error) { return nil, nil }

func (s *stubProfileRepo) ListEmails(ctx context.Context) ([]string, error) { return nil, nil }

func (s *stubProfileRepo) ListDonorEmails(ctx context.Context) ([]string, error) { return nil, nil }

type stubSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: make(map[string]string)}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", errors.New("invalid refresh token")
	}
	delete(s.sessions, oldAccessID)
	newAccessID := uuid.NewString()
	token := "refresh-" + newAccessID
	s.sessions[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.sessions, accessID)
	return nil
}

type stubAccountTxRunner struct{}

func (stubAccountTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "wiibec",
		ExpirationMinutes: 30,
	}
}

func buildAccountService(t *testing.T, repo *stubProfileRepo, sessions *stubSessionManager) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Profiles:       repo,
		TxRunner:       stubAccountTxRunner{},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedAccount(t *testing.T, repo *stubProfileRepo, email, password string, isAdmin bool) *models.Profile {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Marie",
		LastName:     "Tremblay",
		IsAdmin:      isAdmin,
	}
	repo.add(profile)
	return profile
}

func TestRegisterCreatesProfileAndRejectsDuplicates(t *testing.T) {
	repo := newStubProfileRepo()
	svc := buildAccountService(t, repo, newStubSessionManager())
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Marie",
		LastName:  "Tremblay",
		Email:     "  Marie@Example.COM ",
		Password:  "long-enough-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Email != "marie@example.com" {
		t.Fatalf("email must be normalized, got %q", resp.Email)
	}
	stored := repo.byEmail["marie@example.com"]
	if stored == nil {
		t.Fatalf("profile not persisted")
	}
	if stored.PasswordHash == "long-enough-password" {
		t.Fatalf("password stored in the clear")
	}
	if ok, _ := security.VerifyPassword("long-enough-password", stored.PasswordHash); !ok {
		t.Fatalf("stored hash does not verify")
	}

	_, err = svc.Register(ctx, RegisterRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "marie@example.com",
		Password:  "another-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := buildAccountService(t, newStubProfileRepo(), newStubSessionManager())
	_, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Marie",
		LastName:  "Tremblay",
		Email:     "marie@example.com",
		Password:  "short",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginIssuesTokenPairAndRecordsLogin(t *testing.T) {
	repo := newStubProfileRepo()
	sessions := newStubSessionManager()
	svc := buildAccountService(t, repo, sessions)
	seedAccount(t, repo, "marie@example.com", "correct-horse", false)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "marie@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token")
	}
	if repo.lastLogins != 1 {
		t.Fatalf("last login not recorded")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != "marie@example.com" || claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatalf("refresh session not keyed by jti")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newStubProfileRepo()
	svc := buildAccountService(t, repo, newStubSessionManager())
	seedAccount(t, repo, "marie@example.com", "correct-horse", false)

	cases := []LoginRequest{
		{Email: "marie@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct-horse"},
		{Email: "  ", Password: "correct-horse"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
		if typed.Error() != invalidCredentialsMessage {
			t.Fatalf("credential failures must share one message, got %q", typed.Error())
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubProfileRepo()
	sessions := newStubSessionManager()
	svc := buildAccountService(t, repo, sessions)
	seedAccount(t, repo, "marie@example.com", "correct-horse", false)

	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Email: "marie@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}

	_, err = svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("stale refresh token must be rejected, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubProfileRepo()
	sessions := newStubSessionManager()
	svc := buildAccountService(t, repo, sessions)
	seedAccount(t, repo, "marie@example.com", "correct-horse", false)

	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Email: "marie@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revocation, got %d", len(sessions.revoked))
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("session must be gone after logout")
	}
}

func TestUpdateProfileEditsIdentityFields(t *testing.T) {
	repo := newStubProfileRepo()
	svc := buildAccountService(t, repo, newStubSessionManager())
	profile := seedAccount(t, repo, "marie@example.com", "correct-horse", false)

	phone := "+1 514 555 0101"
	resp, err := svc.UpdateProfile(context.Background(), profile.ID, UpdateProfileRequest{
		FirstName: "Jeanne",
		LastName:  "Tremblay",
		Phone:     &phone,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.FirstName != "Jeanne" || resp.Phone == nil || *resp.Phone != phone {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Email != "marie@example.com" {
		t.Fatalf("email must not change on profile update")
	}

	_, err = svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileRequest{
		FirstName: "Ghost",
		LastName:  "Profile",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFetchProfileWithBackoffRetriesUntilVisible(t *testing.T) {
	repo := newStubProfileRepo()
	svc := buildAccountService(t, repo, newStubSessionManager())

	id := uuid.New()
	repo.add(&models.Profile{ID: id, Email: "late@example.com"})
	repo.visibleAfter = 2

	cfg := config.ProfileConfig{FetchMaxAttempts: 10, FetchBaseDelay: time.Millisecond}
	profile, err := svc.FetchProfileWithBackoff(context.Background(), id, cfg)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if profile.Email != "late@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if repo.findCalls != 3 {
		t.Fatalf("expected two retries before success, saw %d calls", repo.findCalls)
	}
}

func TestFetchProfileWithBackoffExhaustsIntoTypedError(t *testing.T) {
	repo := newStubProfileRepo()
	svc := buildAccountService(t, repo, newStubSessionManager())

	id := uuid.New()
	cfg := config.ProfileConfig{FetchMaxAttempts: 3, FetchBaseDelay: time.Millisecond}
	_, err := svc.FetchProfileWithBackoff(context.Background(), id, cfg)

	var notFound *ProfileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProfileNotFoundError, got %v", err)
	}
	if notFound.Attempts != 3 || notFound.ProfileID != id {
		t.Fatalf("unexpected error payload: %+v", notFound)
	}
	if repo.findCalls != 3 {
		t.Fatalf("expected exactly 3 lookups, saw %d", repo.findCalls)
	}
}

func TestFetchProfileWithBackoffHonorsContext(t *testing.T) {
	repo := newStubProfileRepo()
	svc := buildAccountService(t, repo, newStubSessionManager())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.ProfileConfig{FetchMaxAttempts: 5, FetchBaseDelay: 50 * time.Millisecond}
	_, err := svc.FetchProfileWithBackoff(ctx, uuid.New(), cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func buildAccountServiceWithProfileCfg(t *testing.T, repo *stubProfileRepo, cfg config.ProfileConfig) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Profiles:       repo,
		TxRunner:       stubAccountTxRunner{},
		SessionManager: newStubSessionManager(),
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
		ProfileConfig:  cfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetProfileRetriesWhileRegistrationSettles(t *testing.T) {
	repo := newStubProfileRepo()
	cfg := config.ProfileConfig{FetchMaxAttempts: 4, FetchBaseDelay: time.Millisecond}
	svc := buildAccountServiceWithProfileCfg(t, repo, cfg)

	id := uuid.New()
	repo.add(&models.Profile{ID: id, Email: "fresh@example.com", FirstName: "Ada", LastName: "Roy"})
	repo.visibleAfter = 2

	resp, err := svc.GetProfile(context.Background(), id)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if resp.Email != "fresh@example.com" {
		t.Fatalf("unexpected profile %+v", resp)
	}
	if repo.findCalls != 3 {
		t.Fatalf("expected two retries before success, saw %d calls", repo.findCalls)
	}
}

func TestGetProfileMapsExhaustedBackoffToNotFound(t *testing.T) {
	repo := newStubProfileRepo()
	cfg := config.ProfileConfig{FetchMaxAttempts: 2, FetchBaseDelay: time.Millisecond}
	svc := buildAccountServiceWithProfileCfg(t, repo, cfg)

	_, err := svc.GetProfile(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.findCalls != 2 {
		t.Fatalf("expected 2 lookups before giving up, saw %d", repo.findCalls)
	}
}
