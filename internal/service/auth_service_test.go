package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-api/internal/models"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
)

type fakeAuthRepo struct {
	users  map[string]*models.User
	tokens map[string]*models.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (f *fakeAuthRepo) Create(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

// Lookups are exact, like the column comparison in the real repo, so
// these tests notice if the service stops normalizing emails.
func (f *fakeAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeAuthRepo) UpdateProfile(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (f *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	for _, t := range f.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func newAuthService(repo *fakeAuthRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "bunkmate-test",
	})
}

func signupFixture() models.SignupRequest {
	return models.SignupRequest{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
		Name:     "Asha",
		Semester: 4,
		Batch:    "A",
	}
}

func TestAuthServiceSignup(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newAuthService(repo)

	resp, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Asha", resp.User.Name)
	assert.True(t, resp.User.NotificationsEnabled)
	assert.Len(t, repo.users, 1)

	for _, u := range repo.users {
		assert.NotEqual(t, "sufficiently-long", u.PasswordHash)
	}
}

func TestAuthServiceSignupDuplicateEmail(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())

	_, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupFixture())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceSignupValidation(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())

	req := signupFixture()
	req.Email = "not-an-email"
	_, err := svc.Signup(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = signupFixture()
	req.Semester = 12
	_, err = svc.Signup(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	_, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
}

func TestAuthServiceEmailCaseInsensitive(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())

	req := signupFixture()
	req.Email = "Asha@Example.com"
	resp, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", resp.User.Email)

	// Any spelling of the address logs in.
	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "ASHA@EXAMPLE.COM",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)

	// And any spelling is blocked from registering again.
	dup := signupFixture()
	dup.Email = "asha@EXAMPLE.com"
	_, err = svc.Signup(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	_, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newAuthService(repo)

	login, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The first token is revoked on rotation and cannot be replayed.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRejectsExpired(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newAuthService(repo)

	login, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)

	repo.tokens[login.RefreshToken].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceUpdateProfile(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newAuthService(repo)

	login, err := svc.Signup(context.Background(), signupFixture())
	require.NoError(t, err)

	disabled := false
	semester := 5
	info, err := svc.UpdateProfile(context.Background(), login.User.ID, models.UpdateProfileRequest{
		Semester:             &semester,
		NotificationsEnabled: &disabled,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, info.Semester)
	assert.False(t, info.NotificationsEnabled)
	assert.Equal(t, "Asha", info.Name)

	fetched, err := svc.Profile(context.Background(), login.User.ID)
	require.NoError(t, err)
	assert.False(t, fetched.NotificationsEnabled)
}
