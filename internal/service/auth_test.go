package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/pkg/events"
)

func TestAuthService_RegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := env.register(t, "A", "a@x.com", "")
	require.NotEmpty(t, reg.Token)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.True(t, reg.User.IsActive)
	assert.Empty(t, reg.User.PasswordHash)

	res, err := env.Auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	claims, err := env.Tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "A", claims.Name)
	assert.Equal(t, "user", claims.Role)

	stored, err := env.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))

	evs := env.Events.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.TopicUsers, evs[0].Topic)
	assert.Equal(t, "user_registered", evs[0].Event["type"])
	assert.Equal(t, "user_logged_in", evs[1].Event["type"])
}

func TestAuthService_Login_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "Known", "known@x.com", "")

	_, errWrong := env.Auth.Login(ctx, "known@x.com", "not-the-password")
	_, errUnknown := env.Auth.Login(ctx, "nobody@x.com", "secret1")

	require.Error(t, errWrong)
	require.Error(t, errUnknown)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, "invalid credentials", Message(errWrong))
}

func TestAuthService_Login_EmailIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Mixed", "  Mixed.Case@X.com ", "")

	res, err := env.Auth.Login(context.Background(), "mixed.case@x.COM", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "mixed.case@x.com", res.User.Email)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "First", "dup@x.com", "")

	_, err := env.Auth.Register(ctx, RegisterInput{Name: "Second", Email: "DUP@x.com", Password: "secret2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "email already registered", Message(err))

	var n int64
	require.NoError(t, env.Repo.DB.Model(&models.User{}).Where("email = ?", "dup@x.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "Gone", "gone@x.com", "")
	require.NoError(t, env.Repo.SetUserActive(ctx, reg.User.ID, false))

	_, err := env.Auth.Login(ctx, "gone@x.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
	assert.ErrorIs(t, err, ErrForbidden)

	// a wrong password still reads as bad credentials
	_, err = env.Auth.Login(ctx, "gone@x.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{name: "short name", in: RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}, field: "name"},
		{name: "bad email", in: RegisterInput{Name: "Ann", Email: "not-an-email", Password: "secret1"}, field: "email"},
		{name: "missing email", in: RegisterInput{Name: "Ann", Password: "secret1"}, field: "email"},
		{name: "short password", in: RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "123"}, field: "password"},
		{name: "password over 72 bytes", in: RegisterInput{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("ñ", 40)}, field: "password"},
		{name: "unknown role", in: RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1", Role: "root"}, field: "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Register(ctx, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			fields := make([]string, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	var n int64
	require.NoError(t, env.Repo.DB.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAuthService_Register_MultibytePasswordLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("ñ", 40)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "password must be at most 72 bytes", ve.Fields[0].Message)

	_, err = env.Auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("ñ", 36)})
	require.NoError(t, err)
}

func TestAuthService_Register_AdminSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.Auth.Register(ctx, RegisterInput{Name: "Root", Email: "root@x.com", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	env.Auth.AllowAdminSignup = false
	_, err = env.Auth.Register(ctx, RegisterInput{Name: "Root2", Email: "root2@x.com", Password: "secret1", Role: "admin"})
	assert.ErrorIs(t, err, ErrValidation)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }
func (failingHasher) Compare(string, string) bool { return false }

func TestAuthService_Register_HashFailurePropagates(t *testing.T) {
	env := newTestEnv(t)
	env.Auth.Hasher = failingHasher{}

	_, err := env.Auth.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "entropy exhausted")

	var n int64
	require.NoError(t, env.Repo.DB.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAuthService_Register_PublishFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.Events.Err = errors.New("broker down")

	res, err := env.Auth.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAuthService_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "Ann", "ann@x.com", "")

	u, err := env.Auth.GetProfile(ctx, reg.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	_, err = env.Auth.GetProfile(ctx, "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.Auth.GetProfile(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
