package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = Identity{
	ID:    "5f1c2b8e-8a57-4a8e-9f3e-2b7d1c0a9e11",
	Email: "a@x.com",
	Role:  "user",
	Name:  "A",
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("test-jwt-secret"), 0)
	tok, err := iss.Issue(testIdentity)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.ID, claims.UserID)
	assert.Equal(t, testIdentity.ID, claims.Subject)
	assert.Equal(t, testIdentity.Email, claims.Email)
	assert.Equal(t, testIdentity.Role, claims.Role)
	assert.Equal(t, testIdentity.Name, claims.Name)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_VerifyExpired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now().Add(-25 * time.Hour)
	iss := NewIssuer([]byte("test-jwt-secret"), 24*time.Hour).WithClock(func() time.Time { return issuedAt })
	tok, err := iss.Issue(testIdentity)
	require.NoError(t, err)

	_, err = NewIssuer([]byte("test-jwt-secret"), 24*time.Hour).Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_VerifyJustBeforeExpiry(t *testing.T) {
	t.Parallel()

	start := time.Now()
	iss := NewIssuer([]byte("s"), time.Hour).WithClock(func() time.Time { return start })
	tok, err := iss.Issue(testIdentity)
	require.NoError(t, err)

	later := iss.WithClock(func() time.Time { return start.Add(59 * time.Minute) })
	_, err = later.Verify(tok)
	require.NoError(t, err)

	tooLate := iss.WithClock(func() time.Time { return start.Add(61 * time.Minute) })
	_, err = tooLate.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_VerifyRejects(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("right-secret"), time.Hour)
	good, err := iss.Issue(testIdentity)
	require.NoError(t, err)

	other, err := NewIssuer([]byte("wrong-secret"), time.Hour).Issue(testIdentity)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"})
	noneTok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "x"}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: other},
		{name: "tampered signature", token: tampered},
		{name: "alg none", token: noneTok},
		{name: "missing exp", token: noExp},
		{name: "malformed", token: "not.a.jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := iss.Verify(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer([]byte("secret"), time.Hour).Issue(testIdentity)
	require.NoError(t, err)

	claims, ok := Decode(tok)
	require.True(t, ok)
	assert.Equal(t, testIdentity.ID, claims.UserID)
	assert.Equal(t, testIdentity.Email, claims.Email)

	expired, err := NewIssuer([]byte("secret"), time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }).
		Issue(testIdentity)
	require.NoError(t, err)
	claims, ok = Decode(expired)
	require.True(t, ok)
	assert.Equal(t, testIdentity.ID, claims.UserID)

	_, ok = Decode("garbage")
	assert.False(t, ok)
}

func TestExtractFromHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{name: "missing", header: "", ok: false},
		{name: "wrong scheme", header: "Basic abc.def.ghi", ok: false},
		{name: "lowercase scheme", header: "bearer abc", ok: false},
		{name: "no token", header: "Bearer", ok: false},
		{name: "empty token", header: "Bearer ", ok: false},
		{name: "too many segments", header: "Bearer abc def", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractFromHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
