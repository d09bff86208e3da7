package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	pkgdb "github.com/Skotchmaster/inventory/pkg/db"
	"github.com/Skotchmaster/inventory/pkg/events"
	"github.com/Skotchmaster/inventory/pkg/hash"
	"github.com/Skotchmaster/inventory/pkg/tokens"
)

type testEnv struct {
	Repo      *repo.GormRepo
	Auth      *AuthService
	Equipment *EquipmentService
	Events    *events.Recorder
	Tokens    *tokens.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.Options{Driver: pkgdb.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := repo.New(db)
	rec := &events.Recorder{}
	iss := tokens.NewIssuer([]byte("service-test-secret"), time.Hour)

	return &testEnv{
		Repo: r,
		Auth: &AuthService{
			Repo:             r,
			Hasher:           hash.NewBcrypt(bcrypt.MinCost),
			Tokens:           iss,
			Events:           rec,
			AllowAdminSignup: true,
		},
		Equipment: &EquipmentService{
			Repo:   r,
			Events: rec,
		},
		Events: rec,
		Tokens: iss,
	}
}

func (e *testEnv) register(t *testing.T, name, email, role string) *AuthResult {
	t.Helper()
	res, err := e.Auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1", Role: role})
	require.NoError(t, err)
	return res
}

func laptopInput(serial string) CreateEquipmentInput {
	return CreateEquipmentInput{
		Name:         "ThinkPad " + serial,
		Type:         string(models.TypeLaptop),
		Brand:        "Lenovo",
		Model:        "T14",
		SerialNumber: serial,
		Status:       string(models.StatusAvailable),
	}
}

func strPtr(s string) *string { return &s }
