package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/metrics"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/pkg/events"
	"github.com/Skotchmaster/inventory/pkg/hash"
	"github.com/Skotchmaster/inventory/pkg/logging"
	"github.com/Skotchmaster/inventory/pkg/tokens"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthService struct {
	Repo    UserStore
	Hasher  hash.Hasher
	Tokens  *tokens.Issuer
	Events  events.Publisher
	Metrics metrics.Recorder
	// AllowAdminSignup lets self registration request the admin role.
	AllowAdminSignup bool

	dummyOnce sync.Once
	dummyHash string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *AuthService) validateRegister(in *RegisterInput) error {
	var fe fieldErrors

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	checkLength(&fe, "name", in.Name, 2, 100)
	if in.Email == "" {
		fe.add("email", "email is required")
	} else if !validEmail(in.Email) {
		fe.add("email", "email must be a valid address")
	}
	checkPassword(&fe, in.Password)

	switch {
	case in.Role == "":
		in.Role = string(models.RoleUser)
	case !models.Role(in.Role).Valid():
		fe.add("role", "role must be admin or user")
	case in.Role == string(models.RoleAdmin) && !s.AllowAdminSignup:
		fe.add("role", "admin accounts cannot be self registered")
	}
	return fe.err()
}

func (s *AuthService) issue(u *models.User) (string, error) {
	return s.Tokens.Issue(tokens.Identity{
		ID:    u.ID.String(),
		Email: u.Email,
		Role:  string(u.Role),
		Name:  u.Name,
	})
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := s.validateRegister(&in); err != nil {
		s.recorder().RecordAuth("register", "invalid")
		return nil, err
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         models.Role(in.Role),
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			l.Warn("register_error", "status", 409, "reason", "email already registered")
			s.recorder().RecordAuth("register", "conflict")
			return nil, ErrEmailTaken
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issue(user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, s.Metrics, events.TopicUsers, user.ID.String(), UserEvent{
		Type:       "user_registered",
		UserID:     user.ID.String(),
		Email:      user.Email,
		Role:       string(user.Role),
		OccurredAt: time.Now().UTC(),
	})
	s.recorder().RecordAuth("register", "success")
	l.Info("register_success", "user_id", user.ID.String())

	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}

// compareDummy spends the same bcrypt time as a real comparison so that
// unknown emails are not distinguishable by latency.
func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("inventory-dummy-password")
	})
	if s.dummyHash != "" {
		_ = s.Hasher.Compare(password, s.dummyHash)
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	var fe fieldErrors
	if email == "" {
		fe.add("email", "email is required")
	}
	if password == "" {
		fe.add("password", "password is required")
	}
	if err := fe.err(); err != nil {
		s.recorder().RecordAuth("login", "invalid")
		return nil, err
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.compareDummy(password)
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			s.recorder().RecordAuth("login", "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "reason", "cannot load user", "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.Hasher.Compare(password, user.PasswordHash) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID.String())
		s.recorder().RecordAuth("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		l.Warn("login_failed", "status", 403, "reason", "account deactivated", "user_id", user.ID.String())
		s.recorder().RecordAuth("login", "deactivated")
		return nil, ErrAccountDeactivated
	}

	token, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, s.Metrics, events.TopicUsers, user.ID.String(), UserEvent{
		Type:       "user_logged_in",
		UserID:     user.ID.String(),
		Email:      user.Email,
		Role:       string(user.Role),
		OccurredAt: time.Now().UTC(),
	})
	s.recorder().RecordAuth("login", "success")
	l.Info("login_successful", "user_id", user.ID.String())

	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logging.FromContext(ctx).Error("get_profile_failed", "status", 500, "user_id", userID, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
