package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
	"financas/internal/validation"

	"github.com/google/uuid"
)

// DefaultCategories are created for every new account.
var DefaultCategories = []core.Category{
	{Name: "Salário", Kind: core.Income, Color: "#10B981"},
	{Name: "Freelance", Kind: core.Income, Color: "#34D399"},
	{Name: "Investimentos", Kind: core.Income, Color: "#6EE7B7"},
	{Name: "Alimentação", Kind: core.Expense, Color: "#EF4444"},
	{Name: "Transporte", Kind: core.Expense, Color: "#F87171"},
	{Name: "Moradia", Kind: core.Expense, Color: "#FCA5A5"},
	{Name: "Lazer", Kind: core.Expense, Color: "#FCD34D"},
	{Name: "Saúde", Kind: core.Expense, Color: "#FB923C"},
	{Name: "Educação", Kind: core.Expense, Color: "#A78BFA"},
}

// UserView is the public projection of a user.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"criado_em"`
}

func viewOf(u core.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expira_em"`
	User      UserView  `json:"usuario"`
}

// AccountService handles sign-up, sign-in and the current user.
type AccountService struct {
	users  storage.UserStore
	issuer *auth.Issuer
	now    func() time.Time
	logger *log.Logger
}

func NewAccountService(users storage.UserStore, issuer *auth.Issuer) *AccountService {
	return &AccountService{
		users:  users,
		issuer: issuer,
		now:    time.Now,
		logger: log.ForComponent(log.ComponentAccount),
	}
}

// WithClock replaces the time source used for creation timestamps.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// Register validates the credentials, stores the user with the default
// categories and signs them in.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	var violations []string
	violations = append(violations, validation.ValidateName(name).Errors...)
	violations = append(violations, validation.ValidateEmail(email).Errors...)
	violations = append(violations, validation.ValidatePassword(password).Errors...)
	if len(violations) > 0 {
		return AuthResult{}, &ValidationError{Errors: violations}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	cats := make([]core.Category, len(DefaultCategories))
	for i, c := range DefaultCategories {
		c.ID = uuid.NewString()
		c.UserID = u.ID
		cats[i] = c
	}
	if err := s.users.CreateUser(ctx, u, cats); err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.NewFields().WithUser(u.ID).WithOperation(log.OpRegister).ToSlice()...)
	return s.issue(u)
}

// Login checks the password against the stored hash.
func (s *AccountService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Login rejected", log.NewFields().WithUser(u.ID).WithOperation(log.OpLogin).ToSlice()...)
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Me returns the user behind an authenticated session.
func (s *AccountService) Me(ctx context.Context, sess auth.Session) (UserView, error) {
	u, err := s.users.UserByID(ctx, sess.UserID)
	if err != nil {
		return UserView{}, fmt.Errorf("find user: %w", err)
	}
	return viewOf(u), nil
}

func (s *AccountService) issue(u core.User) (AuthResult, error) {
	token, exp, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{Token: token, ExpiresAt: exp, User: viewOf(u)}, nil
}
