// Package services contains server-side business logic: account lifecycle
// and sessions, catalog ownership rules, the entitlement and order ledgers,
// aggregate statistics and image hosting.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/cryptox"
	"github.com/sayedsafi2000/pixelsbee/internal/server/auth"
	"github.com/sayedsafi2000/pixelsbee/internal/server/config"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
)

const (
	msgAllFieldsRequired  = "All fields are required"
	msgEmailRegistered    = "Email already registered"
	msgVendorPending      = "Registration successful, pending admin approval"
	msgWelcome            = "Registration successful! Welcome to Pixelsbee!"
	msgInvalidCredentials = "Invalid credentials"
	msgNotApproved        = "Account not approved by admin"
	msgBlocked            = "Account blocked"
	msgVendorNotFound     = "Vendor not found"
	msgAccountNotFound    = "User not found"
)

// Seams for tests.
var (
	hashPassword    = cryptox.HashPassword
	comparePassword = cryptox.ComparePassword
)

// RegisterInput is the registration request.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Role          models.Role
	ProfilePicURL *string
}

// RegisterResult carries the created account. Token is empty for vendors,
// who must wait for approval.
type RegisterResult struct {
	Message string
	Token   string
	Account models.AccountView
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token   string
	Account models.AccountView
}

// AccountService owns account records, credentials and the status lifecycle.
type AccountService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	jwtSecret       []byte
	sessionValidity time.Duration
}

// NewAccountService constructs an AccountService using repositories and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:              db,
		repomanager:     m,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user or vendor account. Any requested role other than
// vendor yields a user. Users are approved and get a session right away;
// vendors start pending.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, common.NewError(common.ErrorInvalidInput, msgAllFieldsRequired)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if in.Role == models.RoleVendor {
		role = models.RoleVendor
	}

	account, err := s.createAccount(ctx, name, email, in.Password, role, in.ProfilePicURL)
	if err != nil {
		return nil, err
	}

	if role == models.RoleVendor {
		return &RegisterResult{Message: msgVendorPending, Account: account.View()}, nil
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Message: msgWelcome, Token: token, Account: account.View()}, nil
}

// CreateAdmin provisions an approved admin account. It is only reachable
// from the bootstrap command, never over HTTP.
func (s *AccountService) CreateAdmin(ctx context.Context, name, email, password string) (*models.AccountView, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, common.NewError(common.ErrorInvalidInput, msgAllFieldsRequired)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	account, err := s.createAccount(ctx, name, email, password, models.RoleAdmin, nil)
	if err != nil {
		return nil, err
	}
	v := account.View()
	return &v, nil
}

func (s *AccountService) createAccount(ctx context.Context, name, email, password string, role models.Role, pic *string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.NewError(common.ErrorConflict, msgEmailRegistered)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up email: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := repo.Create(ctx, &models.Account{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		Status:        models.InitialStatus(role),
		ProfilePicURL: pic,
	})
	if err != nil {
		// a concurrent registration won the unique constraint
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, msgEmailRegistered)
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return account, nil
}

// Login verifies credentials and issues a session. A vendor that is not
// approved is rejected before its password is compared.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewError(common.ErrorInvalidInput, msgAllFieldsRequired)
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
		}
		return nil, fmt.Errorf("error looking up account: %w", err)
	}

	if account.Role == models.RoleVendor && account.Status != models.StatusApproved {
		return nil, common.NewError(common.ErrorForbidden, msgNotApproved)
	}

	ok, err := comparePassword(account.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
	}

	if account.Status == models.StatusBlocked {
		return nil, common.NewError(common.ErrorForbidden, msgBlocked)
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Account: account.View()}, nil
}

func (s *AccountService) issueToken(a *models.Account) (string, error) {
	token, err := auth.GenerateToken(a.ID, a.Role, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return token, nil
}

// Resolve verifies a bearer token and re-reads the account so that a
// blocked or demoted account loses access before its token expires.
func (s *AccountService) Resolve(ctx context.Context, token string) (*policy.Actor, error) {
	session, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.NewError(common.ErrorUnauthorized, "Token expired")
		}
		return nil, common.NewError(common.ErrorUnauthorized, "Invalid token")
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "Invalid token")
		}
		return nil, fmt.Errorf("error resolving session: %w", err)
	}
	if account.Status == models.StatusBlocked {
		return nil, common.NewError(common.ErrorForbidden, msgBlocked)
	}
	if account.Role == models.RoleVendor && account.Status != models.StatusApproved {
		return nil, common.NewError(common.ErrorForbidden, msgNotApproved)
	}

	return &policy.Actor{ID: account.ID, Role: account.Role}, nil
}

// SetStatus moves an account through the guarded status lifecycle. The
// update is a compare-and-set on the status that was read, so a concurrent
// change surfaces as Conflict instead of being overwritten.
func (s *AccountService) SetStatus(ctx context.Context, id string, next models.Status) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgAccountNotFound)
		}
		return fmt.Errorf("error loading account: %w", err)
	}
	return s.transition(ctx, account, next)
}

func (s *AccountService) transition(ctx context.Context, account *models.Account, next models.Status) error {
	if err := account.ValidateTransition(next); err != nil {
		return err
	}
	if account.Status == next {
		return nil
	}
	if err := s.repomanager.Accounts(s.db).CompareAndSetStatus(ctx, account.ID, account.Status, next); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return common.NewError(common.ErrorConflict, "Account status changed concurrently")
		}
		return fmt.Errorf("error updating status: %w", err)
	}
	return nil
}

func (s *AccountService) vendorTransition(ctx context.Context, id string, next models.Status) error {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgVendorNotFound)
		}
		return fmt.Errorf("error loading vendor: %w", err)
	}
	if account.Role != models.RoleVendor {
		return common.NewError(common.ErrorNotFound, msgVendorNotFound)
	}
	return s.transition(ctx, account, next)
}

// ApproveVendor approves a pending or blocked vendor.
func (s *AccountService) ApproveVendor(ctx context.Context, id string) error {
	return s.vendorTransition(ctx, id, models.StatusApproved)
}

// BlockVendor blocks a vendor.
func (s *AccountService) BlockVendor(ctx context.Context, id string) error {
	return s.vendorTransition(ctx, id, models.StatusBlocked)
}

// BlockAccount blocks any non-admin account.
func (s *AccountService) BlockAccount(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, models.StatusBlocked)
}

// UnblockAccount moves a blocked account back to approved.
func (s *AccountService) UnblockAccount(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, models.StatusApproved)
}

// ChangePassword replaces the password after verifying the old one.
func (s *AccountService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return common.NewError(common.ErrorInvalidInput, "Both passwords required")
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgAccountNotFound)
		}
		return fmt.Errorf("error loading account: %w", err)
	}

	ok, err := comparePassword(account.PasswordHash, oldPassword)
	if err != nil {
		return fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return common.NewError(common.ErrorUnauthorized, "Old password incorrect")
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// Profile returns the sanitized account.
func (s *AccountService) Profile(ctx context.Context, id string) (*models.AccountView, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgAccountNotFound)
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}
	v := account.View()
	return &v, nil
}

// UpdateProfile changes name, email and picture. An email held by another
// account is a Conflict.
func (s *AccountService) UpdateProfile(ctx context.Context, id, name, email string, pic *string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return common.NewError(common.ErrorInvalidInput, "Name and email required")
	}

	repo := s.repomanager.Accounts(s.db)
	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != id:
		return common.NewError(common.ErrorConflict, "Email already in use")
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("error looking up email: %w", err)
	}

	if err := repo.UpdateProfile(ctx, id, name, email, pic); err != nil {
		switch {
		case errors.Is(err, common.ErrorConflict):
			return common.NewError(common.ErrorConflict, "Email already in use")
		case errors.Is(err, common.ErrorNotFound):
			return common.NewError(common.ErrorNotFound, msgAccountNotFound)
		}
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

// ListVendors returns every vendor account, newest first.
func (s *AccountService) ListVendors(ctx context.Context) ([]models.AccountView, error) {
	return s.listByRole(ctx, models.RoleVendor)
}

// ListUsers returns every user account, newest first.
func (s *AccountService) ListUsers(ctx context.Context) ([]models.AccountView, error) {
	return s.listByRole(ctx, models.RoleUser)
}

func (s *AccountService) listByRole(ctx context.Context, role models.Role) ([]models.AccountView, error) {
	accounts, err := s.repomanager.Accounts(s.db).ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	views := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.View())
	}
	return views, nil
}
