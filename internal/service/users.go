package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/skinledger/internal/model"
	"github.com/erazemk/skinledger/internal/store"
	"github.com/erazemk/skinledger/internal/validate"
)

// SignupInput is a registration request.
type SignupInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPass"`
}

// PasswordChange is a request to replace a password.
type PasswordChange struct {
	Current string `json:"curPassword"`
	New     string `json:"newPassword"`
	Confirm string `json:"confNewPassword"`
}

// UserService manages accounts and credentials.
type UserService struct {
	DB         *sql.DB
	BcryptCost int
	Now        func() time.Time
}

// NewUserService returns a service hashing with cost. Costs outside bcrypt's
// range fall back to bcrypt.DefaultCost.
func NewUserService(db *sql.DB, cost int) *UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &UserService{DB: db, BcryptCost: cost, Now: time.Now}
}

// Signup registers a new account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)
	confirm := strings.TrimSpace(in.ConfirmPassword)

	if username == "" || email == "" || password == "" || confirm == "" {
		return nil, rejected(&validate.FieldError{
			Field:   validate.FieldUsername,
			Message: "Please enter a username, email, and password to continue.",
		})
	}
	if password != confirm {
		return nil, rejected(&validate.FieldError{
			Field:   validate.FieldPassword,
			Message: "Please make sure both passwords are the same",
		})
	}
	for _, err := range []error{validate.Username(username), validate.Email(email), validate.Password(password)} {
		if err != nil {
			return nil, rejected(err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := store.CreateUser(ctx, s.DB, &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Status:       model.UserStatusActive,
		CreatedAt:    s.Now().UnixMilli(),
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, failure(ErrConflict, "This email or username is already in use. Please choose another one.")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Signin checks credentials. login is treated as an email address when it
// contains an @ and as a username otherwise.
func (s *UserService) Signin(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	password = strings.TrimSpace(password)
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}
	if login == "" || password == "" {
		return nil, rejected(&validate.FieldError{
			Field:   validate.FieldLogin,
			Message: "Both email/username and password are required.",
		})
	}
	if err := validate.Login(login); err != nil {
		return nil, rejected(err)
	}

	user, err := store.GetUserByLogin(ctx, s.DB, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, failure(ErrNotFound, "We couldn't find an account with that email/username.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, failure(ErrUnauthorized, "Incorrect email/username or password.")
	}
	if !user.Active() {
		return nil, failure(ErrForbidden, "This account has been disabled.")
	}
	return user, nil
}

// ChangePassword replaces targetID's password. Only the account holder may
// change it, and only by supplying the current password.
func (s *UserService) ChangePassword(ctx context.Context, actorID, targetID string, in PasswordChange) error {
	if actorID != targetID {
		return failure(ErrForbidden, "Forbidden access")
	}

	in.Current = strings.TrimSpace(in.Current)
	in.New = strings.TrimSpace(in.New)
	in.Confirm = strings.TrimSpace(in.Confirm)
	if in.Current == "" || in.New == "" || in.Confirm == "" {
		return rejected(&validate.FieldError{
			Field:   validate.FieldPassword,
			Message: "Please enter your current password, new password, and confirm your new password.",
		})
	}
	for _, p := range []string{in.Current, in.New, in.Confirm} {
		if err := validate.Password(p); err != nil {
			return rejected(err)
		}
	}
	if in.New != in.Confirm {
		return rejected(&validate.FieldError{
			Field:   validate.FieldPassword,
			Message: "Please make sure both new passwords are the same",
		})
	}
	if in.New == in.Current {
		return rejected(&validate.FieldError{
			Field:   validate.FieldPassword,
			Message: "Your new password must be different from the current one.",
		})
	}

	user, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Current)); err != nil {
		return failure(ErrUnauthorized, "Incorrect current password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return store.UpdateUserPassword(ctx, s.DB, targetID, string(hash))
}

// Get returns an account by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := store.GetUser(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, failure(ErrNotFound, "User not found")
	}
	return user, nil
}
