package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/config"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/auth"
	"github.com/shashiranjanraj/shopctl/pkg/logger"
	"github.com/shashiranjanraj/shopctl/pkg/mail"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// RegisterInput carries a new account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=2,max=60"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput carries credentials.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput carries a partial account update.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"nullable,min=2,max=60"`
	Password *string `json:"password" validate:"nullable,min=6"`
}

// TokenPair is the login response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UsersService owns accounts: registration with email confirmation,
// credential checks and token issuance.
type UsersService struct {
	db    *gorm.DB
	users *repositories.UserRepository
}

func NewUsersService(db *gorm.DB) *UsersService {
	return &UsersService{db: db, users: repositories.NewUserRepository(db)}
}

// Register creates an account and emails a confirmation link. The mailer
// failing does not fail the registration; the token can be re-requested.
func (s *UsersService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	users := s.users.WithTx(s.db.WithContext(ctx))

	if _, err := users.FindByEmail(in.Email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Type:     models.UserTypeUser,
	}
	if err := users.Create(user); err != nil {
		return nil, err
	}

	if err := s.sendConfirmationMail(user); err != nil {
		logger.WithCtx(ctx).Warn("confirmation mail not sent", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func (s *UsersService) sendConfirmationMail(user *models.User) error {
	token, err := auth.GenerateConfirmationToken(user.ID)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/users/confirm?token=%s",
		config.Get("APP_URL", "http://localhost:"+config.AppPort()), token)

	return mail.To(user.Email).
		Subject("Confirm your account").
		Body(fmt.Sprintf(
			"<p>Hi %s,</p><p>Confirm your account by opening <a href=%q>this link</a>.</p>",
			user.Username, link)).
		Send()
}

// ConfirmEmail validates a confirmation token and activates the account.
func (s *UsersService) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := auth.ValidateConfirmationToken(token)
	if err != nil {
		return apperr.BadRequest("Invalid or expired confirmation token")
	}

	users := s.users.WithTx(s.db.WithContext(ctx))
	user, err := users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	if user.EmailVerified {
		return apperr.BadRequest("Email already confirmed")
	}

	user.EmailVerified = true
	return users.Update(user)
}

// Login checks credentials and issues an access/refresh token pair. The same
// message covers an unknown email and a wrong password.
func (s *UsersService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	user, err := s.users.WithTx(s.db.WithContext(ctx)).FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	access, err := auth.GenerateToken(user.ID, user.Type)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Type)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GetByID returns one account. Non-admin callers may only read their own.
func (s *UsersService) GetByID(ctx context.Context, id uint, ident Identity) (*models.User, error) {
	if !ident.IsAdmin() && id != ident.UserID {
		return nil, apperr.Unauthorized("You are not allowed to access other users")
	}

	user, err := s.users.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Update applies a partial update to the caller's own account.
func (s *UsersService) Update(ctx context.Context, ident Identity, in UpdateUserInput) (*models.User, error) {
	users := s.users.WithTx(s.db.WithContext(ctx))
	user, err := users.FindByID(ident.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAll is the admin listing.
func (s *UsersService) GetAll(ctx context.Context, page, limit int) ([]models.User, orm.Pagination, error) {
	return s.users.WithTx(s.db.WithContext(ctx)).All(page, limit)
}
