package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager/internal/auth"
	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/storage"
)

type authServiceImpl struct {
	logger zerolog.Logger
	users  storage.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// dummyPassword is hashed once and compared against on unknown emails, so
// that a login costs one hash comparison whether or not the user exists.
const dummyPassword = "dummy-password-for-timing"

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserRepository,
	hasher auth.PasswordHasher,
	tokens TokenIssuer,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *authServiceImpl) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = normalizeEmail(params.Email)
	err := validateParams(params)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("email", params.Email).
			Msg("invalid signup params")
		return nil, err
	}

	_, err = s.users.GetByEmail(ctx, params.Email)
	if err == nil {
		s.logger.Error().
			Str("email", params.Email).
			Msg("user with this email already exists")
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	user.Password, err = s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return result, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	params.Email = normalizeEmail(params.Email)
	err := validateParams(params)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.compareDummy(params.Password)
			s.logger.Error().
				Str("email", params.Email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to select user by email")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user")

	match, err := s.hasher.Compare(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return result, nil
}

func (s *authServiceImpl) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to hash dummy password")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Compare(password, s.dummyHash)
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to parse token")
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("user_id", claims.Subject).
				Msg("token references unknown user")
			return nil, ErrInvalidToken
		}

		s.logger.Error().
			Err(err).
			Str("user_id", claims.Subject).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to generate access token")
		return nil, err
	}
	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
