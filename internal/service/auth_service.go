package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrInvalidCredentials indicates the login could not be matched to an account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidResetToken indicates the password reset token is expired or malformed.
var ErrInvalidResetToken = errors.New("invalid reset token")

// ErrUserNotFound indicates the token subject no longer resolves to an account.
var ErrUserNotFound = errors.New("user not found")

const resetTokenPurpose = "password_reset"

// ResetSender delivers password reset tokens out of band. The default
// implementation only logs; wiring a mail provider is a deployment concern.
type ResetSender interface {
	SendReset(ctx context.Context, email, token string) error
}

type logResetSender struct {
	logger zerolog.Logger
}

func (s logResetSender) SendReset(_ context.Context, email, token string) error {
	s.logger.Info().Str("email", email).Str("token", token).Msg("password reset token issued")
	return nil
}

// AuthService handles login, token verification and password recovery for
// both teacher and student accounts.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Resolve(ctx context.Context, role string, userID uint) (dto.UserSummary, error)
	ForgotPassword(ctx context.Context, payload dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, payload dto.ResetPasswordRequest) error
}

type authService struct {
	teachers  repository.TeacherRepository
	students  repository.StudentRepository
	validator *validator.Validate
	sender    ResetSender
	secret    []byte
	tokenTTL  time.Duration
	resetTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds the authentication service. A nil sender falls back
// to logging reset tokens.
func NewAuthService(teachers repository.TeacherRepository, students repository.StudentRepository, validate *validator.Validate, sender ResetSender, secret string, tokenTTL, resetTTL time.Duration, logger zerolog.Logger) AuthService {
	componentLogger := logger.With().Str("component", "auth_service").Logger()
	if sender == nil {
		sender = logResetSender{logger: componentLogger}
	}

	return &authService{
		teachers:  teachers,
		students:  students,
		validator: validate,
		sender:    sender,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		resetTTL:  resetTTL,
		logger:    componentLogger,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	if payload.Email == "" && payload.Code == "" {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	roles := []string{models.RoleTeacher, models.RoleStudent}
	if payload.Role != "" {
		roles = []string{payload.Role}
	}

	for _, role := range roles {
		summary, hash, err := s.lookup(ctx, role, payload.Email, payload.Code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return dto.LoginResponse{}, err
		}

		if !passwordMatches(hash, payload.Password) {
			continue
		}

		token, err := s.issueToken(summary.ID, role, s.tokenTTL, "")
		if err != nil {
			return dto.LoginResponse{}, err
		}

		s.logger.Info().Uint("user_id", summary.ID).Str("role", role).Msg("login succeeded")
		return dto.LoginResponse{Token: token, User: summary}, nil
	}

	return dto.LoginResponse{}, ErrInvalidCredentials
}

func (s *authService) Resolve(ctx context.Context, role string, userID uint) (dto.UserSummary, error) {
	switch role {
	case models.RoleTeacher:
		teacher, err := s.teachers.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserSummary{}, ErrUserNotFound
			}
			return dto.UserSummary{}, err
		}
		return teacherSummary(teacher), nil
	default:
		student, err := s.students.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserSummary{}, ErrUserNotFound
			}
			return dto.UserSummary{}, err
		}
		return studentSummary(student), nil
	}
}

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot be used to probe which emails exist.
func (s *authService) ForgotPassword(ctx context.Context, payload dto.ForgotPasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	summary, _, err := s.lookupByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug().Str("email", payload.Email).Msg("reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.issueToken(summary.ID, summary.Role, s.resetTTL, resetTokenPurpose)
	if err != nil {
		return err
	}

	if err := s.sender.SendReset(ctx, summary.Email, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to deliver reset token")
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, payload dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	role, userID, purpose, err := s.parseToken(payload.Token)
	if err != nil || purpose != resetTokenPurpose {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	switch role {
	case models.RoleTeacher:
		teacher, err := s.teachers.GetByID(ctx, userID)
		if err != nil {
			return ErrUserNotFound
		}
		teacher.PasswordHash = string(hash)
		if err := s.teachers.Update(ctx, &teacher); err != nil {
			return err
		}
	default:
		student, err := s.students.GetByID(ctx, userID)
		if err != nil {
			return ErrUserNotFound
		}
		student.PasswordHash = string(hash)
		if err := s.students.Update(ctx, &student); err != nil {
			return err
		}
	}

	s.logger.Info().Uint("user_id", userID).Str("role", role).Msg("password reset completed")
	return nil
}

func (s *authService) lookup(ctx context.Context, role, email, code string) (dto.UserSummary, string, error) {
	switch role {
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByLogin(ctx, email, code)
		if err != nil {
			return dto.UserSummary{}, "", err
		}
		return teacherSummary(teacher), teacher.PasswordHash, nil
	default:
		student, err := s.students.FindByLogin(ctx, email, code)
		if err != nil {
			return dto.UserSummary{}, "", err
		}
		return studentSummary(student), student.PasswordHash, nil
	}
}

func (s *authService) lookupByEmail(ctx context.Context, email string) (dto.UserSummary, string, error) {
	summary, hash, err := s.lookup(ctx, models.RoleStudent, email, "")
	if err == nil {
		return summary, hash, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserSummary{}, "", err
	}
	return s.lookup(ctx, models.RoleTeacher, email, "")
}

func (s *authService) issueToken(userID uint, role string, ttl time.Duration, purpose string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if purpose != "" {
		claims["purpose"] = purpose
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) parseToken(tokenString string) (role string, userID uint, purpose string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", 0, "", ErrInvalidResetToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, "", ErrInvalidResetToken
	}

	subject, _ := claims["sub"].(string)
	parsed, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return "", 0, "", ErrInvalidResetToken
	}

	role, _ = claims["role"].(string)
	purpose, _ = claims["purpose"].(string)
	return role, uint(parsed), purpose, nil
}

// passwordMatches checks bcrypt first and falls back to a constant-time
// plaintext comparison for legacy rows that predate hashing.
func passwordMatches(stored, candidate string) bool {
	if stored == "" || candidate == "" {
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)); err == nil {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func teacherSummary(teacher models.Teacher) dto.UserSummary {
	return dto.UserSummary{
		ID:        teacher.ID,
		Role:      models.RoleTeacher,
		FirstName: teacher.FirstName,
		LastName:  teacher.LastName,
		Email:     teacher.Email,
		Code:      teacher.Code,
	}
}

func studentSummary(student models.Student) dto.UserSummary {
	return dto.UserSummary{
		ID:        student.ID,
		Role:      models.RoleStudent,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Email:     student.Email,
		Code:      student.Code,
	}
}
