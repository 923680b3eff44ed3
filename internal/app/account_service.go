package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"studysync/internal/domain"
)

// DefaultOTPTTL is the verification window for signup codes.
const DefaultOTPTTL = 10 * time.Minute

// TokenIssuer signs API tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, role domain.Role) (string, error)
}

// AccountService owns signup (OTP-gated), login, and profile updates.
type AccountService struct {
	users  UserRepository
	otps   OTPStore
	email  EmailSender
	tokens TokenIssuer
	otpTTL time.Duration
	now    func() time.Time
	newID  func() string
}

func NewAccountService(users UserRepository, otps OTPStore, email EmailSender, tokens TokenIssuer, otpTTL time.Duration) *AccountService {
	if otpTTL <= 0 {
		otpTTL = DefaultOTPTTL
	}
	return &AccountService{
		users:  users,
		otps:   otps,
		email:  email,
		tokens: tokens,
		otpTTL: otpTTL,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// AuthenticatedUser pairs a user with a freshly issued token.
type AuthenticatedUser struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// SendSignupOTP issues a fresh 6-digit code for the email and dispatches it.
// Re-issuing upserts, so the previous code stops working immediately. A send
// failure aborts issuance; a live code nobody received would only burn part
// of the guessing window for the legitimate user.
func (s *AccountService) SendSignupOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Validationf("email", "must not be empty")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Verified:
		return domain.ErrEmailTaken
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return err
	}

	return s.issueOTP(ctx, email)
}

// VerifySignupOTP checks a code without consuming it. The record is consumed
// at registration, which re-validates; this call exists so the signup form
// can gate the password step on a correct code.
func (s *AccountService) VerifySignupOTP(ctx context.Context, email, code string) error {
	return s.checkOTP(ctx, normalizeEmail(email), code)
}

// ResendOTP re-issues the code for an address that has not finished signup.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Validationf("email", "must not be empty")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Verified:
		return domain.ErrAlreadyVerified
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return err
	}

	return s.issueOTP(ctx, email)
}

// Register creates a verified student account after re-validating the OTP,
// then consumes the code so it cannot be replayed.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (AuthenticatedUser, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateRegister(in); err != nil {
		return AuthenticatedUser{}, err
	}

	if err := s.checkOTP(ctx, in.Email, in.OTP); err != nil {
		return AuthenticatedUser{}, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return AuthenticatedUser{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return AuthenticatedUser{}, err
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return AuthenticatedUser{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return AuthenticatedUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		Badges:       []string{},
		Verified:     true,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthenticatedUser{}, err
	}

	// Consume the code. Best-effort: the account already exists, and the TTL
	// reaps a leftover record anyway.
	_ = s.otps.Delete(ctx, in.Email)

	return s.withToken(user)
}

// Login authenticates by email and password.
func (s *AccountService) Login(ctx context.Context, email, password string) (AuthenticatedUser, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return AuthenticatedUser{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return AuthenticatedUser{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthenticatedUser{}, domain.ErrInvalidCredentials
	}
	return s.withToken(user)
}

// GetUser loads an account by ID.
func (s *AccountService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ProfileUpdate carries optional profile fields; nil means keep current.
type ProfileUpdate struct {
	Name     *string  `json:"name,omitempty"`
	Grade    *string  `json:"grade,omitempty"`
	Board    *string  `json:"board,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// UpdateProfile applies a partial profile update and returns the new state.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Grade != nil {
		user.Grade = *update.Grade
	}
	if update.Board != nil {
		user.Board = *update.Board
	}
	if update.Subjects != nil {
		user.Subjects = update.Subjects
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *AccountService) issueOTP(ctx context.Context, email string) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otps.Put(ctx, email, code, s.otpTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	subject := "StudySync - Signup Verification"
	body := fmt.Sprintf("Your verification code is: %s\nIt expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.email.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func (s *AccountService) checkOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return domain.ErrOTPInvalidOrExpired
	}
	stored, err := s.otps.Get(ctx, email)
	if errors.Is(err, domain.ErrOTPInvalidOrExpired) {
		return domain.ErrOTPInvalidOrExpired
	}
	if err != nil {
		return err
	}
	if stored != code {
		return domain.ErrOTPInvalidOrExpired
	}
	return nil
}

func (s *AccountService) withToken(user domain.User) (AuthenticatedUser, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthenticatedUser{User: user, Token: token}, nil
}

// generateOTP draws a uniform 6-digit code from crypto/rand. The code is a
// short-lived credential, so the guessable math/rand stream is not enough.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func validateRegister(in RegisterInput) error {
	if in.Name == "" {
		return domain.Validationf("name", "must not be empty")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return domain.Validationf("email", "must be a valid address")
	}
	if in.Username == "" {
		return domain.Validationf("username", "must not be empty")
	}
	if len(in.Password) < 8 {
		return domain.Validationf("password", "must be at least 8 characters")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
