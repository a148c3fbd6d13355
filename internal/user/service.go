package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength    = 254
	minEmailLength    = 3
	maxLoginLength    = 30
	minLoginLength    = 3
	minPasswordLength = 8
	bcryptCost        = 12
)

var (
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrEmailLength        = fmt.Errorf("email address must be between %d and %d characters", minEmailLength, maxEmailLength)
	ErrLoginLength        = fmt.Errorf("login must be between %d and %d characters", minLoginLength, maxLoginLength)
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInternalError      = errors.New("internal Server Error")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Service interface {
	Register(email, login, password string) (*User, error)
	GetUserByID(userID string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	VerifyPassword(user *User, password string) bool
}

type service struct {
	repo Repository
}

func NewUserService(repo Repository) Service {
	return &service{repo: repo}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	if len(email) > maxEmailLength || len(email) < minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(email, login, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if login == "" {
		// default the display login to the mailbox part of the address
		login = strings.SplitN(email, "@", 2)[0]
		if len(login) > maxLoginLength {
			login = login[:maxLoginLength]
		}
	} else if len(login) > maxLoginLength || len(login) < minLoginLength {
		return nil, ErrLoginLength
	}

	existing, err := s.repo.getUserByEmail(email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, ErrInternalError
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, ErrInternalError
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
	}
	if err := s.repo.createUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetUserByID(userID string) (*User, error) {
	return s.repo.getUserByID(userID)
}

func (s *service) GetUserByEmail(email string) (*User, error) {
	return s.repo.getUserByEmail(strings.ToLower(strings.TrimSpace(email)))
}

func (s *service) VerifyPassword(user *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
