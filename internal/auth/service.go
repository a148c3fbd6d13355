package auth

import (
	"errors"
	"net/http"

	"github.com/pklimczu/FinTrack/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternalError      = errors.New("internal Server Error")
)

type Service interface {
	Login(email, password string) (*user.User, string, error)
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	userService user.Service
	jwtManager  JWTManagerInterface
}

func NewAuthService(userService user.Service, jwtManager JWTManagerInterface) Service {
	return &service{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// Login verifies credentials and issues an access token. An unknown email and
// a wrong password return the same error so responses do not reveal whether
// an account exists.
func (s *service) Login(email, password string) (*user.User, string, error) {
	existingUser, err := s.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", ErrInternalError
	}
	if !s.userService.VerifyPassword(existingUser, password) {
		return nil, "", ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, defaultJWTDuration)
	if err != nil {
		return nil, "", ErrInternalError
	}
	return existingUser, accessToken, nil
}
