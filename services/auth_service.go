package services

import (
	"game-lab/auth"
	"game-lab/domain"
)

type IAuthService interface {
	LoginAnonymous() (Token, domain.User, error)
	Authenticate(token string) (domain.User, error)
}

type AuthService struct {
	issuer *auth.TokenIssuer
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(issuer *auth.TokenIssuer) IAuthService {
	return &AuthService{issuer: issuer}
}

// LoginAnonymous mints a guest identity and its session token.
func (s *AuthService) LoginAnonymous() (Token, domain.User, error) {
	user := auth.NewAnonymousUser()
	token, err := s.issuer.GenerateToken(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return Token(token), user, nil
}

func (s *AuthService) Authenticate(token string) (domain.User, error) {
	return s.issuer.ValidateToken(token)
}
