package integration

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signedToken builds an HS256 token the way the registry does, with the
// given secret and claims.
func signedToken(secret string, claims jwt.RegisteredClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *StepsContext) sendWithToken(method, path, token string) error {
	req, err := http.NewRequest(method, s.server.ServerURL+s.expand(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return s.do(req)
}

func (s *StepsContext) iSendWithForeignToken(method, path string) error {
	now := time.Now()
	token, err := signedToken("not-the-registry-secret", jwt.RegisteredClaims{
		Subject:   s.login,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if err != nil {
		return err
	}
	return s.sendWithToken(method, path, token)
}

func (s *StepsContext) iSendWithExpiredToken(method, path string) error {
	now := time.Now()
	token, err := signedToken(testSecret, jwt.RegisteredClaims{
		Subject:   s.login,
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
	if err != nil {
		return err
	}
	return s.sendWithToken(method, path, token)
}

func (s *StepsContext) iSendWithTokenFor(method, path, subject string) error {
	now := time.Now()
	token, err := signedToken(testSecret, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if err != nil {
		return err
	}
	return s.sendWithToken(method, path, token)
}
