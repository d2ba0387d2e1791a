package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims of a session token. Subject is the user
// ID and ID is the session ID.
type Claims struct {
	AuthType AuthType `json:"auth_type,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(u *userRecord, sess *Session) (string, error) {
	claims := &Claims{
		AuthType: u.AuthType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// ParseToken verifies the signature and expiry of a token and
// returns its claims. It does not check that the session still exists.
func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("token is missing subject or session")
	}
	return claims, nil
}

func (s *Service) expiry(from time.Time) time.Time {
	return from.Add(s.tokenTTL)
}
