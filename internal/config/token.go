package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired means the token is valid, but expired.
var ErrTokenExpired = errors.New("token expired")

const tokenIssuer = "courtside"

// IssueToken returns a signed bearer token identifying the given player, valid
// for the given duration. Production tokens come from the identity provider,
// this is used by the `!dev token` command and tests.
func (c *Config) IssueToken(subject string, d time.Duration) (string, error) {
	key, err := c.signingKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
	})

	return token.SignedString(key)
}

// ParseToken checks the signature of a bearer token and returns its subject.
func (c *Config) ParseToken(str string) (string, error) {
	key, err := c.signingKey()
	if err != nil {
		return "", err
	}

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(
		str, &claims,
		func(*jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Only report expiration on a token we signed.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" {
		return "", errors.New("invalid token: missing subject")
	}

	return claims.Subject, nil
}

func (c *Config) signingKey() ([]byte, error) {
	if len(c.JWTSecret) < 32 {
		return nil, errors.New("JWT secret must be ≥ 32 chars")
	}

	return []byte(c.JWTSecret), nil
}
