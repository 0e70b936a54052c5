package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the session cookie. The session ID travels as the
// registered subject; everything else about the user stays server-side.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies session cookie tokens with HS256.
type Issuer struct {
	Key  string
	Name string
	TTL  time.Duration
	now  func() time.Time
}

// NewIssuer builds an Issuer for the given key, issuer name and lifetime.
func NewIssuer(key, name string, ttl time.Duration) *Issuer {
	return &Issuer{Key: key, Name: name, TTL: ttl, now: time.Now}
}

// Issue signs a token naming sessionID.
func (i *Issuer) Issue(sessionID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Name,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.Key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns the session ID it names.
func (i *Issuer) Parse(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(i.Key), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if i.Name != "" && claims.Issuer != i.Name {
		return "", errors.New("issuer mismatch")
	}
	if claims.Subject == "" {
		return "", errors.New("missing session id")
	}
	return claims.Subject, nil
}
