package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenIssuer = "frontdesk-service"

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is what a verified session token says about the caller.
type Principal struct {
	SessionID string
	Role      Role
	ExpiresAt time.Time
}

// Gate rebuilds the role gate the token was issued from.
func (p *Principal) Gate() *Gate {
	return &Gate{role: p.Role}
}

type roleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens carrying the selected role.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the gate's current role.
func (t *Tokens) Issue(g *Gate) (string, time.Time, error) {
	if g.Role() == RoleNone {
		return "", time.Time{}, ErrNoRole
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := roleClaims{
		Role: string(g.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer and expiry and returns the principal.
func (t *Tokens) Verify(tokenString string) (*Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrNoToken
	}

	var claims roleClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(tokenIssuer, true) {
		return nil, ErrInvalidToken
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, ErrInvalidToken
	}

	p := &Principal{SessionID: claims.Subject, Role: role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
