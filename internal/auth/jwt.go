package auth

import (
	"fmt"
	"time"

	"alumni-portal/pkg/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims identify a user session. Role is informational: the subject is
// always rebuilt from the user directory so role changes apply immediately.
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry is the lifetime of issued tokens.
func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

// Issued is a signed session token together with its ID, which keys
// per-session state such as revocation and CSRF tokens.
type Issued struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

func (s *JWTService) Issue(userID uuid.UUID, email string, role rbac.Role) (Issued, error) {
	now := s.now()
	expires := now.Add(s.expiry)
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ID: claims.ID, ExpiresAt: expires}, nil
}

// Generate is Issue without the session metadata.
func (s *JWTService) Generate(userID uuid.UUID, email string, role rbac.Role) (string, error) {
	issued, err := s.Issue(userID, email, role)
	return issued.Token, err
}

func (s *JWTService) Verify(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf(msgTokenParseFailed, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf(msgInvalidTokenClaims)
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf(msgInvalidUserIDClaim)
	}

	return claims, nil
}
