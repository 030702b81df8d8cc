package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"custodia/internal/platform/middleware"
	dErrors "custodia/pkg/domainerrors"
)

// Claims represents the JWT claims for access tokens issued to controllers
// and data subjects. Exactly one of ControllerID/SubjectID is set.
type Claims struct {
	ControllerID string `json:"controller_id,omitempty"`
	SubjectID    string `json:"subject_id,omitempty"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateControllerToken issues a token a data controller presents when
// submitting access requests.
func (s *Service) GenerateControllerToken(controllerID string, expiresIn time.Duration) (string, error) {
	return s.sign(Claims{
		ControllerID:     controllerID,
		RegisteredClaims: s.registered(expiresIn),
	})
}

// GenerateSubjectToken issues a token a data subject presents when managing
// policy groups.
func (s *Service) GenerateSubjectToken(subjectID string, expiresIn time.Duration) (string, error) {
	return s.sign(Claims{
		SubjectID:        subjectID,
		RegisteredClaims: s.registered(expiresIn),
	})
}

func (s *Service) registered(expiresIn time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    s.issuer,
		Audience:  []string{s.audience},
		ID:        uuid.NewString(),
	}
}

func (s *Service) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// ValidateToken parses and validates a token, returning the claims the auth
// middleware propagates.
func (s *Service) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &middleware.TokenClaims{
		ControllerID: claims.ControllerID,
		SubjectID:    claims.SubjectID,
	}, nil
}
