package auth

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/service"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// Service verifies Clerk session tokens. Clerk signs session JWTs with RS256;
// the instance public key comes from the Clerk dashboard as a PEM block.
type Service struct {
	publicKey         *rsa.PublicKey
	authorizedParties map[string]bool
	logger            *logger.Logger
}

// sessionClaims are the claims Clerk puts in a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

// NewService creates the auth service from a PEM-encoded RSA public key.
// authorizedParties, when non-empty, restricts the azp claim to the given
// origins.
func NewService(pemPublicKey string, authorizedParties []string, logger *logger.Logger) (service.AuthService, error) {
	if pemPublicKey == "" {
		return nil, fmt.Errorf("clerk public key is not configured")
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemPublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse clerk public key: %w", err)
	}

	parties := make(map[string]bool, len(authorizedParties))
	for _, p := range authorizedParties {
		parties[p] = true
	}

	return &Service{
		publicKey:         publicKey,
		authorizedParties: parties,
		logger:            logger,
	}, nil
}

// VerifySessionToken validates the token signature and claims and returns the
// caller's profile.
func (s *Service) VerifySessionToken(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.publicKey, nil
	})
	if err != nil {
		s.logger.WithError(err).Debug("Session token rejected")
		return nil, errors.NewAuthenticationError("Invalid or expired session token")
	}
	if !token.Valid {
		return nil, errors.NewAuthenticationError("Invalid session token")
	}

	if claims.Subject == "" {
		return nil, errors.NewAuthenticationError("Session token has no subject")
	}

	if len(s.authorizedParties) > 0 && !s.authorizedParties[claims.AuthorizedParty] {
		s.logger.WithField("azp", claims.AuthorizedParty).Warn("Session token from unauthorized party")
		return nil, errors.NewAuthenticationError("Session token not issued for this application")
	}

	return &domain.UserProfile{
		Sub:       claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		SessionID: claims.SessionID,
	}, nil
}
