// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth TokenProvider interface.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/mathlab/pkg/uuid"
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, expiry, wrong algorithm or malformed input.
var ErrInvalidToken = errors.New("sec: invalid token")

// AuthClaims represents the payload embedded inside a MathLab JWT.
//
// Access tokens carry the email so [middleware.Authenticate] can build the
// request identity without a database round trip. Refresh tokens carry the
// token id instead.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID  string `json:"uid"`
	Email   string `json:"email,omitempty"`
	TokenID string `json:"tid,omitempty"`
	Type    string `json:"typ"`
}

// IsAccess reports whether the claims belong to an access token.
func (claims *AuthClaims) IsAccess() bool {
	return claims.Type == TokenTypeAccess && claims.UserID != ""
}

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read private key from %s: %w", privateKeyPath, err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read public key from %s: %w", publicKeyPath, err)
	}

	return NewTokenServiceFromPEM(privateKeyData, publicKeyData, issuer, accessTTL, refreshTTL)
}

// NewTokenServiceFromPEM creates a TokenService from PEM-encoded keys.
func NewTokenServiceFromPEM(privatePEM, publicPEM []byte, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse private key: %w", err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// RefreshTTL is the lifetime of refresh tokens, shared with the session store.
func (service *TokenService) RefreshTTL() time.Duration {
	return service.refreshTTL
}

// GenerateAccessToken creates a new JWT access token for a user.
func (service *TokenService) GenerateAccessToken(userID, email string) (string, error) {
	return service.sign(AuthClaims{
		UserID: userID,
		Email:  email,
		Type:   TokenTypeAccess,
	}, service.accessTTL)
}

// GenerateRefreshToken creates a new JWT refresh token bound to tokenID.
func (service *TokenService) GenerateRefreshToken(userID, tokenID string) (string, error) {
	return service.sign(AuthClaims{
		UserID:  userID,
		TokenID: tokenID,
		Type:    TokenTypeRefresh,
	}, service.refreshTTL)
}

func (service *TokenService) sign(claims AuthClaims, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.New(),
		Subject:   claims.UserID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
// Every failure is reported as [ErrInvalidToken].
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return service.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
