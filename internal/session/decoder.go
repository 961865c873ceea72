// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned by decoders when a token carries no expiry claim.
var ErrNoExpiry = errors.New("token has no expiry claim")

// ExpiryDecoder extracts the expiry instant from a bearer token.
type ExpiryDecoder interface {
	Expiry(token string) (time.Time, error)
}

// DecoderFunc adapts a plain function to ExpiryDecoder.
type DecoderFunc func(token string) (time.Time, error)

// Expiry calls f(token).
func (f DecoderFunc) Expiry(token string) (time.Time, error) {
	return f(token)
}

// TokenInfo is the subset of JWT claims shown to the signed-in user.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTDecoder reads claims from a JWT without verifying its signature.
// Signature checks belong to the backend; the client only needs to know
// when the token stops being accepted.
type JWTDecoder struct {
	parser *jwt.Parser
}

// NewJWTDecoder creates a decoder for compact-serialized JWTs.
func NewJWTDecoder() JWTDecoder {
	return JWTDecoder{parser: jwt.NewParser()}
}

// Expiry returns the exp claim of token.
func (d JWTDecoder) Expiry(token string) (time.Time, error) {
	info, err := d.Inspect(token)
	if err != nil {
		return time.Time{}, err
	}
	return info.ExpiresAt, nil
}

// Inspect returns the subject, issue and expiry claims of token.
func (d JWTDecoder) Inspect(token string) (TokenInfo, error) {
	parser := d.parser
	if parser == nil {
		parser = jwt.NewParser()
	}

	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return TokenInfo{}, ErrNoExpiry
	}

	info := TokenInfo{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info, nil
}
