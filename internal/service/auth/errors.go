// Package auth provides JWT token issuance/validation and password
// hashing for the API's authentication layer.
package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or otherwise fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's not-before time is
	// in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType is returned when an access token is presented
	// where a refresh token is required, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)
