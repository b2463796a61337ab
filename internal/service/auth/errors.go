package auth

import "errors"

// Token validation errors. The API layer maps all of them to 401.
var (
	// ErrInvalidToken indicates a malformed token or a bad signature.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token is past its expiry.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token's nbf/iat is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates the request carried no token.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates a refresh token was used as an access token
	// or the other way round.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token cannot be used.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token is past its expiry.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)
