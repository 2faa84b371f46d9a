// Package common contains shared constants and sentinel errors used across
// linkkeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token as a
// Bearer credential.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RefreshTokenCookieName is the HTTP-only cookie holding the refresh token.
const RefreshTokenCookieName = "refreshToken"
