// Package common contains shared constants and sentinel errors used across
// timeline-rail components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token on
// authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// DefaultImageMimeType is assumed when an image payload carries no type.
const DefaultImageMimeType = "image/jpeg"
