// Package client is the HTTP transport the CLI and the remote storage
// backend use to talk to the timeline-rail REST API.
//
// # Error Handling
//
// A request that never reaches the server fails with ErrUnavailable. Any
// non-2xx response becomes an *APIError carrying the server's "error" text,
// or "HTTP <status>" when the body has none. A 401 also matches
// ErrUnauthorized and a 404 matches ErrNotFound under errors.Is.
//
// The bearer token is held by the APIClient and attached to every request
// once set; APIClient is safe for concurrent use.
package client
