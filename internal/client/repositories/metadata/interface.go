// Package metadata stores small key/value facts about the local session,
// such as the bearer token and the logged-in username.
package metadata

import "context"

const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyUserID   = "user_id"
)

// Repository is a string-keyed settings table. Get reports ok=false for a
// missing key. SetMany writes all pairs in one statement.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	All(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
