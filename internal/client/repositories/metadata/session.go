package metadata

import "context"

// Session is what the CLI remembers between runs.
type Session struct {
	Token    string
	Username string
	UserID   string
}

// LoadSession reads the saved session. A zero Session means nobody is
// logged in.
func LoadSession(ctx context.Context, r Repository) (Session, error) {
	all, err := r.All(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:    all[KeyToken],
		Username: all[KeyUsername],
		UserID:   all[KeyUserID],
	}, nil
}

func SaveSession(ctx context.Context, r Repository, s Session) error {
	return r.SetMany(ctx, map[string]string{
		KeyToken:    s.Token,
		KeyUsername: s.Username,
		KeyUserID:   s.UserID,
	})
}

// ClearSession forgets the session keys and leaves other settings alone.
func ClearSession(ctx context.Context, r Repository) error {
	return r.Delete(ctx, KeyToken, KeyUsername, KeyUserID)
}
