package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/railohail/timeline-rail/internal/client/client"
	"github.com/railohail/timeline-rail/internal/client/repositories/metadata"
	"github.com/railohail/timeline-rail/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register creates an account, stores the session and opens the first
// timeline.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Register(ctx, username, email, string(password))
	if err != nil {
		return err
	}
	return a.startSession(ctx, res)
}

// Login authenticates against the server and remembers the token in the
// local database.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.logger.Warn(ctx, "server unavailable", "url", a.config.ServerURL)
		}
		return err
	}
	return a.startSession(ctx, res)
}

func (a *App) startSession(ctx context.Context, res *client.AuthResult) error {
	s := metadata.Session{Token: res.Token, Username: res.User.Username, UserID: res.User.ID}
	if err := metadata.SaveSession(ctx, a.meta, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.session = s
	a.logger.Info(ctx, "logged in", "username", s.Username)

	a.store.Reset()
	if err := a.store.Initialize(ctx, a.userID()); err != nil {
		return err
	}
	printlnFn("Logged in as", s.Username)
	return nil
}

// Logout forgets the token and drops the open timeline.
func (a *App) Logout(ctx context.Context) error {
	if err := metadata.ClearSession(ctx, a.meta); err != nil {
		return err
	}
	a.api.SetToken("")
	a.session = metadata.Session{}
	a.store.Reset()
	printlnFn("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.remote() {
		printlnFn("local user")
		return nil
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s <%s> since %s", u.Username, u.Email, u.CreatedAt.Format("2006-01-02")))
	return nil
}
