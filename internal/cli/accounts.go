package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"github.com/valutatrade/valutahub/internal/services/users"
)

type registerCmd struct {
	app      *App
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new user account" }
func (*registerCmd) Usage() string {
	return `valutahub register --username NAME --password PASS

  Creates an account with an empty portfolio.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "account name")
	f.StringVar(&c.password, "password", "", "password, at least 4 characters")
}

func (c *registerCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		return failUsage("register requires --username and --password")
	}

	user, err := c.app.Users.Register(c.username, c.password)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			return fail(fmt.Errorf("username %q is already taken", c.username))
		}
		return fail(err)
	}

	fmt.Printf("user %q registered (id=%d), log in with: valutahub login --username %s --password ****\n",
		user.Username, user.ID, user.Username)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	app      *App
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in and remember the session" }
func (*loginCmd) Usage() string {
	return `valutahub login --username NAME --password PASS
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "account name")
	f.StringVar(&c.password, "password", "", "password")
}

func (c *loginCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		return failUsage("login requires --username and --password")
	}

	user, err := c.app.Users.Authenticate(c.username, c.password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			return fail(fmt.Errorf("user %q not found", c.username))
		case errors.Is(err, users.ErrWrongPassword):
			return fail(errors.New("wrong password"))
		default:
			return fail(err)
		}
	}

	if err := c.app.Session.Set(user.ID); err != nil {
		return fail(err)
	}

	fmt.Printf("logged in as %q\n", user.Username)
	return subcommands.ExitSuccess
}
