// Package admintool backs the resetadmin command: it reads the bootstrap
// admin credentials and applies them to storage.
package admintool

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/cryptox"
	"github.com/dmitrijs2005/linkkeeper/internal/flagx"
	"github.com/dmitrijs2005/linkkeeper/internal/server"
	"github.com/dmitrijs2005/linkkeeper/internal/server/config"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type Credentials struct {
	Username string
	Email    string
	Password string
}

// ParseCredentials reads -username, -email and -password from args, falling
// back to the admin values in cfg. Flags owned by the server config are ignored.
func ParseCredentials(args []string, cfg *config.Config) (Credentials, error) {
	c := Credentials{Username: cfg.AdminUsername, Email: cfg.AdminEmail, Password: cfg.AdminPassword}

	fs := flag.NewFlagSet("resetadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.Username, "username", c.Username, "admin username")
	fs.StringVar(&c.Email, "email", c.Email, "admin e-mail")
	fs.StringVar(&c.Password, "password", c.Password, "admin password (prompted when empty)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-username", "-email", "-password"})); err != nil {
		return Credentials{}, err
	}

	if strings.TrimSpace(c.Username) == "" {
		c.Username = "admin"
	}
	if strings.TrimSpace(c.Email) == "" {
		c.Email = c.Username + "@localhost.localdomain"
	}
	return c, nil
}

// PromptPassword asks twice for a password on the terminal behind fd.
func PromptPassword(w io.Writer, fd int) (string, error) {
	fmt.Fprint(w, "New admin password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// Reset creates the admin account or resets its password and role.
func Reset(ctx context.Context, cfg *config.Config, c Credentials) (*models.PublicUser, bool, error) {
	repos, err := server.OpenRepositories(ctx, cfg)
	if err != nil {
		return nil, false, err
	}
	defer repos.Close()

	tokens, err := server.NewTokenManager(cfg)
	if err != nil {
		return nil, false, err
	}

	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, false, err
	}

	us := services.NewUserService(repos, tokens, cryptox.NewHasher(cryptox.DefaultParams()), services.WithLogger(logger))
	return us.EnsureAdmin(ctx, c.Username, c.Email, c.Password)
}

// Run is the resetadmin entry point. It returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	creds, err := ParseCredentials(args, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if creds.Password == "" {
		creds.Password, err = PromptPassword(stdout, int(os.Stdin.Fd()))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	u, created, err := Reset(ctx, cfg, creds)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if created {
		fmt.Fprintf(stdout, "admin %q created\n", u.Username)
	} else {
		fmt.Fprintf(stdout, "admin %q password and role reset\n", u.Username)
	}
	return 0
}
