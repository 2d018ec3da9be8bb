// Package adminctl implements the operator bootstrap tool: it creates the
// first administrator account directly in the database, so the console can
// be logged into before any users exist.
package adminctl

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/server/auth"
	"github.com/dmitrijs2005/poseidon/internal/server/config"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/poseidon/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type App struct {
	users  *services.UserService
	closer io.Closer
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	return &App{
		users:  services.NewUserService(db, rm, hasher),
		closer: db,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprintln(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Run prompts for the administrator's details and creates the account.
// The password is asked for twice and never echoed.
func (a *App) Run(ctx context.Context) error {
	defer a.closer.Close()

	username, err := a.readLine("Enter username")
	if err != nil {
		return err
	}
	fullName, err := a.readLine("Enter full name")
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Enter password")
	password, err := readPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fmt.Fprintln(a.out, "Repeat password")
	confirmation, err := readPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if string(password) != string(confirmation) {
		return errors.New("passwords do not match")
	}

	user, err := a.users.Create(ctx, username, string(password), fullName, models.RoleAdmin)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			for field, reasons := range verr.Fields {
				for _, reason := range reasons {
					fmt.Fprintf(a.out, "%s: %s\n", field, reason)
				}
			}
			return common.ErrValidation
		}
		return err
	}

	fmt.Fprintf(a.out, "Administrator %q created (id %d)\n", user.Username, user.ID)
	return nil
}
