// Package admin implements the operator tool: loading credential exports
// into the database and submitting account-change requests through the
// server's administrative API.
package admin

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/minauth/internal/admin/cli"
	"github.com/dmitrijs2005/minauth/internal/common"
	"github.com/dmitrijs2005/minauth/internal/logging"
	"github.com/dmitrijs2005/minauth/internal/server/cache"
	"github.com/dmitrijs2005/minauth/internal/server/config"
	"github.com/dmitrijs2005/minauth/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const usage = `usage:
  load <export.json>                       import credentials
  create-user <username> <email> <keyfile> request a new user account
  change-pubkey <user-id> <keyfile>        request a public key change
  renew-password <user-id>                 request a password renewal
`

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, logger logging.Logger) *App {
	return &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run executes one subcommand given as positional arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("missing command")
	}

	switch cmd := args[0]; cmd {
	case "load":
		if len(args) != 2 {
			return fmt.Errorf("usage: load <export.json>")
		}
		return a.runLoad(ctx, args[1])
	case "create-user":
		if len(args) != 4 {
			return fmt.Errorf("usage: create-user <username> <email> <keyfile>")
		}
		pubkey, err := os.ReadFile(args[3])
		if err != nil {
			return fmt.Errorf("read key file: %w", err)
		}
		return a.runSubmit(ctx, models.CreateUserPayload{
			Username: args[1], Email: args[2], PubKey: pubkey,
		})
	case "change-pubkey":
		if len(args) != 3 {
			return fmt.Errorf("usage: change-pubkey <user-id> <keyfile>")
		}
		pubkey, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("read key file: %w", err)
		}
		return a.runSubmit(ctx, models.ChangePubkeyPayload{
			UserID: args[1], PubKey: pubkey,
		})
	case "renew-password":
		if len(args) != 2 {
			return fmt.Errorf("usage: renew-password <user-id>")
		}
		return a.runSubmit(ctx, models.RenewPasswordPayload{UserID: args[1]})
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) runLoad(ctx context.Context, path string) error {
	db, err := sql.Open("pgx", a.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	var credCache cache.Cache
	if a.config.RedisAddr != "" {
		credCache = cache.NewRedisCache(a.config.RedisAddr)
	} else {
		credCache = cache.NewMemoryCache()
	}

	count, err := NewLoader(db, credCache, a.logger).LoadFile(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "loaded %d credentials\n", count)
	return nil
}

func (a *App) runSubmit(ctx context.Context, payload models.Payload) error {
	operator, err := cli.GetSimpleText(a.reader, "Operator id", a.out)
	if err != nil {
		return err
	}

	password, err := cli.GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	client := NewClient(a.config.ServerURL)
	if err := client.Login(ctx, operator, password); err != nil {
		return err
	}

	id, err := client.Submit(ctx, payload)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "request %s accepted\n", id)
	return nil
}
