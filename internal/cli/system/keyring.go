package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/keyring"
	"github.com/julianstephens/lifeos/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
	Clear  KeyringClearCmd  `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
}

type TokenCmd struct {
	Set   TokenSetCmd   `cmd:"" help:"Store the remote API token in the OS keyring."`
	Clear TokenClearCmd `cmd:"" help:"Remove the stored API token."`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string."`
}

func (cmd *KeyringSetCmd) Run(app *cli.Context) error {
	if !config.IsPostgresConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// the keyring is encrypted, so an embedded password is tolerated here
		app.Println(cli.WarnStyle.Render("⚠ Connection string contains embedded credentials."))
		app.Println("  It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return err
	}
	app.Println("✓ Connection string stored in OS keyring")
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(app *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring, use 'lifeos keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	app.Println(maskPassword(connStr))
	return nil
}

type KeyringClearCmd struct{}

func (cmd *KeyringClearCmd) Run(app *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	app.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(app *cli.Context) error {
	if !keyring.IsAvailable() {
		app.Println("✗ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	app.Println("✓ OS keyring is available")

	report := func(what string, err error) {
		switch {
		case err == nil:
			app.Printf("✓ %s is stored\n", what)
		case errors.Is(err, keyring.ErrNotFound):
			app.Printf("ℹ No %s stored\n", strings.ToLower(what))
		default:
			app.Printf("✗ %s: %v\n", what, err)
		}
	}
	_, err := keyring.GetConnectionString()
	report("Connection string", err)
	_, err = keyring.GetAPIToken()
	report("API token", err)
	return nil
}

type TokenSetCmd struct {
	Token string `arg:"" help:"Bearer token for the remote API."`
}

func (cmd *TokenSetCmd) Run(app *cli.Context) error {
	if err := keyring.SetAPIToken(strings.TrimSpace(cmd.Token)); err != nil {
		return err
	}
	app.Println("✓ API token stored in OS keyring")
	return nil
}

type TokenClearCmd struct{}

func (cmd *TokenClearCmd) Run(app *cli.Context) error {
	if err := keyring.DeleteAPIToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API token found in keyring")
		}
		return err
	}
	app.Println("✓ API token deleted from OS keyring")
	return nil
}

// maskPassword hides the password in a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	if !strings.Contains(connStr, "password=") {
		return connStr
	}
	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
