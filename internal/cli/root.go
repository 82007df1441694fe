package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/coordinator"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/storage/httpapi"
	"github.com/julianstephens/lifeos/internal/storage/postgres"
	"github.com/julianstephens/lifeos/internal/storage/sqlite"
	"github.com/julianstephens/lifeos/internal/storage/sqlstore"
	"github.com/julianstephens/lifeos/internal/utils"
)

type Context struct {
	Config      config.Config
	Store       storage.Provider
	Coordinator *coordinator.Coordinator
	Out         io.Writer
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	DoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	WarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// OpenStore builds the provider selected by cfg.Backend. The store is not
// loaded.
func OpenStore(cfg config.Config) (storage.Provider, error) {
	switch cfg.Backend {
	case constants.BackendSQLite:
		return sqlite.NewStore(cfg.Database, sqlstore.WithUserID(cfg.UserID)), nil
	case constants.BackendPostgres:
		connStr := cfg.ConnString()
		if err := postgres.ValidateConnString(connStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded passwords are not allowed; "+
					"store the connection string with 'lifeos keyring set', export %s, or use .pgpass", constants.EnvDBConnection)
			}
			return nil, err
		}
		return postgres.New(connStr, sqlstore.WithUserID(cfg.UserID)), nil
	case constants.BackendHTTP:
		return httpapi.New(cfg.APIURL, cfg.Token())
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// ParseFrequency builds a habit frequency from the --days and --times flags.
// Neither flag means daily; both is an error.
func ParseFrequency(days string, times int) (models.Frequency, error) {
	switch {
	case days != "" && times != 0:
		return nil, errors.New("use either --days or --times, not both")
	case days != "":
		wds, err := utils.ParseWeekdays(days)
		if err != nil {
			return nil, err
		}
		return models.SpecificDays{Days: wds}, nil
	case times != 0:
		return models.TimesPerWeek{Times: times}, nil
	default:
		return models.Daily{}, nil
	}
}

// FormatFrequency renders a frequency for list output.
func FormatFrequency(f models.Frequency) string {
	switch fv := f.(type) {
	case nil, models.Daily:
		return "daily"
	case models.SpecificDays:
		return "on " + utils.FormatWeekdays(fv.Days)
	case models.TimesPerWeek:
		return fmt.Sprintf("%dx per week", fv.Times)
	default:
		return "unknown"
	}
}

var (
	ErrNoMatch   = errors.New("no match")
	ErrAmbiguous = errors.New("ambiguous reference")
)

// Resolve finds the item ref names: an exact id first, then a
// case-insensitive name, then a unique id prefix.
func Resolve[T any](items []T, ref string, id, name func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%w: empty reference", ErrNoMatch)
	}

	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}

	pick := func(match func(T) bool) (T, int) {
		var found T
		n := 0
		for _, it := range items {
			if match(it) {
				found = it
				n++
			}
		}
		return found, n
	}

	if it, n := pick(func(it T) bool { return strings.EqualFold(name(it), ref) }); n == 1 {
		return it, nil
	} else if n > 1 {
		return zero, fmt.Errorf("%w: %d items named %q, use an id", ErrAmbiguous, n, ref)
	}

	if it, n := pick(func(it T) bool { return strings.HasPrefix(id(it), ref) }); n == 1 {
		return it, nil
	} else if n > 1 {
		return zero, fmt.Errorf("%w: %d ids start with %q", ErrAmbiguous, n, ref)
	}
	return zero, fmt.Errorf("%w: %q", ErrNoMatch, ref)
}

// ShortID trims an id for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Confirm asks before a destructive action unless yes is set.
func Confirm(title string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

// ProgressBar draws percent as a fixed width bar.
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return DoneStyle.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", width-filled))
}
