package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/cli/goals"
	"github.com/julianstephens/lifeos/internal/cli/habits"
	"github.com/julianstephens/lifeos/internal/cli/insights"
	"github.com/julianstephens/lifeos/internal/cli/learning"
	"github.com/julianstephens/lifeos/internal/cli/lists"
	"github.com/julianstephens/lifeos/internal/cli/projects"
	"github.com/julianstephens/lifeos/internal/cli/system"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/coordinator"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/notifier"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `name:"config-dir" help:"Directory holding .env, the SQLite database and logs." default:"${config_dir}"`
	Backend   string `help:"Storage backend: sqlite, postgres or http (default: inferred)." enum:",sqlite,postgres,http" default:""`
	Database  string `help:"SQLite path or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use the keyring, environment or .pgpass."`
	APIURL    string `name:"api-url" help:"Base URL of the remote dashboard API."`
	Timezone  string `help:"IANA timezone that decides which day is today."`
	Debug     bool   `help:"Verbose logging to stderr."`

	Init      system.InitCmd       `cmd:"" help:"Initialize lifeos storage."`
	Migrate   system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Backup    system.BackupCmd     `cmd:"" help:"Create, list and restore SQLite backups."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks on storage and data."`
	DebugCmd  system.DebugCmd      `cmd:"" name:"debug" help:"Debugging commands."`
	Habit     habits.HabitCmd      `cmd:"" help:"Manage habits and completions."`
	Goal      goals.GoalCmd        `cmd:"" help:"Manage goals."`
	Milestone goals.MilestoneCmd   `cmd:"" help:"Manage goal milestones."`
	Learn     learning.LearnCmd    `cmd:"" help:"Track books, courses and skills."`
	Bucket    lists.BucketCmd      `cmd:"" help:"Manage the bucket list."`
	Wish      lists.WishCmd        `cmd:"" help:"Manage the wishlist."`
	Project   projects.ProjectCmd  `cmd:"" help:"Track side projects and link them to goals."`
	Export    system.ExportCmd     `cmd:"" help:"Export every collection to one JSON file."`
	Insights  insights.InsightsCmd `cmd:"" help:"Show analytics for a range."`
	Watch     system.WatchCmd      `cmd:"" help:"Keep data fresh in the foreground and serve metrics."`
	Token     system.TokenCmd      `cmd:"" help:"Manage the remote API token."`
	Keyring   system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

// offline commands never touch the data store
var offline = map[string]bool{"token": true, "keyring": true}

func main() {
	kctx := kong.Parse(&CLI, parserOptions()...)

	if err := run(kctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.WarnStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Personal dashboard for habits, goals, learning and lists"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"config_dir":    constants.DefaultConfigDir,
			"default_color": constants.DefaultColor,
			"default_unit":  constants.DefaultUnitName,
		},
	}
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	cfg.ResolveBackend()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.Dir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("Starting", "command", kctx.Command(), "backend", cfg.Backend)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	app := &cli.Context{Config: cfg, Out: os.Stdout}
	command := strings.Fields(kctx.Command())[0]
	if offline[command] {
		return kctx.Run(app)
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// doctor reports load failures itself
	if command != "init" && command != "doctor" {
		if err := store.Load(); err != nil {
			return err
		}
	}

	// errors are printed by main, so the console only carries successes
	notes := notifier.Multi{
		notifier.Filter{Level: notifier.LevelInfo, Next: notifier.NewConsole(os.Stdout)},
		notifier.NewTray(),
	}
	coord := coordinator.New(store,
		coordinator.WithNotifier(notes),
		coordinator.WithLocation(loc),
		coordinator.WithUserID(cfg.UserID),
	)
	defer coord.Close()

	app.Store = store
	app.Coordinator = coord
	return kctx.Run(app)
}

func applyFlags(cfg *config.Config) {
	if CLI.Backend != "" {
		cfg.Backend = CLI.Backend
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.APIURL != "" {
		cfg.APIURL = CLI.APIURL
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}
}
