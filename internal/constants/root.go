package constants

import "time"

const (
	AppName            = "lifeos"
	DefaultKeyringUser = "database-connection"
	APITokenKeyringKey = "api-token"
	DefaultConfigDir   = "~/.config/lifeos"
	DefaultDBFile      = "lifeos.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimelineLabelFormat is the short label used for goal timeline entries (e.g. "Jan 2")
	TimelineLabelFormat = "Jan 2"

	// Streak constants
	StreakSafetyLimit = 3650

	// CompletionRateWindowDays is the window used for a single habit's completion rate
	CompletionRateWindowDays = 30

	// AllRangeDays bounds the "all" analytics range
	AllRangeDays = 365

	// TempIDPrefix marks records synthesized locally before the server assigns an id
	TempIDPrefix = "temp-"

	// Notify constants
	NotifierLockfileName   = "lifeos-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.lifeos"
	TrayAppExecutable      = "lifeos-tray"

	// Remote defaults
	DefaultHTTPTimeout        = 15 * time.Second
	DefaultRevalidateInterval = 5 * time.Minute
	DefaultUserID             = "local"
	DefaultUnitName           = "units"
	DefaultTotalUnits         = 1
	DefaultHabitIcon          = "circle"
	DefaultColor              = "#6366f1"
)
