package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Schedule/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Schedule"
	CommandName       = "schedule"
	AppID             = "com.github.lcastiglione.go-schedule"
	KeyringService    = "com.github.lcastiglione.go-schedule"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DBFileName        = "holidays.db"
	SettingsFileName  = "settings.toml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig    = "config"
	FlagDebug     = "debug"
	FlagLang      = "lang"
	FlagTZ        = "tz"
	FlagKeep      = "keep"
	FlagFormat    = "format"
	FlagYears     = "years"
	FlagMonths    = "months"
	FlagDays      = "days"
	FlagRepeat    = "repeat"
	FlagNumber    = "number"
	FlagName      = "name"
	FlagUser      = "user"
	FlagPort      = "port"
	FlagHolidays  = "holidays"
	FlagCron      = "cron"
	FlagDescCfg   = "Path to a settings file (.toml, .yaml or .yml)"
	FlagDescDebug = "Enable debug logging to stderr"
	FlagDescLang  = "Language for messages (en, es)"
	FlagDescTZ    = "IANA time zone (empty for host local time)"
	FlagDescKeep  = "Return the input date when it is already a business day"
	FlagDescFmt   = "Go time layout used for output"
	FlagDescHol   = "Comma separated holidays (YYYY-MM-DD) to exclude"
	FlagDescYears = "Years to add (may be negative)"
	FlagDescMons  = "Months to add (may be negative)"
	FlagDescDays  = "Days to add (may be negative)"
	FlagDescRep   = "Number of trials"
	FlagDescNum   = "Calls per trial"
	FlagDescName  = "Holiday name"
	FlagDescUser  = "Feed username (defaults to the settings file)"
	FlagDescPort  = "HTTP port (overrides the settings file)"
	FlagDescCron  = "Five-field cron expression or descriptor such as @daily"

	MsgPasswordPrompt = "Password: "
	MsgErrorOutput    = "%s: %v\n"
	MsgVersionOutput  = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Date & Time Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultTimeZone is the zone used by schedule.Today when no zone is given.
	DefaultTimeZone = "America/Argentina/Buenos_Aires"

	// DateLayoutISO is the civil date layout used for holidays and CLI input.
	DateLayoutISO = "2006-01-02"

	// DateLayoutAdjust is the layout accepted and produced by AdjustDate.
	DateLayoutAdjust = "2006-01-02T15:04:05"

	// DateLayoutRandom is the layout produced by the random date fixtures.
	DateLayoutRandom = "2006-01-02T15:04:05"

	// DateLayoutRandomFrac is DateLayoutRandom with microseconds.
	DateLayoutRandomFrac = "2006-01-02T15:04:05.000000"

	// MillisPerDay bounds the random time-of-day fixture.
	MillisPerDay = 86400000

	// RandomDaysBack is the widest offset used by the random date fixtures.
	RandomDaysBack = 365

	// MaxCronFirings bounds the business-day search over cron firings.
	MaxCronFirings = 366

	// MaxBusinessDaySteps bounds prev/next business day walks (ten years of days).
	MaxBusinessDaySteps = 3660

	DefaultMeasureRepeat = 1
	DefaultMeasureNumber = 1
)

// DateLayouts lists the layouts tried, in order, when parsing free-form dates.
var DateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05",
}

// SupportedLanguages defines the list of available message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "es"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMeasureReport  = "measure_report"   // Requires Name, Average, Repeat, Number
	TKeyBusinessYes    = "business_day_yes" // Requires Date
	TKeyBusinessNo     = "business_day_no"  // Requires Date
	TKeyHolidayAdded   = "holiday_added"    // Requires Date, Name
	TKeyHolidayRemoved = "holiday_removed"  // Requires Date
	TKeyHolidaysNone   = "holidays_none"
	TKeyHolidaysImport = "holidays_imported" // Requires Count
	TKeyLoginSaved     = "login_saved"       // Requires User
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeNone    = ""
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18081"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	DisabledInterval  = 0
	UIDSalt           = "go-schedule-v1-" // Salt for deterministic UID generation

	HolidaySourceManual = "manual"
	HolidaySourceFeed   = "feed"
	HolidaySourceConfig = "config"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Schedule//Calendar//EN"
	ICalCalName = "Business Days"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "goschedule"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"
	PropCategories = "CATEGORIES"

	CategoryHoliday = "HOLIDAY"

	SummaryHoliday = "Holiday: %s"
	FallbackName   = "Holiday"

	DefaultICalRefresh = 1 * time.Hour

	// FeedHorizonDays is how far past today the rendered feed extends.
	FeedHorizonDays = 366
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	MinPort = 1
	MaxPort = 65535

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"

	ExtICS  = ".ics"
	ExtTOML = ".toml"
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteToday          = "/today"
	RouteMetrics        = "/metrics"
	AddrSeparator       = ":"

	// WatcherRenameDelay lets editors that replace files finish the rename.
	WatcherRenameDelay = 50 * time.Millisecond
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	MimeHTML            = "text/html"
	AcceptCalendar      = "text/calendar, text/plain;q=0.9, */*;q=0.1"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrICalParse        = "failed to parse iCalendar stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrClockUnavailable = "clock unavailable"
	ErrUnknownZone      = "unknown time zone"
	ErrNoOccurrence     = "no business day occurrence found"
	ErrCronParse        = "invalid cron expression"
	ErrRuleParse        = "invalid holiday rule"
	ErrSettingsRead     = "failed to read settings file"
	ErrSettingsDecode   = "failed to decode settings file"
	ErrSettingsFormat   = "unsupported settings file extension"
	ErrSettingsInvalid  = "invalid settings"
	ErrWatcherStart     = "failed to start settings watcher"
	ErrStoreOpen        = "failed to open holiday store"
	ErrStoreMigrate     = "failed to migrate holiday store"
	ErrHolidayNotFound  = "holiday not found"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrCredentials      = "failed to store credentials"
	ErrArgs             = "invalid arguments"
	ErrNoFeedSource     = "no holiday feed configured"
	ErrCommandMissing   = "a command to time is required after --"
	ErrUserMissing      = "a feed username is required"
	ErrNotCalendar      = "feed is not an iCalendar document"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	FallbackMeasureReport = "Function `%s` ran in an average of %s over %d trials with %d calls per trial"
	FallbackBusinessYes   = "%s is a business day"
	FallbackBusinessNo    = "%s is not a business day"
	FallbackHolidayAdded  = "Holiday %s added on %s"
	FallbackHolidayRemove = "Holiday on %s removed"
	FallbackHolidaysNone  = "No holidays stored"
	FallbackLoginSaved    = "Credentials for %s saved to the system keyring"

	MsgSyncStarted   = "Synchronization started..."
	MsgSyncFailed    = "Synchronization failed. Check logs."
	MsgSyncReq       = "Sync requested"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgUpdateSync    = "Updating sync interval"
	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgSkippedEvent  = "Skipping malformed event"
	MsgSkippedRule   = "Skipping invalid holiday rule"
	MsgGenSuccess    = "Calendar generation successful"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgClockBackward = "Wall clock moved backwards, holding last observed time"
	MsgSettingsLoad  = "Settings loaded"
	MsgSettingsWatch = "Settings watcher started"
	MsgSettingsChg   = "Settings file changed"
	MsgSettingsStop  = "Settings watcher stopped"
	MsgSettingsErr   = "Settings watcher received error event"
	MsgStoreOpened   = "Holiday store opened"
	MsgMeasureDone   = "Measurement finished"
	MsgFeedCached    = "Holiday feed not modified, using cached copy"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_events"
	LogKeyFound     = "holidays_found"
	LogKeyDays      = "business_days"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyZone      = "zone"
	LogKeyLast      = "last"
	LogKeyNow       = "now"
	LogKeyPath      = "path"
	LogKeyEvent     = "event"
	LogKeyDuration  = "duration_ms"
	LogKeyAverage   = "average"
	LogKeyRepeat    = "repeat"
	LogKeyNumber    = "number"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompSchedule = "schedule"
	CompFeed     = "feed"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompSettings = "settings"
	CompStore    = "store"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace   = "schedule"
	MetricRequests     = "feed_requests_total"
	MetricRequestsHelp = "Number of calendar feed requests by HTTP status code."
	MetricSyncs        = "feed_syncs_total"
	MetricSyncsHelp    = "Number of feed synchronizations by result."
	MetricHolidays     = "holidays"
	MetricHolidaysHelp = "Number of holidays in the active calendar."
	MetricLabelCode    = "code"
	MetricLabelResult  = "result"
	ResultOK           = "ok"
	ResultError        = "error"
)
