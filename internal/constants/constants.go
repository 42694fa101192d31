package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// ESI endpoint defaults.
const (
	// DefaultBaseURL is the public ESI endpoint, pinned to the "latest" route version.
	DefaultBaseURL = "https://esi.evetech.net/latest"

	// DefaultDataSource is the production server tag.
	DefaultDataSource = "tranquility"

	// DataSourceSingularity is the test server tag.
	DataSourceSingularity = "singularity"

	// DefaultLanguage is the language requested when none is configured.
	DefaultLanguage = "en"

	// DefaultUserAgent is sent when the caller does not configure one.
	// ESI asks every client to identify itself.
	DefaultUserAgent = "esi-client-go/dev (+https://github.com/fivetwenty-io/esi-client)"
)

// EVE SSO endpoints.
const (
	// DefaultSSOTokenURL is the OAuth2 token endpoint of EVE SSO v2.
	DefaultSSOTokenURL = "https://login.eveonline.com/v2/oauth/token"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the number of transport retries when none are configured.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between opt-in retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Cache lifetimes.
const (
	// DefaultCacheTTL applies when a response carries no expiry metadata.
	DefaultCacheTTL = 60 * time.Second

	// DefaultErrorTTL is how long a failed request is held in the negative cache.
	DefaultErrorTTL = 5 * time.Second

	// DefaultCleanupInterval is the period of the expired-entry janitor.
	DefaultCleanupInterval = 1 * time.Minute

	// DefaultStoreSize caps the number of records in a memory store.
	DefaultStoreSize = 1000
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the number of consecutive failures before opening.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long the breaker stays open.
	CircuitBreakerTimeout = 30 * time.Second

	// CircuitBreakerInterval clears failure counts while closed.
	CircuitBreakerInterval = 60 * time.Second
)

// HTTP status codes ESI uses outside the usual set.
const (
	// HTTPStatusErrorLimited is returned once the per-IP error budget is spent.
	HTTPStatusErrorLimited = 420
)

// ESI headers.
const (
	// HeaderPages carries the page count of paginated routes.
	HeaderPages = "X-Pages"

	// HeaderErrorLimitRemain is the remaining error budget.
	HeaderErrorLimitRemain = "X-Esi-Error-Limit-Remain"

	// HeaderErrorLimitReset is the number of seconds until the error budget resets.
	HeaderErrorLimitReset = "X-Esi-Error-Limit-Reset"

	// ErrorLimitWarnThreshold is the remaining error budget below which the agent warns.
	ErrorLimitWarnThreshold = 20
)

// Query parameter names added to every request.
const (
	// QueryDataSource selects the server.
	QueryDataSource = "datasource"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Mathematical and calculation constants.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)
