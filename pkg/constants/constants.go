package constants

import "time"

const (
	// DefaultURL is the address of a HarperDB instance started with its default configuration.
	DefaultURL = "http://localhost:9925"
	// DefaultHTTPTimeout bounds every request made to the operations API.
	DefaultHTTPTimeout = 10 * time.Second
	// RequestIDLength is the size of the id attached to each request for log correlation.
	RequestIDLength = 16
	// TokenRefreshSkew is how long before expiry an operation token is refreshed.
	TokenRefreshSkew = 30 * time.Second
)

// System attributes maintained by HarperDB on every table and record.
const (
	CreatedTimeAttribute = "__createdtime__"
	UpdatedTimeAttribute = "__updatedtime__"
)

// UnknownErrorMessage is reported when an error response carries no usable message.
const UnknownErrorMessage = "An unknown error occurred"

// CSV load actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
)

// Environment variables read by FromEnv and the CLI.
const (
	EnvURL      = "HARPERDB_URL"
	EnvUsername = "HARPERDB_USERNAME"
	EnvPassword = "HARPERDB_PASSWORD"
	EnvTimeout  = "HARPERDB_TIMEOUT"
)

// IsSystemAttribute reports whether name is one of the timestamps HarperDB
// adds to every record.
func IsSystemAttribute(name string) bool {
	return name == CreatedTimeAttribute || name == UpdatedTimeAttribute
}
