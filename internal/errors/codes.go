package errors

import "strings"

// Error codes. The numeric block encodes the category:
// 1xx configuration, 2xx filesystem I/O, 3xx network, 4xx index engine,
// 5xx internal.
const (
	ErrCodeConfigInvalid  = "ERR_101_CONFIG_INVALID"
	ErrCodePatternInvalid = "ERR_102_PATTERN_INVALID"

	ErrCodeFileRead   = "ERR_201_FILE_READ"
	ErrCodeWalkFailed = "ERR_202_WALK_FAILED"

	ErrCodeCloneFailed   = "ERR_301_CLONE_FAILED"
	ErrCodeListingFailed = "ERR_302_LISTING_FAILED"

	ErrCodeEngineIndex  = "ERR_401_ENGINE_INDEX"
	ErrCodeEngineSearch = "ERR_402_ENGINE_SEARCH"
	ErrCodeEngineClosed = "ERR_403_ENGINE_CLOSED"

	ErrCodeInternal  = "ERR_501_INTERNAL"
	ErrCodeTaskPanic = "ERR_502_TASK_PANIC"
)

// Category groups error codes for logging and retry decisions.
type Category string

const (
	CategoryConfig   Category = "Config"
	CategoryIO       Category = "IO"
	CategoryNetwork  Category = "Network"
	CategoryEngine   Category = "Engine"
	CategoryInternal Category = "Internal"
)

// categoryFromCode derives the category from the code's numeric block.
func categoryFromCode(code string) Category {
	switch {
	case strings.HasPrefix(code, "ERR_1"):
		return CategoryConfig
	case strings.HasPrefix(code, "ERR_2"):
		return CategoryIO
	case strings.HasPrefix(code, "ERR_3"):
		return CategoryNetwork
	case strings.HasPrefix(code, "ERR_4"):
		return CategoryEngine
	default:
		return CategoryInternal
	}
}

// isRetryableCode reports whether operations failing with this code may
// succeed on retry. Only network failures qualify.
func isRetryableCode(code string) bool {
	return categoryFromCode(code) == CategoryNetwork
}
