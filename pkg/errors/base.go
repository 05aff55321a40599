package errors

import "net/http"

// ============================================================================
// Common errors (Service: 00)
// ============================================================================

var (
	// OK represents a successful operation.
	OK = Register(&Errno{
		Code:    0,
		HTTP:    http.StatusOK,
		Message: "Success",
	})

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:    http.StatusBadRequest,
		Message: "Bad request",
	})

	// ErrInvalidParam indicates an invalid parameter.
	ErrInvalidParam = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryRequest, 1),
		HTTP:    http.StatusBadRequest,
		Message: "Invalid parameter",
	})

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:    http.StatusInternalServerError,
		Message: "Internal server error",
	})

	// ErrDatabase indicates a database operation failure.
	ErrDatabase = Register(&Errno{
		Code:    MakeCode(ServiceCommon, CategoryDatabase, 0),
		HTTP:    http.StatusInternalServerError,
		Message: "Database error",
	})
)

// ============================================================================
// Bot ingestion errors (Service: 20)
// ============================================================================

var (
	// ErrBotNotFound indicates the bot identifier is unknown.
	ErrBotNotFound = Register(&Errno{
		Code:    MakeCode(ServiceIngest, CategoryNotFound, 0),
		HTTP:    http.StatusNotFound,
		Message: "Bot not found",
	})

	// ErrBotExists indicates a concurrent create lost the uniqueness race.
	ErrBotExists = Register(&Errno{
		Code:    MakeCode(ServiceIngest, CategoryConflict, 0),
		HTTP:    http.StatusConflict,
		Message: "Bot already exists for this website",
	})

	// ErrCrawlFailed indicates the seed was unreachable or no pages were fetched.
	ErrCrawlFailed = Register(&Errno{
		Code:    MakeCode(ServiceIngest, CategoryUpstream, 0),
		HTTP:    http.StatusBadGateway,
		Message: "Website crawl failed",
	})

	// ErrEmptyContent indicates pages were fetched but no chunks survived cleaning.
	ErrEmptyContent = Register(&Errno{
		Code:    MakeCode(ServiceIngest, CategoryInternal, 1),
		HTTP:    http.StatusUnprocessableEntity,
		Message: "No usable content extracted from website",
	})

	// ErrIndexWrite indicates the vector index rejected the write.
	ErrIndexWrite = Register(&Errno{
		Code:    MakeCode(ServiceIngest, CategoryDatabase, 1),
		HTTP:    http.StatusInternalServerError,
		Message: "Vector index write failed",
	})
)

// ============================================================================
// Chat/retrieval errors (Service: 21)
// ============================================================================

var (
	// ErrBotNotReady indicates a query against a bot that is not in ready state.
	ErrBotNotReady = Register(&Errno{
		Code:    MakeCode(ServiceChat, CategoryConflict, 0),
		HTTP:    http.StatusConflict,
		Message: "Bot is not ready",
	})

	// ErrNoContext indicates retrieval returned zero chunks to ground an answer.
	ErrNoContext = Register(&Errno{
		Code:    MakeCode(ServiceChat, CategoryInternal, 0),
		HTTP:    http.StatusInternalServerError,
		Message: "No relevant content retrieved",
	})
)

// ============================================================================
// Provider errors (Service: 90)
// ============================================================================

var (
	// ErrProvider indicates a generic embedding/generation provider failure.
	ErrProvider = Register(&Errno{
		Code:    MakeCode(ServiceVendor, CategoryUpstream, 0),
		HTTP:    http.StatusBadGateway,
		Message: "Model provider request failed",
	})

	// ErrProviderQuota indicates the provider rejected the call for quota or
	// rate-limit reasons. Kept distinct from ErrProvider so callers can choose
	// different user-facing messaging.
	ErrProviderQuota = Register(&Errno{
		Code:    MakeCode(ServiceVendor, CategoryRate, 0),
		HTTP:    http.StatusTooManyRequests,
		Message: "Model provider quota exhausted, please retry later",
	})
)
