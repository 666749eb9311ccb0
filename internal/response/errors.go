package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidOption  ErrCode = "INVALID_OPTION"
	ErrInvalidPos     ErrCode = "INVALID_POSITION"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionNotActive    ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionStarted      ErrCode = "SESSION_ALREADY_STARTED"
	ErrSessionStarting     ErrCode = "SESSION_STARTING"
	ErrSessionStartAborted ErrCode = "SESSION_START_ABORTED"
	ErrResultNotReady      ErrCode = "RESULT_NOT_READY"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrArchiveUnavailable  ErrCode = "ARCHIVE_UNAVAILABLE"
	ErrUnknownAction       ErrCode = "UNKNOWN_ACTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidOption:
		return "Option index must be between 0 and 3."
	case ErrInvalidPos:
		return "Question position is out of range."

	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrSessionNotActive:
		return "The exam is not in progress."
	case ErrSessionStarted:
		return "The exam has already been started."
	case ErrSessionStarting:
		return "The exam is being prepared. Please wait."
	case ErrSessionStartAborted:
		return "The exam was restarted while it was being prepared."
	case ErrResultNotReady:
		return "The result is available only after the exam is submitted."
	case ErrNoQuestions:
		return "The exam has no questions."
	case ErrArchiveUnavailable:
		return "Result history is not available."
	case ErrUnknownAction:
		return "Unknown action."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
