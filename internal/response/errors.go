package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrBankNotFound ErrCode = "BANK_NOT_FOUND"
	ErrNameTaken    ErrCode = "BANK_NAME_TAKEN"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrSessionNotFound     ErrCode = "SESSION_NOT_FOUND"
	ErrSessionSubmitted    ErrCode = "SESSION_ALREADY_SUBMITTED"
	ErrSessionNotSubmitted ErrCode = "SESSION_NOT_SUBMITTED"
	ErrInvalidIndex        ErrCode = "INVALID_QUESTION_INDEX"
	ErrInvalidSessionMode  ErrCode = "INVALID_SESSION_MODE"
	ErrInvalidConfig       ErrCode = "INVALID_SESSION_CONFIG"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrBankNotFound:
		return "Question bank not found."
	case ErrNameTaken:
		return "A question bank with this name already exists."

	// ─── Sessions ──────────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "No active session of this kind."
	case ErrSessionSubmitted:
		return "This session has already been submitted."
	case ErrSessionNotSubmitted:
		return "This session has not been submitted yet."
	case ErrInvalidIndex:
		return "Question index is out of range."
	case ErrInvalidSessionMode:
		return "This operation is not available in the current session mode."
	case ErrInvalidConfig:
		return "Session configuration is invalid."
	case ErrNoQuestions:
		return "The question bank has no questions matching the request."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
