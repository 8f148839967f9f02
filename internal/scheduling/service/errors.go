package service

// Stable machine-readable error codes surfaced by the scheduling endpoints.
// Clients branch on these; the messages are for humans and may change.
const (
	CodeQuoteNotFound   = "QUOTE_NOT_FOUND"
	CodeQuoteClosed     = "QUOTE_CLOSED"
	CodeMissingPet      = "MISSING_PET"
	CodeValidationError = "VALIDATION_ERROR"
	CodeMissingDriver   = "MISSING_DRIVER"
	CodeInvalidStatus   = "INVALID_STATUS"
	CodeMissingReason   = "MISSING_REASON"
)
