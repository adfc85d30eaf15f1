package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrderParams   ErrorCode = 102
	ErrCodeInvalidStepSize      ErrorCode = 103
	ErrCodeInsufficientSample   ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106
	ErrCodeInvalidMultiplier    ErrorCode = 107

	// Market data errors (200-299)
	ErrCodeDataFetchFailed ErrorCode = 200
	ErrCodeDataParseFailed ErrorCode = 201
	ErrCodeEmptyBook       ErrorCode = 202
	ErrCodeMarketNotFound  ErrorCode = 203
	ErrCodeInvalidProvider ErrorCode = 204

	// Exchange errors (300-399)
	ErrCodeExchangeRejected ErrorCode = 300
	ErrCodeAccountFetch     ErrorCode = 301
	ErrCodeOrderNotFound    ErrorCode = 302

	// Engine errors (400-499)
	ErrCodeEngineNotReady  ErrorCode = 400
	ErrCodeEngineInitFail  ErrorCode = 401
	ErrCodeVersionMismatch ErrorCode = 402
	ErrCodeJournalFailed   ErrorCode = 403

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
