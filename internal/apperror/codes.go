package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
)

// Marketplace and scanning error codes
const (
	CodeEBayAuthFailed      Code = "EBAY_AUTH_FAILED"
	CodeEBayAPIError        Code = "EBAY_API_ERROR"
	CodeEBayRateLimited     Code = "EBAY_RATE_LIMITED"
	CodeChrono24Unavailable Code = "CHRONO24_UNAVAILABLE"
	CodeChrono24ParseError  Code = "CHRONO24_PARSE_ERROR"
	CodeInvalidListing      Code = "INVALID_LISTING"

	CodeStoreQueryFailed  Code = "STORE_QUERY_FAILED"
	CodeStoreWriteFailed  Code = "STORE_WRITE_FAILED"
	CodeStoreTxFailed     Code = "STORE_TX_FAILED"
	CodeCatalogSeedFailed Code = "CATALOG_SEED_FAILED"

	CodeAnalysisInProgress Code = "ANALYSIS_IN_PROGRESS"
	CodeAnalysisFailed     Code = "ANALYSIS_FAILED"

	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
