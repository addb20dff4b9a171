package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",

	CodeEBayAuthFailed:      "eBay OAuth token request failed",
	CodeEBayAPIError:        "eBay Browse API error",
	CodeEBayRateLimited:     "eBay rate limit exceeded",
	CodeChrono24Unavailable: "Chrono24 is unavailable or disabled",
	CodeChrono24ParseError:  "Failed to parse Chrono24 listing page",
	CodeInvalidListing:      "Listing payload failed validation",

	CodeStoreQueryFailed:  "Store query failed",
	CodeStoreWriteFailed:  "Store write failed",
	CodeStoreTxFailed:     "Store transaction failed",
	CodeCatalogSeedFailed: "Catalog seeding failed",

	CodeAnalysisInProgress: "An analysis run is already in progress",
	CodeAnalysisFailed:     "Arbitrage analysis failed",

	CodeCircuitOpen: "Circuit breaker is open",
}
