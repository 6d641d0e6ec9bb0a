package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeInvalidInput Code = "INVALID_INPUT"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeUnknownError Code = "UNKNOWN_ERROR"
)

// Staking-specific error codes
const (
	// Schedule and economics errors
	CodeInvalidSchedule Code = "INVALID_SCHEDULE"
	CodeDivisionByZero  Code = "DIVISION_BY_ZERO"
	CodeMissingPrice    Code = "MISSING_PRICE"

	// Read path errors
	CodeReadFailure              Code = "READ_FAILURE"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodePriceOracleFailed        Code = "PRICE_ORACLE_FAILED"

	// Action errors
	CodeActionInProgress Code = "ACTION_IN_PROGRESS"
	CodeWrongNetwork     Code = "WRONG_NETWORK"
	CodeActionFailed     Code = "ACTION_FAILED"

	// Transaction errors
	CodeGasEstimationFailed Code = "GAS_ESTIMATION_FAILED"
	CodeTransactionFailed   Code = "TRANSACTION_FAILED"
	CodeTransactionReverted Code = "TRANSACTION_REVERTED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
