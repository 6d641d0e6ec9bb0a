package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeInvalidInput: "Invalid input provided",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeRateLimitExceeded: "Rate limit exceeded",

	// System errors
	CodeUnknownError: "An unknown error occurred",

	// Schedule and economics errors
	CodeInvalidSchedule: "Invalid reward schedule",
	CodeDivisionByZero:  "Division by zero",
	CodeMissingPrice:    "Price missing for reward stream",

	// Read path errors
	CodeReadFailure:              "On-chain read failed",
	CodeContractCallFailed:       "Smart contract call failed",
	CodeEthereumConnectionFailed: "Failed to connect to RPC node",
	CodeEthereumRPCError:         "RPC call failed",
	CodePriceOracleFailed:        "Price oracle request failed",

	// Action errors
	CodeActionInProgress: "Another action is in progress for this account",
	CodeWrongNetwork:     "Wallet is connected to the wrong network",
	CodeActionFailed:     "Staking action failed",

	CodeGasEstimationFailed: "Gas estimation failed",
	CodeTransactionFailed:   "Transaction submission failed",
	CodeTransactionReverted: "Transaction reverted",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
