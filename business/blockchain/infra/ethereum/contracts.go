package ethereum

// Staking contract methods.
const (
	methodUserTotalDeposit        = "getUserTotalDeposit"
	methodAmountOfShares          = "getAmountOfShares"
	methodTotalShares             = "totalAuroraShares"
	methodTotalStaked             = "getTotalAmountOfStakedAurora"
	methodPending                 = "getPending"
	methodReleaseTime             = "getReleaseTime"
	methodStreamClaimable         = "getStreamClaimableAmount"
	methodStreamSchedule          = "getStreamSchedule"
	methodPaused                  = "paused"
	methodStake                   = "stake"
	methodUnstake                 = "unstake"
	methodUnstakeAll              = "unstakeAll"
	methodWithdraw                = "withdraw"
	methodWithdrawAll             = "withdrawAll"
	methodMoveRewardsToPending    = "moveRewardsToPending"
	methodMoveAllRewardsToPending = "moveAllRewardsToPending"
)

// ERC20 methods.
const (
	methodBalanceOf = "balanceOf"
	methodAllowance = "allowance"
	methodApprove   = "approve"
)

// StakingABI is the ABI subset of the staking contract used for reads and
// user actions.
const StakingABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "getUserTotalDeposit",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "streamId", "type": "uint256"},
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "getAmountOfShares",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "totalAuroraShares",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getTotalAmountOfStakedAurora",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "streamId", "type": "uint256"},
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "getPending",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "streamId", "type": "uint256"},
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "getReleaseTime",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "streamId", "type": "uint256"},
			{"internalType": "address", "name": "account", "type": "address"}
		],
		"name": "getStreamClaimableAmount",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "streamId", "type": "uint256"}],
		"name": "getStreamSchedule",
		"outputs": [
			{"internalType": "uint256[]", "name": "scheduleTimes", "type": "uint256[]"},
			{"internalType": "uint256[]", "name": "scheduleRewards", "type": "uint256[]"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "paused",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}],
		"name": "stake",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}],
		"name": "unstake",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "unstakeAll",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "streamId", "type": "uint256"}],
		"name": "withdraw",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "withdrawAll",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "streamId", "type": "uint256"}],
		"name": "moveRewardsToPending",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "moveAllRewardsToPending",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// ERC20ABI is the ABI subset of ERC20 used for balances and approvals.
const ERC20ABI = `[
	{
		"inputs": [{"internalType": "address", "name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "owner", "type": "address"},
			{"internalType": "address", "name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "spender", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`
