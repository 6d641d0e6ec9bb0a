package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Receipt is the confirmed outcome of a submitted transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}
