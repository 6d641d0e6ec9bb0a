package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aurora-staking/business/blockchain/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/logger"
)

// TxClient is the subset of an RPC client used to submit transactions.
type TxClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Estimator prices and sizes a call.
type Estimator interface {
	Estimate(ctx context.Context, from, to common.Address, data []byte) (*domain.GasEstimate, error)
}

// TransactorConfig holds configuration for the transactor.
type TransactorConfig struct {
	ChainID         *big.Int
	ReceiptInterval time.Duration // Receipt polling interval
	ReceiptTimeout  time.Duration // Upper bound on waiting for a receipt
}

// Transactor signs legacy transactions with a local key and waits for
// their receipts.
type Transactor struct {
	config TransactorConfig
	client TxClient
	gas    Estimator
	logger logger.LoggerInterface

	key    *ecdsa.PrivateKey
	from   common.Address
	signer types.Signer

	// Serializes nonce allocation through confirmation.
	mu sync.Mutex

	tracer trace.Tracer
}

// NewTransactor creates a transactor for a hex private key.
func NewTransactor(client TxClient, gas Estimator, privateKeyHex string, cfg TransactorConfig, log logger.LoggerInterface) (*Transactor, error) {
	if cfg.ChainID == nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("transactor requires a chain id"))
	}
	if cfg.ReceiptInterval <= 0 {
		cfg.ReceiptInterval = time.Second
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = 2 * time.Minute
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("invalid private key"))
	}

	return &Transactor{
		config: cfg,
		client: client,
		gas:    gas,
		logger: log,
		key:    key,
		from:   crypto.PubkeyToAddress(key.PublicKey),
		signer: types.LatestSignerForChainID(cfg.ChainID),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// From returns the signing address.
func (t *Transactor) From() common.Address {
	return t.from
}

// Transact signs and submits a call to `to` and waits for it to be mined.
// A mined transaction with failed status returns TRANSACTION_REVERTED
// along with its receipt.
func (t *Transactor) Transact(ctx context.Context, to common.Address, data []byte) (*domain.Receipt, error) {
	ctx, span := t.tracer.Start(ctx, "eth.transact",
		trace.WithAttributes(
			attribute.String("from", t.from.Hex()),
			attribute.String("to", to.Hex()),
		),
	)
	defer span.End()

	t.mu.Lock()
	defer t.mu.Unlock()

	estimate, err := t.gas.Estimate(ctx, t.from, to, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return nil, err
	}

	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get nonce"))
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      estimate.GasLimit,
		GasPrice: estimate.GasPrice.Wei,
		Data:     data,
	})

	signed, err := types.SignTx(tx, t.signer, t.key)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to sign transaction"))
	}

	if err := t.client.SendTransaction(ctx, signed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return nil, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("failed to send transaction to %s", to.Hex())))
	}

	span.SetAttributes(attribute.String("tx_hash", signed.Hash().Hex()))
	t.logger.Info(ctx, "transaction sent",
		"hash", signed.Hash().Hex(),
		"nonce", nonce,
		"gas_limit", estimate.GasLimit,
		"gas_price_gwei", estimate.GasPrice.Gwei())

	receipt, err := t.waitMined(ctx, signed.Hash())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "wait failed")
		return nil, err
	}

	if !receipt.Success {
		err := apperror.New(apperror.CodeTransactionReverted,
			apperror.WithContext(fmt.Sprintf("tx %s", receipt.TxHash.Hex())))
		span.RecordError(err)
		span.SetStatus(codes.Error, "reverted")
		return receipt, err
	}

	span.SetStatus(codes.Ok, "mined")
	return receipt, nil
}

// waitMined polls for the receipt of hash.
func (t *Transactor) waitMined(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(t.config.ReceiptInterval)
	defer ticker.Stop()

	for {
		r, err := t.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return &domain.Receipt{
				TxHash:      r.TxHash,
				BlockNumber: r.BlockNumber.Uint64(),
				GasUsed:     r.GasUsed,
				Success:     r.Status == types.ReceiptStatusSuccessful,
			}, nil
		case errors.Is(err, ethereum.NotFound):
		default:
			t.logger.Debug(ctx, "receipt poll failed", "hash", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, apperror.New(apperror.CodeTransactionFailed,
				apperror.WithCause(ctx.Err()),
				apperror.WithContext(fmt.Sprintf("no receipt for %s", hash.Hex())))
		case <-ticker.C:
		}
	}
}
