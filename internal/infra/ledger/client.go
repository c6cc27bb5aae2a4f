package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

// Client anchors evidence facts on the ForensicChain contract. All writes go
// through a single signing account, so submissions are serialized under one
// mutex with an explicitly tracked pending nonce; two in-flight transactions
// from the same account would collide.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	auth     *bind.TransactOpts
	chainID  *big.Int

	waitTimeout time.Duration

	mu    sync.Mutex
	nonce uint64
	// nonceKnown flips after the first PendingNonceAt; afterwards the local
	// counter is authoritative until a submission error resets it.
	nonceKnown bool
}

type Options struct {
	RPCURL          string
	PrivateKeyHex   string
	ContractAddress string
	ChainID         int64
	WaitTimeout     time.Duration
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.RPCURL == "" {
		return nil, errors.New("ledger rpc url is required")
	}
	if opts.ContractAddress == "" {
		return nil, errors.New("ledger contract address is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(opts.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse ledger signing key: %w", err)
	}
	chainID := big.NewInt(opts.ChainID)
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(forensicChainABI))
	if err != nil {
		return nil, err
	}
	eth, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, &domain.NetworkError{Op: "ledger dial", Err: err}
	}
	waitTimeout := opts.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = 90 * time.Second
	}
	address := common.HexToAddress(opts.ContractAddress)
	return &Client{
		eth:         eth,
		contract:    bind.NewBoundContract(address, parsed, eth, eth, eth),
		abi:         parsed,
		auth:        auth,
		chainID:     chainID,
		waitTimeout: waitTimeout,
	}, nil
}

func (c *Client) SubmitCaseEvidence(ctx context.Context, caseID, evidenceID, cid, hashOriginal, keyHash string, evidenceType uint8) (domain.LedgerReceipt, error) {
	return c.transact(ctx, "submitCaseEvidence", caseID, evidenceID, cid, hashOriginal, keyHash, evidenceType)
}

func (c *Client) ConfirmEvidence(ctx context.Context, caseID string, index int64) (domain.LedgerReceipt, error) {
	if index < 0 {
		return domain.LedgerReceipt{}, fmt.Errorf("evidence index must be non-negative, got %d", index)
	}
	return c.transact(ctx, "confirmEvidence", caseID, big.NewInt(index))
}

func (c *Client) GetEvidenceByID(ctx context.Context, caseID, evidenceID string) (*domain.LedgerAnchor, error) {
	var out []any
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getEvidenceById", caseID, evidenceID)
	if err != nil {
		if reason, rejected := revertReason(err); rejected {
			return nil, &domain.ChainRejectedError{Reason: reason}
		}
		return nil, &domain.NetworkError{Op: "getEvidenceById", Err: err}
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("getEvidenceById returned %d values", len(out))
	}
	anchor := &domain.LedgerAnchor{
		CaseID:     caseID,
		EvidenceID: evidenceID,
	}
	var ok bool
	if anchor.CID, ok = out[0].(string); !ok {
		return nil, errors.New("getEvidenceById: cid is not a string")
	}
	if anchor.HashOriginal, ok = out[1].(string); !ok {
		return nil, errors.New("getEvidenceById: hashOriginal is not a string")
	}
	if anchor.KeyHash, ok = out[2].(string); !ok {
		return nil, errors.New("getEvidenceById: keyHash is not a string")
	}
	if anchor.TypeCode, ok = out[3].(uint8); !ok {
		return nil, errors.New("getEvidenceById: evidenceType is not a uint8")
	}
	if anchor.Confirmed, ok = out[4].(bool); !ok {
		return nil, errors.New("getEvidenceById: confirmed is not a bool")
	}
	if anchor.CID == "" {
		return nil, domain.ErrNotFound
	}
	return anchor, nil
}

func (c *Client) EvidenceCount(ctx context.Context, caseID string) (int64, error) {
	var out []any
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "evidenceCount", caseID)
	if err != nil {
		return 0, &domain.NetworkError{Op: "evidenceCount", Err: err}
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("evidenceCount returned %d values", len(out))
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, errors.New("evidenceCount: result is not a big.Int")
	}
	return count.Int64(), nil
}

// transact submits one contract write and waits for inclusion. Success means
// mined and not reverted. When a transaction was submitted but the wait
// failed, the returned receipt still carries the tx hash so callers can track
// the pending transaction instead of discarding it.
func (c *Client) transact(ctx context.Context, method string, args ...any) (domain.LedgerReceipt, error) {
	tx, err := c.submit(ctx, method, args...)
	if err != nil {
		if reason, rejected := revertReason(err); rejected {
			return domain.LedgerReceipt{}, &domain.ChainRejectedError{Reason: reason}
		}
		return domain.LedgerReceipt{}, &domain.NetworkError{Op: method, Err: err}
	}

	receipt := domain.LedgerReceipt{
		TxHash:  tx.Hash().Hex(),
		ChainID: c.chainID.String(),
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()
	mined, err := bind.WaitMined(waitCtx, c.eth, tx)
	if err != nil {
		return receipt, &domain.NetworkError{Op: method + " wait", Err: err}
	}
	receipt.BlockNumber = mined.BlockNumber.Uint64()
	receipt.GasUsed = mined.GasUsed
	if mined.Status != types.ReceiptStatusSuccessful {
		reason := c.replayRevertReason(ctx, tx, mined.BlockNumber)
		if reason == "" {
			reason = fmt.Sprintf("transaction %s reverted", tx.Hash().Hex())
		}
		return receipt, &domain.ChainRejectedError{Reason: reason}
	}
	return receipt, nil
}

func (c *Client) submit(ctx context.Context, method string, args ...any) (*types.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.nonceKnown {
		pending, err := c.eth.PendingNonceAt(ctx, c.auth.From)
		if err != nil {
			return nil, err
		}
		c.nonce = pending
		c.nonceKnown = true
	}

	opts := *c.auth
	opts.Context = ctx
	opts.Nonce = new(big.Int).SetUint64(c.nonce)

	tx, err := c.contract.Transact(&opts, method, args...)
	if err != nil {
		// Nonce state is unknown after a failed submission; refetch next time.
		c.nonceKnown = false
		return nil, err
	}
	c.nonce++
	return tx, nil
}

// replayRevertReason re-executes a reverted transaction as a call at its
// block to recover the revert string.
func (c *Client) replayRevertReason(ctx context.Context, tx *types.Transaction, blockNumber *big.Int) string {
	from := c.auth.From
	msg := ethereumCallMsg(from, tx)
	ret, err := c.eth.CallContract(ctx, msg, blockNumber)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return reason
		}
		return ""
	}
	if reason, err := abi.UnpackRevert(ret); err == nil {
		return reason
	}
	return ""
}
