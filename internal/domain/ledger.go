package domain

import "context"

// Ledger anchors evidence facts on the integrity chain. Both writes are
// asynchronous underneath: success means the transaction was included and not
// reverted, not merely submitted. Implementations must serialize writes from
// a single signing account.
type Ledger interface {
	SubmitCaseEvidence(ctx context.Context, caseID, evidenceID, cid, hashOriginal, keyHash string, evidenceType uint8) (LedgerReceipt, error)
	ConfirmEvidence(ctx context.Context, caseID string, index int64) (LedgerReceipt, error)
	GetEvidenceByID(ctx context.Context, caseID, evidenceID string) (*LedgerAnchor, error)
	EvidenceCount(ctx context.Context, caseID string) (int64, error)
}

// LedgerAnchor mirrors the on-chain evidence tuple. KeyHash is the SHA-256 of
// the unwrapped file key, proving key association without revealing it.
type LedgerAnchor struct {
	CaseID       string
	EvidenceID   string
	CID          string
	HashOriginal string
	KeyHash      string
	TypeCode     uint8
	Confirmed    bool
}

type LedgerReceipt struct {
	TxHash      string
	BlockNumber uint64
	ChainID     string
	GasUsed     uint64
}
