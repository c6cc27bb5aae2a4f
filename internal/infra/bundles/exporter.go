package bundles

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

const CaseBundleVersion = "custody_bundle_v1"

// BundleInput collects everything the caller gathered for one case. Anchors
// is keyed by evidence ID; a missing entry means the item never reached the
// chain.
type BundleInput struct {
	CaseID      string
	GeneratedAt time.Time
	Records     []domain.EvidenceRecord
	Anchors     map[string]*domain.LedgerAnchor
	PendingPins []domain.PendingPin
	AuditEvents []domain.AuditEvent
	AuditChainErr error
}

// CaseBundle is the court-facing export of a case's custody state: evidence
// facts, their on-chain anchors, unresolved pipeline markers, and the full
// audit chain with its verification outcome. Key material never leaves the
// service, so a bundle alone cannot decrypt anything.
type CaseBundle struct {
	Version     string            `json:"version"`
	CaseID      string            `json:"case_id"`
	GeneratedAt string            `json:"generated_at"`
	Evidence    []EvidenceEntry   `json:"evidence"`
	PendingPins []PendingPinEntry `json:"pending_pins"`
	AuditChain  AuditChainSection `json:"audit_chain"`
	Digest      string            `json:"digest"`
}

type EvidenceEntry struct {
	EvidenceID       string       `json:"evidence_id"`
	CID              string       `json:"cid"`
	HashOriginal     string       `json:"hash_original"`
	EvidenceType     string       `json:"evidence_type"`
	Status           string       `json:"status"`
	OriginalFilename string       `json:"original_filename,omitempty"`
	Description      string       `json:"description,omitempty"`
	SubmittedBy      string       `json:"submitted_by,omitempty"`
	CreatedAt        string       `json:"created_at,omitempty"`
	Anchor           *AnchorEntry `json:"anchor,omitempty"`
}

type AnchorEntry struct {
	CID          string `json:"cid"`
	HashOriginal string `json:"hash_original"`
	KeyHash      string `json:"key_hash"`
	TypeCode     uint8  `json:"type_code"`
	Confirmed    bool   `json:"confirmed"`
}

type PendingPinEntry struct {
	EvidenceID string `json:"evidence_id"`
	CID        string `json:"cid"`
	Stage      string `json:"stage"`
	TxHash     string `json:"tx_hash,omitempty"`
}

type AuditChainSection struct {
	Verified bool              `json:"verified"`
	Failure  string            `json:"failure,omitempty"`
	Events   []AuditEventEntry `json:"events"`
}

type AuditEventEntry struct {
	Seq           int64           `json:"seq"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	PayloadHash   string          `json:"payload_hash"`
	PrevEventHash string          `json:"prev_event_hash"`
	EventHash     string          `json:"event_hash"`
	Result        string          `json:"result"`
	ErrorCode     string          `json:"error_code,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// Build assembles a deterministic bundle: evidence sorted by ID, audit events
// by sequence, and a digest over the canonical encoding so two exports of the
// same state compare byte-equal.
func Build(input BundleInput) (*CaseBundle, error) {
	if input.CaseID == "" {
		return nil, errors.New("case id is required")
	}
	generatedAt := input.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	bundle := &CaseBundle{
		Version:     CaseBundleVersion,
		CaseID:      input.CaseID,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Evidence:    make([]EvidenceEntry, 0, len(input.Records)),
		PendingPins: make([]PendingPinEntry, 0, len(input.PendingPins)),
	}

	for _, record := range input.Records {
		entry := EvidenceEntry{
			EvidenceID:       record.EvidenceID,
			CID:              record.CID,
			HashOriginal:     record.HashOriginal,
			EvidenceType:     string(record.EvidenceType),
			Status:           string(record.Status),
			OriginalFilename: record.OriginalFilename,
			Description:      record.Description,
			SubmittedBy:      record.SubmittedBy,
		}
		if !record.CreatedAt.IsZero() {
			entry.CreatedAt = record.CreatedAt.UTC().Format(time.RFC3339)
		}
		if anchor := input.Anchors[record.EvidenceID]; anchor != nil {
			entry.Anchor = &AnchorEntry{
				CID:          anchor.CID,
				HashOriginal: anchor.HashOriginal,
				KeyHash:      anchor.KeyHash,
				TypeCode:     anchor.TypeCode,
				Confirmed:    anchor.Confirmed,
			}
		}
		bundle.Evidence = append(bundle.Evidence, entry)
	}
	sort.Slice(bundle.Evidence, func(i, j int) bool {
		return bundle.Evidence[i].EvidenceID < bundle.Evidence[j].EvidenceID
	})

	for _, pin := range input.PendingPins {
		bundle.PendingPins = append(bundle.PendingPins, PendingPinEntry{
			EvidenceID: pin.EvidenceID,
			CID:        pin.CID,
			Stage:      string(pin.Stage),
			TxHash:     pin.TxHash,
		})
	}
	sort.Slice(bundle.PendingPins, func(i, j int) bool {
		return bundle.PendingPins[i].EvidenceID < bundle.PendingPins[j].EvidenceID
	})

	bundle.AuditChain = AuditChainSection{
		Verified: input.AuditChainErr == nil,
		Events:   make([]AuditEventEntry, 0, len(input.AuditEvents)),
	}
	if input.AuditChainErr != nil {
		bundle.AuditChain.Failure = input.AuditChainErr.Error()
	}
	for _, event := range input.AuditEvents {
		entry := AuditEventEntry{
			Seq:           event.Seq,
			EventType:     string(event.EventType),
			PayloadHash:   event.PayloadHash,
			PrevEventHash: event.PrevEventHash,
			EventHash:     event.EventHash,
			Result:        string(event.Result),
			ErrorCode:     event.ErrorCode,
			CreatedAt:     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if payload, err := payloadJSON(event.Payload); err == nil {
			entry.Payload = payload
		}
		bundle.AuditChain.Events = append(bundle.AuditChain.Events, entry)
	}
	sort.Slice(bundle.AuditChain.Events, func(i, j int) bool {
		return bundle.AuditChain.Events[i].Seq < bundle.AuditChain.Events[j].Seq
	})

	digest, err := Digest(bundle)
	if err != nil {
		return nil, err
	}
	bundle.Digest = digest
	return bundle, nil
}

// Digest hashes the bundle's canonical encoding with the digest field blank.
// Verifiers recompute it the same way.
func Digest(bundle *CaseBundle) (string, error) {
	clone := *bundle
	clone.Digest = ""
	encoded, err := json.Marshal(&clone)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

func payloadJSON(payload any) (json.RawMessage, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	case string:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}
