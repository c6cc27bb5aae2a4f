package usecase

import (
	"encoding/hex"
	"testing"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/envelope"
)

// pipeline wires the orchestrators over in-memory fakes and a real envelope
// engine, so tests exercise genuine crypto round trips.
type pipeline struct {
	evidence *fakeEvidenceRepo
	pins     *fakePinRepo
	store    *fakeObjectStore
	ledger   *fakeLedger
	engine   *envelope.Engine
	audit    *fakeAuditSink
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	engine, err := envelope.NewEngine("pipeline-test-secret")
	if err != nil {
		t.Fatalf("new envelope engine: %v", err)
	}
	return &pipeline{
		evidence: newFakeEvidenceRepo(),
		pins:     newFakePinRepo(),
		store:    newFakeObjectStore(),
		ledger:   newFakeLedger(),
		engine:   engine,
		audit:    newFakeAuditSink(),
	}
}

func (p *pipeline) emitter() *AuditEmitter {
	return &AuditEmitter{Sink: p.audit}
}

func (p *pipeline) upload() *UploadEvidence {
	return &UploadEvidence{
		Evidence: p.evidence,
		Pins:     p.pins,
		Store:    p.store,
		Ledger:   p.ledger,
		Envelope: p.engine,
		Audit:    p.emitter(),
	}
}

func (p *pipeline) retrieve() *RetrieveEvidence {
	return &RetrieveEvidence{
		Evidence: p.evidence,
		Store:    p.store,
		Envelope: p.engine,
		Audit:    p.emitter(),
	}
}

func (p *pipeline) confirm() *ConfirmEvidence {
	return &ConfirmEvidence{
		Evidence: p.evidence,
		Ledger:   p.ledger,
		Audit:    p.emitter(),
	}
}

func (p *pipeline) sync() *SyncEvidence {
	return &SyncEvidence{
		Evidence: p.evidence,
		Pins:     p.pins,
		Store:    p.store,
		Ledger:   p.ledger,
		Envelope: p.engine,
		Audit:    p.emitter(),
	}
}

func (p *pipeline) export() *ExportCaseBundle {
	return &ExportCaseBundle{
		Evidence: p.evidence,
		Pins:     p.pins,
		Ledger:   p.ledger,
		Sink:     p.audit,
		Audit:    p.emitter(),
	}
}

func mustHex(t *testing.T, encoded string) []byte {
	t.Helper()
	out, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}
	return out
}

func uploadRequest(caseID, evidenceID string) UploadEvidenceRequest {
	return UploadEvidenceRequest{
		CaseID:       caseID,
		EvidenceID:   evidenceID,
		Filename:     "scene.jpg",
		MimeType:     "image/jpeg",
		EvidenceType: "Image",
		Description:  "crime scene photo",
		Content:      []byte("original evidence bytes for " + evidenceID),
		Principal:    domain.Principal{Subject: "officer-7", Role: "officer"},
	}
}
