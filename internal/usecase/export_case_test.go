package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

func TestExportCaseBundle(t *testing.T) {
	p := newPipeline(t)
	if _, err := p.upload().Execute(context.Background(), uploadRequest("CASE-1", "EV-1")); err != nil {
		t.Fatalf("upload EV-1: %v", err)
	}
	if _, err := p.upload().Execute(context.Background(), uploadRequest("CASE-1", "EV-2")); err != nil {
		t.Fatalf("upload EV-2: %v", err)
	}
	// Another case's evidence stays out of the bundle.
	if _, err := p.upload().Execute(context.Background(), uploadRequest("CASE-2", "EV-9")); err != nil {
		t.Fatalf("upload EV-9: %v", err)
	}

	principal := domain.Principal{Subject: "lawyer-1", Role: "lawyer"}
	bundle, err := p.export().Execute(context.Background(), "CASE-1", principal)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(bundle.Evidence) != 2 {
		t.Fatalf("evidence entries = %d", len(bundle.Evidence))
	}
	if bundle.Evidence[0].EvidenceID != "EV-1" || bundle.Evidence[1].EvidenceID != "EV-2" {
		t.Fatalf("ordering = %+v", bundle.Evidence)
	}
	for _, entry := range bundle.Evidence {
		if entry.Anchor == nil {
			t.Fatalf("%s missing anchor", entry.EvidenceID)
		}
		if entry.Anchor.HashOriginal != entry.HashOriginal {
			t.Fatalf("%s anchor hash disagrees", entry.EvidenceID)
		}
	}
	if !bundle.AuditChain.Verified {
		t.Fatalf("audit chain not verified: %s", bundle.AuditChain.Failure)
	}
	if len(bundle.PendingPins) != 0 {
		t.Fatalf("pending pins = %+v", bundle.PendingPins)
	}
	if bundle.Digest == "" {
		t.Fatal("missing digest")
	}

	types := p.audit.eventTypes("CASE-1")
	if types[len(types)-1] != domain.AuditEventCaseExported {
		t.Fatalf("audit events = %v", types)
	}
}

func TestExportCaseBundleIncludesStrandedMarkers(t *testing.T) {
	p := newPipeline(t)
	p.ledger.submitErr = &domain.NetworkError{Op: "submitCaseEvidence", Err: errors.New("rpc down")}
	if _, err := p.upload().Execute(context.Background(), uploadRequest("CASE-1", "EV-1")); err == nil {
		t.Fatal("expected anchoring failure")
	}
	p.ledger.submitErr = nil

	bundle, err := p.export().Execute(context.Background(), "CASE-1", domain.Principal{Subject: "court-1", Role: "court"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(bundle.Evidence) != 1 || bundle.Evidence[0].Anchor != nil {
		t.Fatalf("evidence = %+v", bundle.Evidence)
	}
	if len(bundle.PendingPins) != 1 || bundle.PendingPins[0].Stage != string(domain.PendingPinStageRecorded) {
		t.Fatalf("pending pins = %+v", bundle.PendingPins)
	}
}

func TestExportUnknownCase(t *testing.T) {
	p := newPipeline(t)
	_, err := p.export().Execute(context.Background(), "CASE-404", domain.Principal{Subject: "court-1", Role: "court"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
