//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

func TestEvidenceRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	resetDB(t, db)

	repo := NewEvidenceRepository(db)
	record := sampleRecord("CASE-1", "EV-1")
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(context.Background(), "CASE-1", "EV-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CID != record.CID || got.KeyIVEncrypted != record.KeyIVEncrypted {
		t.Fatal("stored record does not match input")
	}
	if got.Status != domain.EvidenceStatusSubmitted {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestEvidenceRepository_DuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	resetDB(t, db)

	repo := NewEvidenceRepository(db)
	if err := repo.Create(context.Background(), sampleRecord("CASE-1", "EV-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(context.Background(), sampleRecord("CASE-1", "EV-1"))
	if !errors.Is(err, domain.ErrDuplicateEvidence) {
		t.Fatalf("expected ErrDuplicateEvidence, got %v", err)
	}
	// Same evidence id under a different case is a distinct item.
	if err := repo.Create(context.Background(), sampleRecord("CASE-2", "EV-1")); err != nil {
		t.Fatalf("create under other case: %v", err)
	}
}

func TestEvidenceRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	resetDB(t, db)

	repo := NewEvidenceRepository(db)
	if err := repo.Create(context.Background(), sampleRecord("CASE-1", "EV-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), "CASE-1", "EV-1", domain.EvidenceStatusConfirmed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err := repo.Get(context.Background(), "CASE-1", "EV-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.EvidenceStatusConfirmed {
		t.Fatalf("status = %s", got.Status)
	}
	if err := repo.UpdateStatus(context.Background(), "CASE-1", "EV-404", domain.EvidenceStatusConfirmed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPendingPinRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	resetDB(t, db)

	repo := NewPendingPinRepository(db)
	pin := domain.PendingPin{
		CaseID:     "CASE-1",
		EvidenceID: "EV-1",
		CID:        "QmPending",
		Stage:      domain.PendingPinStagePinned,
	}
	if err := repo.Put(context.Background(), pin); err != nil {
		t.Fatalf("put: %v", err)
	}

	pin.Stage = domain.PendingPinStageAnchored
	pin.TxHash = "0xabc"
	if err := repo.Put(context.Background(), pin); err != nil {
		t.Fatalf("advance stage: %v", err)
	}

	unresolved, err := repo.ListUnresolved(context.Background())
	if err != nil {
		t.Fatalf("list unresolved: %v", err)
	}
	if len(unresolved) != 1 {
		t.Fatalf("expected 1 unresolved pin, got %d", len(unresolved))
	}
	if unresolved[0].Stage != domain.PendingPinStageAnchored || unresolved[0].TxHash != "0xabc" {
		t.Fatal("upsert did not advance the marker")
	}

	if err := repo.Resolve(context.Background(), "CASE-1", "EV-1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	unresolved, err = repo.ListUnresolved(context.Background())
	if err != nil {
		t.Fatalf("list after resolve: %v", err)
	}
	if len(unresolved) != 0 {
		t.Fatalf("expected 0 unresolved pins, got %d", len(unresolved))
	}
}

func TestAuditEventRepository_Append_HashChain(t *testing.T) {
	db := setupTestDB(t)
	resetDB(t, db)

	repo := NewAuditEventRepository(db)
	firstTime := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	first, err := repo.Append(context.Background(), domain.AuditEvent{
		CaseID:    "CASE-1",
		ActorType: domain.AuditActorUser,
		EventType: domain.AuditEventEvidenceSubmitted,
		Payload: map[string]any{
			"evidence_id": "EV-1",
			"cid":         "QmChained",
		},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   "EV-1",
		Result:     domain.AuditResultSuccess,
		CreatedAt:  firstTime,
	})
	if err != nil {
		t.Fatalf("append first audit event: %v", err)
	}
	if first.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", first.Seq)
	}
	if first.PrevEventHash != ZeroAuditHash() {
		t.Fatalf("first prev hash = %s", first.PrevEventHash)
	}

	second, err := repo.Append(context.Background(), domain.AuditEvent{
		CaseID:    "CASE-1",
		ActorType: domain.AuditActorService,
		EventType: domain.AuditEventEvidenceAnchored,
		Payload: map[string]any{
			"evidence_id": "EV-1",
			"tx_hash":     "0xabc",
		},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   "EV-1",
		Result:     domain.AuditResultSuccess,
		CreatedAt:  firstTime.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("append second audit event: %v", err)
	}
	if second.Seq != 2 {
		t.Fatalf("expected seq 2, got %d", second.Seq)
	}
	if second.PrevEventHash != first.EventHash {
		t.Fatalf("expected prev_event_hash %s, got %s", first.EventHash, second.PrevEventHash)
	}

	recomputed, err := ComputeAuditEventHash(second)
	if err != nil {
		t.Fatalf("recompute event hash: %v", err)
	}
	if recomputed != second.EventHash {
		t.Fatal("stored event hash does not verify")
	}

	// A different case starts its own chain at the genesis hash.
	other, err := repo.Append(context.Background(), domain.AuditEvent{
		CaseID:     "CASE-2",
		ActorType:  domain.AuditActorUser,
		EventType:  domain.AuditEventEvidenceSubmitted,
		Payload:    map[string]any{"evidence_id": "EV-9"},
		TargetType: domain.AuditTargetEvidence,
		TargetID:   "EV-9",
		Result:     domain.AuditResultSuccess,
	})
	if err != nil {
		t.Fatalf("append to other case: %v", err)
	}
	if other.Seq != 1 || other.PrevEventHash != ZeroAuditHash() {
		t.Fatal("chains must be independent per case")
	}

	events, err := repo.ListByCase(context.Background(), "CASE-1")
	if err != nil {
		t.Fatalf("list by case: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func sampleRecord(caseID, evidenceID string) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		CaseID:           caseID,
		EvidenceID:       evidenceID,
		CID:              "QmStored",
		HashOriginal:     strings.Repeat("ab", 32),
		OriginalFilename: "scene.jpg",
		KeyEncrypted:     strings.Repeat("cd", 48),
		IVEncrypted:      strings.Repeat("ef", 16),
		KeyIVEncrypted:   strings.Repeat("01", 16),
		Description:      "crime scene photo",
		EvidenceType:     domain.EvidenceTypeImage,
		Status:           domain.EvidenceStatusSubmitted,
		SubmittedBy:      "officer-7",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN_TEST"))
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	lockTestDB(t, db)
	applyMigrations(t, db)
	return db
}

func lockTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	conn, err := sqlDB.Conn(context.Background())
	if err != nil {
		t.Fatalf("open db conn: %v", err)
	}
	if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_lock(424242)"); err != nil {
		_ = conn.Close()
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(424242)")
		_ = conn.Close()
	})
}

func applyMigrations(t *testing.T, db *gorm.DB) {
	t.Helper()
	dir := filepath.Join("..", "..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		sqlBytes, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read migration %s: %v", name, err)
		}
		if err := db.Exec(string(sqlBytes)).Error; err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
}

func resetDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec(`
		TRUNCATE evidence,
			pending_pins,
			audit_events,
			case_audit_seq
		RESTART IDENTITY CASCADE`).Error; err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
