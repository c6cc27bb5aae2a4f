package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

type fakeEvidenceRepo struct {
	mu      sync.Mutex
	records map[string]domain.EvidenceRecord
}

func newFakeEvidenceRepo() *fakeEvidenceRepo {
	return &fakeEvidenceRepo{records: make(map[string]domain.EvidenceRecord)}
}

func evidenceKey(caseID, evidenceID string) string {
	return caseID + "|" + evidenceID
}

func (f *fakeEvidenceRepo) Create(_ context.Context, record domain.EvidenceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := evidenceKey(record.CaseID, record.EvidenceID)
	if _, ok := f.records[key]; ok {
		return domain.ErrDuplicateEvidence
	}
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	f.records[key] = record
	return nil
}

func (f *fakeEvidenceRepo) Get(_ context.Context, caseID, evidenceID string) (*domain.EvidenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[evidenceKey(caseID, evidenceID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := record
	return &out, nil
}

func (f *fakeEvidenceRepo) List(_ context.Context) ([]domain.EvidenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EvidenceRecord, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeEvidenceRepo) UpdateStatus(_ context.Context, caseID, evidenceID string, status domain.EvidenceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := evidenceKey(caseID, evidenceID)
	record, ok := f.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	f.records[key] = record
	return nil
}

type fakePinRepo struct {
	mu      sync.Mutex
	markers map[string]domain.PendingPin
}

func newFakePinRepo() *fakePinRepo {
	return &fakePinRepo{markers: make(map[string]domain.PendingPin)}
}

func (f *fakePinRepo) Put(_ context.Context, pin domain.PendingPin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers[evidenceKey(pin.CaseID, pin.EvidenceID)] = pin
	return nil
}

func (f *fakePinRepo) Resolve(_ context.Context, caseID, evidenceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := evidenceKey(caseID, evidenceID)
	if _, ok := f.markers[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.markers, key)
	return nil
}

func (f *fakePinRepo) ListUnresolved(_ context.Context) ([]domain.PendingPin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PendingPin, 0, len(f.markers))
	for _, pin := range f.markers {
		out = append(out, pin)
	}
	return out, nil
}

func (f *fakePinRepo) marker(caseID, evidenceID string) (domain.PendingPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pin, ok := f.markers[evidenceKey(caseID, evidenceID)]
	return pin, ok
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	pins    int
	pinErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Pin(_ context.Context, ciphertext []byte, name, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pinErr != nil {
		return "", f.pinErr
	}
	f.pins++
	cid := fmt.Sprintf("Qm%s-%d", name, f.pins)
	stored := make([]byte, len(ciphertext))
	copy(stored, ciphertext)
	f.objects[cid] = stored
	return cid, nil
}

func (f *fakeObjectStore) Fetch(_ context.Context, cid string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	object, ok := f.objects[cid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(object))
	copy(out, object)
	return out, nil
}

func (f *fakeObjectStore) tamper(cid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if object, ok := f.objects[cid]; ok && len(object) > 0 {
		object[0] ^= 0xff
	}
}

type fakeLedger struct {
	mu        sync.Mutex
	anchors   map[string][]*domain.LedgerAnchor
	submitErr error
	txSeq     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{anchors: make(map[string][]*domain.LedgerAnchor)}
}

func (f *fakeLedger) SubmitCaseEvidence(_ context.Context, caseID, evidenceID, cid, hashOriginal, keyHash string, evidenceType uint8) (domain.LedgerReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return domain.LedgerReceipt{}, f.submitErr
	}
	for _, anchor := range f.anchors[caseID] {
		if anchor.EvidenceID == evidenceID {
			return domain.LedgerReceipt{}, &domain.ChainRejectedError{Reason: "Evidence already submitted"}
		}
	}
	f.anchors[caseID] = append(f.anchors[caseID], &domain.LedgerAnchor{
		CaseID:       caseID,
		EvidenceID:   evidenceID,
		CID:          cid,
		HashOriginal: hashOriginal,
		KeyHash:      keyHash,
		TypeCode:     evidenceType,
	})
	f.txSeq++
	return domain.LedgerReceipt{
		TxHash:      fmt.Sprintf("0xtx%d", f.txSeq),
		BlockNumber: uint64(100 + f.txSeq),
		ChainID:     "11155111",
	}, nil
}

func (f *fakeLedger) ConfirmEvidence(_ context.Context, caseID string, index int64) (domain.LedgerReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	anchors := f.anchors[caseID]
	if index < 0 || index >= int64(len(anchors)) {
		return domain.LedgerReceipt{}, &domain.ChainRejectedError{Reason: "Invalid evidence index"}
	}
	if anchors[index].Confirmed {
		return domain.LedgerReceipt{}, &domain.ChainRejectedError{Reason: "Evidence already confirmed"}
	}
	anchors[index].Confirmed = true
	f.txSeq++
	return domain.LedgerReceipt{
		TxHash:      fmt.Sprintf("0xtx%d", f.txSeq),
		BlockNumber: uint64(100 + f.txSeq),
		ChainID:     "11155111",
	}, nil
}

func (f *fakeLedger) GetEvidenceByID(_ context.Context, caseID, evidenceID string) (*domain.LedgerAnchor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, anchor := range f.anchors[caseID] {
		if anchor.EvidenceID == evidenceID {
			out := *anchor
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLedger) EvidenceCount(_ context.Context, caseID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.anchors[caseID])), nil
}

// fakeAuditSink builds the same hash chain the real repository does, so
// chain-verification tests exercise real links.
type fakeAuditSink struct {
	mu     sync.Mutex
	chains map[string][]domain.AuditEvent
	err    error
}

func newFakeAuditSink() *fakeAuditSink {
	return &fakeAuditSink{chains: make(map[string][]domain.AuditEvent)}
}

func (f *fakeAuditSink) Append(_ context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.AuditEvent{}, f.err
	}
	if event.CaseID == "" {
		event.CaseID = domain.AuditSystemCaseID
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	payloadJSON, err := payloadBytes(event.Payload)
	if err != nil {
		return domain.AuditEvent{}, err
	}
	event.Payload = payloadJSON
	event.PayloadHash = sha256Hex(payloadJSON)

	chain := f.chains[event.CaseID]
	event.Seq = int64(len(chain)) + 1
	if len(chain) == 0 {
		event.PrevEventHash = zeroAuditHash()
	} else {
		event.PrevEventHash = chain[len(chain)-1].EventHash
	}
	hash, err := chainHash(event)
	if err != nil {
		return domain.AuditEvent{}, err
	}
	event.EventHash = hash
	f.chains[event.CaseID] = append(chain, event)
	return event, nil
}

func (f *fakeAuditSink) ListByCase(_ context.Context, caseID string) ([]domain.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if caseID == "" {
		caseID = domain.AuditSystemCaseID
	}
	out := make([]domain.AuditEvent, len(f.chains[caseID]))
	copy(out, f.chains[caseID])
	return out, nil
}

func (f *fakeAuditSink) eventTypes(caseID string) []domain.AuditEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AuditEventType, 0, len(f.chains[caseID]))
	for _, event := range f.chains[caseID] {
		out = append(out, event.EventType)
	}
	return out
}
