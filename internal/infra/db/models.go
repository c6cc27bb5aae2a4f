package db

import "time"

type EvidenceModel struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	CaseID           string    `gorm:"uniqueIndex:ux_evidence_case_evidence;not null"`
	EvidenceID       string    `gorm:"uniqueIndex:ux_evidence_case_evidence;not null"`
	CID              string    `gorm:"column:cid;index;not null"`
	HashOriginal     string    `gorm:"index;not null"`
	OriginalFilename string    `gorm:"not null"`
	KeyEncrypted     string    `gorm:"not null"`
	IVEncrypted      string    `gorm:"column:iv_encrypted;not null"`
	KeyIVEncrypted   string    `gorm:"column:key_iv_encrypted;not null"`
	Description      string
	EvidenceType     string    `gorm:"not null"`
	Status           string    `gorm:"index;not null"`
	SubmittedBy      string    `gorm:"index"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (EvidenceModel) TableName() string { return "evidence" }

type PendingPinModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	CaseID     string    `gorm:"uniqueIndex:ux_pending_case_evidence;not null"`
	EvidenceID string    `gorm:"uniqueIndex:ux_pending_case_evidence;not null"`
	CID        string    `gorm:"column:cid;not null"`
	Stage      string    `gorm:"index;not null"`
	TxHash     string
	Resolved   bool      `gorm:"index;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (PendingPinModel) TableName() string { return "pending_pins" }

type AuditEventModel struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	CaseID        string `gorm:"uniqueIndex:ux_audit_case_seq;not null"`
	Seq           int64  `gorm:"uniqueIndex:ux_audit_case_seq;not null"`
	EventType     string `gorm:"index;not null"`
	PayloadJSON   []byte `gorm:"type:jsonb;not null"`
	PayloadHash   string `gorm:"not null"`
	ActorType     string `gorm:"not null"`
	ActorIDHash   *string
	TargetType    string `gorm:"not null"`
	TargetID      *string
	Result        string `gorm:"not null"`
	ErrorCode     *string
	PrevEventHash string    `gorm:"not null"`
	EventHash     string    `gorm:"index;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (AuditEventModel) TableName() string { return "audit_events" }
