package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB          *gorm.DB
	Evidence    *EvidenceRepository
	PendingPins *PendingPinRepository
	AuditEvents *AuditEventRepository
}

func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		log.Printf("POSTGRES_DSN not set; starting in no-db mode.")
		return newStore(nil), nil
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newStore(gdb), nil
}

func newStore(gdb *gorm.DB) *Store {
	return &Store{
		DB:          gdb,
		Evidence:    NewEvidenceRepository(gdb),
		PendingPins: NewPendingPinRepository(gdb),
		AuditEvents: NewAuditEventRepository(gdb),
	}
}
