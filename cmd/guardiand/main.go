package main

import (
	"context"
	"log"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/config"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/db"
	httpinfra "github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/http"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/vaultclient"
)

func main() {
	cfg := config.FromEnv()

	if cfg.VaultAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		secret, err := vaultclient.New(cfg.VaultAddr, cfg.VaultToken).MasterSecret(ctx, cfg.VaultSecretPath)
		cancel()
		if err != nil {
			log.Fatalf("failed to read master secret from vault: %v", err)
		}
		cfg.MasterSecret = secret
	}

	store, err := db.NewStore(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
