package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/config"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/auth/rbac"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/db"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/envelope"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/ledger"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/pinning"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/policyopa"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/ratelimit"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	uploadUC   *usecase.UploadEvidence
	confirmUC  *usecase.ConfirmEvidence
	retrieveUC *usecase.RetrieveEvidence
	syncUC     *usecase.SyncEvidence
	exportUC   *usecase.ExportCaseBundle
	audit      *usecase.AuditEmitter

	authorizer  domain.Authorizer
	authInitErr error
	depsInitErr error

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Upload      *usecase.UploadEvidence
	Confirm     *usecase.ConfirmEvidence
	Retrieve    *usecase.RetrieveEvidence
	Sync        *usecase.SyncEvidence
	Export      *usecase.ExportCaseBundle
	Audit       *usecase.AuditEmitter
	Authorizer  domain.Authorizer
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg,
		r:          r,
		uploadUC:   deps.Upload,
		confirmUC:  deps.Confirm,
		retrieveUC: deps.Retrieve,
		syncUC:     deps.Sync,
		exportUC:   deps.Export,
		audit:      deps.Audit,
		authorizer: deps.Authorizer,
	}
	s.initRateLimit(deps.RateLimiter)
	s.initAuth()
	s.routes()
	return s
}

func (s *Server) initDeps() {
	engine, err := envelope.NewEngine(s.cfg.MasterSecret)
	if err != nil {
		s.depsInitErr = err
		return
	}
	pinClient, err := pinning.NewClient(pinning.Options{
		APIBaseURL:     s.cfg.PinningAPIURL,
		GatewayBaseURL: s.cfg.GatewayBaseURL,
		JWT:            s.cfg.PinningJWT,
		Retries:        s.cfg.PinRetries,
		RetryDelay:     s.cfg.PinRetryDelay,
	})
	if err != nil {
		s.depsInitErr = err
		return
	}
	ledgerClient, err := ledger.NewClient(context.Background(), ledger.Options{
		RPCURL:          s.cfg.LedgerRPCURL,
		PrivateKeyHex:   s.cfg.LedgerPrivateKeyHex,
		ContractAddress: s.cfg.LedgerContractAddress,
		ChainID:         s.cfg.LedgerChainID,
		WaitTimeout:     s.cfg.LedgerWaitTimeout,
	})
	if err != nil {
		s.depsInitErr = err
		return
	}

	var (
		evidenceRepo *db.EvidenceRepository
		pinRepo      *db.PendingPinRepository
		auditRepo    *db.AuditEventRepository
	)
	if s.store != nil {
		evidenceRepo = s.store.Evidence
		pinRepo = s.store.PendingPins
		auditRepo = s.store.AuditEvents
	}
	if auditRepo != nil {
		s.audit = &usecase.AuditEmitter{Sink: auditRepo}
	}

	s.uploadUC = &usecase.UploadEvidence{
		Evidence: evidenceRepo,
		Pins:     pinRepo,
		Store:    pinClient,
		Ledger:   ledgerClient,
		Envelope: engine,
		Audit:    s.audit,
	}
	s.confirmUC = &usecase.ConfirmEvidence{
		Evidence: evidenceRepo,
		Ledger:   ledgerClient,
		Audit:    s.audit,
	}
	s.retrieveUC = &usecase.RetrieveEvidence{
		Evidence: evidenceRepo,
		Store:    pinClient,
		Envelope: engine,
		Names:    pinClient,
		Audit:    s.audit,
	}
	s.syncUC = &usecase.SyncEvidence{
		Evidence: evidenceRepo,
		Pins:     pinRepo,
		Store:    pinClient,
		Ledger:   ledgerClient,
		Envelope: engine,
		Audit:    s.audit,
	}
	s.exportUC = &usecase.ExportCaseBundle{
		Evidence: evidenceRepo,
		Pins:     pinRepo,
		Ledger:   ledgerClient,
		Sink:     auditRepo,
		Audit:    s.audit,
	}

	s.initRateLimit(nil)
	s.initAuth()
}

func (s *Server) initAuth() {
	if s.authorizer != nil {
		return
	}
	switch s.cfg.AuthMode {
	case "none":
		return
	case "", "rbac":
		s.authorizer = rbac.NewAuthorizer()
	case "opa":
		var (
			engine *policyopa.Engine
			err    error
		)
		if s.cfg.RolePolicyPath != "" {
			engine, err = policyopa.NewEngineFromPath(context.Background(), s.cfg.RolePolicyPath)
		} else {
			engine, err = policyopa.NewEngine(context.Background())
		}
		if err != nil {
			s.authInitErr = err
			return
		}
		s.authorizer = engine
	default:
		s.authInitErr = errors.New("unsupported auth mode")
	}
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	s.r.POST("/case/:caseId/upload", s.handleUpload)
	s.r.POST("/case/:caseId/confirm", s.handleConfirm)
	s.r.GET("/case/:caseId/export", s.handleExport)
	s.r.GET("/retrieve/:caseId/:evidenceId", s.handleRetrieve)
	s.r.GET("/sync", s.handleSync)

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	if s.depsInitErr != nil {
		return s.depsInitErr
	}
	if s.authInitErr != nil {
		return s.authInitErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
