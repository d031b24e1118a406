package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"invoicing-backend/internal/adapters/render/htmldoc"
	"invoicing-backend/internal/adapters/render/pdfdoc"
	"invoicing-backend/internal/adapters/render/remote"
	replaymem "invoicing-backend/internal/adapters/replay/memory"
	"invoicing-backend/internal/adapters/replay/redisledger"
	mem "invoicing-backend/internal/adapters/storage/memory"
	pg "invoicing-backend/internal/adapters/storage/postgres"
	"invoicing-backend/internal/auth/capability"
	"invoicing-backend/internal/auth/codec"
	"invoicing-backend/internal/auth/session"
	"invoicing-backend/internal/config"
	_ "invoicing-backend/internal/docs"
	"invoicing-backend/internal/domain/accounts"
	"invoicing-backend/internal/domain/clients"
	"invoicing-backend/internal/domain/invoices"
	"invoicing-backend/internal/domain/numbering"
	"invoicing-backend/internal/domain/payments"
	"invoicing-backend/internal/domain/quotes"
	"invoicing-backend/internal/domain/reports"
	"invoicing-backend/internal/middleware"
	"invoicing-backend/internal/platform/logger"
	"invoicing-backend/internal/platform/metrics"
	"invoicing-backend/internal/ports/capabilities"
	"invoicing-backend/internal/ports/render"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config  config.Config
	Logger  logger.Logger    // nil => Nop
	Metrics *metrics.Metrics // nil => sin /metrics

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
	// Opcional: ledger de capability tokens compartido (solo con CapabilitySingleUse).
	Redis redisledger.SetNXer

	// Clock reemplaza time.Now para tokens y servicios (tests).
	Clock func() time.Time
}

type repos struct {
	accounts accounts.Repository
	clients  clients.Repository
	quotes   quotes.Repository
	invoices invoices.Repository
	payments payments.Repository
	reports  reports.Repository
	seq      numbering.Sequencer
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			accounts: pg.NewAccountsRepo(db),
			clients:  pg.NewClientsRepo(db),
			quotes:   pg.NewQuotesRepo(db),
			invoices: pg.NewInvoicesRepo(db),
			payments: pg.NewPaymentsRepo(db),
			reports:  pg.NewReportsRepo(db),
			seq:      pg.NewSequencer(db),
		}
	}
	s := mem.NewStore()
	return repos{
		accounts: mem.NewAccountsRepo(s),
		clients:  mem.NewClientsRepo(s),
		quotes:   mem.NewQuotesRepo(s),
		invoices: mem.NewInvoicesRepo(s),
		payments: mem.NewPaymentsRepo(s),
		reports:  mem.NewReportsRepo(s),
		seq:      mem.NewSequencer(s),
	}
}

func NewRouter(opts Options) (http.Handler, error) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	c, err := codec.New(cfg.SecretKey, codec.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	rp := newRepos(opts.DB)

	// Auth
	authn := session.New(c, cfg.SessionTTL,
		session.WithResolver(accounts.NewResolver(rp.accounts)),
		session.WithLogger(log),
		session.WithMetrics(opts.Metrics),
	)

	capOpts := []capability.Option{capability.WithLogger(log), capability.WithMetrics(opts.Metrics)}
	if cfg.CapabilitySingleUse {
		var ledger capabilities.Ledger
		if opts.Redis != nil {
			ledger = redisledger.New(opts.Redis, "")
		} else {
			ledger = replaymem.New().WithClock(clock)
		}
		capOpts = append(capOpts, capability.WithLedger(ledger))
	}
	caps := capability.New(c, cfg.CapabilityTTL, capOpts...)

	var renderer render.Renderer = pdfdoc.New()
	if cfg.RendererURL != "" {
		rr, err := remote.New(cfg.RendererURL)
		if err != nil {
			return nil, fmt.Errorf("router: renderer: %w", err)
		}
		renderer = rr
	}

	// Services por módulo
	numbers := numbering.NewService(rp.seq).WithClock(clock)
	accountsSvc := accounts.NewService(rp.accounts, authn, accounts.WithLogger(log))
	clientsSvc := clients.NewService(rp.clients)
	quotesSvc := quotes.NewService(rp.quotes, clientsSvc, numbers)
	invoicesSvc := invoices.NewService(invoices.Deps{
		Repo:          rp.invoices,
		Clients:       clientsSvc,
		Numbers:       numbers,
		Issuer:        caps,
		Verifier:      caps,
		Renderer:      renderer,
		HTML:          htmldoc.New(),
		Log:           log,
		PublicBaseURL: cfg.PublicBaseURL,
		CapabilityTTL: cfg.CapabilityTTL,
	})
	paymentsSvc := payments.NewService(rp.payments, rp.invoices, log, opts.Metrics)
	reportsSvc := reports.NewService(rp.reports, log, opts.Metrics)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(log, opts.Metrics))
	r.Use(middleware.AuthContext(authn, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas públicas
	accounts.RegisterRoutes(r, accountsSvc, log)
	invoices.RegisterPublicRoutes(r, invoicesSvc, log)

	// Rutas con sesión
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth)
		clients.RegisterRoutes(pr, clientsSvc, log)
		quotes.RegisterRoutes(pr, quotesSvc, log)
		invoices.RegisterRoutes(pr, invoicesSvc, log)
		payments.RegisterRoutes(pr, paymentsSvc, log)
		reports.RegisterRoutes(pr, reportsSvc, log)
	})

	return r, nil
}
