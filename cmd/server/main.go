package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"shopbill/internal/config"
	"shopbill/internal/email/noop"
	"shopbill/internal/email/ses"
	"shopbill/internal/handler"
	"shopbill/internal/idempotency"
	"shopbill/internal/logger"
	"shopbill/internal/port"
	"shopbill/internal/repository/memory"
	"shopbill/internal/repository/postgres"
	"shopbill/internal/router"
	"shopbill/internal/service"
	s3storage "shopbill/internal/storage/s3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// repos is the storage surface the services are wired against.
type repos struct {
	txm       port.TxManager
	counters  port.InvoiceCounterRepository
	invoices  port.InvoiceRepository
	payments  port.PaymentRepository
	catalog   port.CatalogRepository
	customers port.CustomerRepository
	users     port.UserRepository
	pinger    handler.Pinger
	close     func() error
}

func openRepos(cfg *config.DBConfig, l zerolog.Logger) (*repos, error) {
	switch cfg.Driver {
	case "memory":
		l.Warn().Msg("using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &repos{
			txm:       store,
			counters:  store.Counters(),
			invoices:  store.Invoices(),
			payments:  store.Payments(),
			catalog:   store.Catalog(),
			customers: store.Customers(),
			users:     store.Users(),
			close:     func() error { return nil },
		}, nil
	case "postgres", "":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return &repos{
			txm:       postgres.NewTxManager(db),
			counters:  postgres.NewInvoiceCounterRepo(db),
			invoices:  postgres.NewInvoiceRepo(db),
			payments:  postgres.NewPaymentRepo(db),
			catalog:   postgres.NewCatalogRepo(db),
			customers: postgres.NewCustomerRepo(db),
			users:     postgres.NewUserRepo(db),
			pinger:    db,
			close:     db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	loc, err := cfg.Billing.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := openRepos(&cfg.DB, l)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer r.close()

	var idem port.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb, err := idempotency.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		idem = idempotency.NewRedisStore(rdb, cfg.Redis)
	} else {
		l.Info().Msg("redis not configured; idempotency keys are ignored")
	}

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(&cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(l)
	}

	// Services
	numbers := service.NewInvoiceNumberAllocator(r.counters, loc)
	stock := service.NewStockLedger(r.catalog)
	ledger := service.NewCustomerAccountLedger(r.customers)
	recorder := service.NewPaymentRecorder(r.invoices, r.payments, ledger)
	invoiceSvc := service.NewInvoiceService(
		r.txm, r.invoices, r.payments, r.customers,
		numbers, stock, ledger, recorder, idem,
		cfg.Billing, time.Now, logger.WithComponent(l, "invoice"),
	)
	receiptSvc := service.NewReceiptService(invoiceSvc, r.customers, storage, emailSender, cfg.S3, loc, logger.WithComponent(l, "receipt"))
	authSvc := service.NewAuthService(r.users, cfg.JWT)
	catalogSvc := service.NewCatalogService(r.txm, r.catalog, stock, logger.WithComponent(l, "catalog"))

	// Handlers
	if err := handler.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	authH := handler.NewAuthHandler(authSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc, receiptSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	healthH := handler.NewHealthHandler(r.pinger)

	engine := router.Setup(authSvc, authH, invoiceH, catalogH, healthH, cfg.CORS.AllowedOrigins, l)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("addr", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
