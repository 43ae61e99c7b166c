// Package server assembles the dispute platform: database, stores,
// services, and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/brillianbank/dispute-platform/pkg/admin"
	"github.com/brillianbank/dispute-platform/pkg/auth"
	"github.com/brillianbank/dispute-platform/pkg/chatbot"
	"github.com/brillianbank/dispute-platform/pkg/database/migrate"
	"github.com/brillianbank/dispute-platform/pkg/dispute"
	"github.com/brillianbank/dispute-platform/pkg/health"
	"github.com/brillianbank/dispute-platform/pkg/mail"
	"github.com/brillianbank/dispute-platform/pkg/notification"
	"github.com/brillianbank/dispute-platform/pkg/platform"
	"github.com/brillianbank/dispute-platform/pkg/transaction"
	"github.com/brillianbank/dispute-platform/pkg/user"
)

// Version is set at build time.
var Version = "dev"

// Server is the assembled platform.
type Server struct {
	cfg     *platform.Config
	httpSrv *http.Server
	checker *health.Checker

	db    *sql.DB
	redis *redis.Client
	bot   *chatbot.Service
}

// New builds the platform from configuration. The returned server owns
// the database and Redis connections; release them with Close.
func New(cfg *platform.Config) (*Server, error) {
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	s := &Server{
		cfg:     cfg,
		checker: health.NewChecker(),
		db:      db,
		redis:   redisClient,
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.buildHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or the
// listener fails. Shutdown drains in-flight requests up to the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", s.cfg.Server.Address, "version", Version)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.checker.SetReady()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.checker.SetDraining()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Close releases database and cache connections.
func (s *Server) Close() error {
	if s.bot != nil {
		_ = s.bot.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return s.db.Close()
}

func openDatabase(cfg platform.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := migrate.Run(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (s *Server) buildHandler() http.Handler {
	cfg := s.cfg

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMiddle := auth.Middleware(tokens)

	var mailer mail.Mailer = mail.Noop{}
	if cfg.Mail.Enabled {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			BankName: cfg.Mail.BankName,
			Helpline: cfg.Mail.Helpline,
		})
	}

	users := user.NewPostgresStore(s.db)
	transactions := transaction.NewPostgresStore(s.db)
	notifications := notification.NewPostgresStore(s.db)
	disputes := dispute.NewPostgresStore(s.db)
	apiKeys := admin.NewPostgresStore(s.db)

	var conversations chatbot.Store
	if s.redis != nil {
		conversations = chatbot.NewRedisStore(s.redis, cfg.Chatbot.SessionTTL)
	} else {
		memStore := chatbot.NewMemoryStore(cfg.Chatbot.SessionTTL)
		memStore.StartCleanupRoutine(cfg.Chatbot.CleanupInterval)
		conversations = memStore
	}

	userService := user.NewService(users, tokens, mailer)
	transactionService := transaction.NewService(transactions, users)
	disputeService := dispute.NewService(disputes, users, transactions, notifications, mailer, cfg.Dispute.RefundDelay)
	adminService := admin.NewService(apiKeys, users, transactions, cfg.Auth.JWTSecret)
	s.bot = chatbot.NewService(conversations, users, disputeService)

	mux := http.NewServeMux()
	user.NewHandler(userService).Register(mux, authMiddle)
	transaction.NewHandler(transactionService).Register(mux, authMiddle)
	notification.NewHandler(notifications).Register(mux, authMiddle)
	dispute.NewHandler(disputeService).Register(mux, authMiddle)
	admin.NewHandler(adminService).Register(mux, authMiddle)
	chatbot.NewHandler(s.bot).Register(mux, tokens)

	s.checker.AddProbe("database", func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
	if s.redis != nil {
		s.checker.AddProbe("redis", func(ctx context.Context) error {
			return s.redis.Ping(ctx).Err()
		})
	}
	mux.HandleFunc("GET /healthz", s.checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.checker.ReadinessHandler())

	return logRequests(mux)
}

// logRequests logs one line per request with method, path, status, and
// duration.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
