package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"portfolio/internal/chat"
	grpcserver "portfolio/internal/grpc"
	"portfolio/internal/identity"
	"portfolio/internal/rules"
	"portfolio/internal/server"
	"portfolio/internal/stats"
	"portfolio/internal/store"
	"portfolio/internal/tcpsync"
	"portfolio/internal/udpnotify"
	"portfolio/internal/websocket"
	"portfolio/pkg/config"
	"portfolio/pkg/database"
	"portfolio/pkg/models"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.SetupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	// Accounts always live in sqlite, whichever backend holds the documents.
	db, err := database.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	base, listeners, err := openStore(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer base.Close()

	tcpServer := tcpsync.New(cfg.TCPAddr)
	go func() {
		if err := tcpServer.Start(ctx); err != nil {
			log.Fatalf("Failed to serve TCP change feed: %v", err)
		}
	}()
	udpServer := udpnotify.New(cfg.UDPAddr)
	go func() {
		if err := udpServer.Start(ctx); err != nil {
			log.Fatalf("Failed to serve UDP notifications: %v", err)
		}
	}()

	hub := websocket.NewHub()
	go hub.Run(ctx)
	log.Info("Websocket hub started")

	secret := []byte(cfg.JWTSecret)
	repo := identity.NewRepo(db, secret)
	if cfg.AdminPassword != "" {
		if err := repo.EnsureUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to ensure admin account: %v", err)
		}
	}
	var google *identity.Google
	if cfg.GoogleClientID != "" {
		google = identity.NewGoogle(repo, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	// srv is set before the first write can reach the hook.
	var srv *server.Server
	st := store.Observe(base, func(evt models.ChangeEvent) {
		tcpServer.Publish(evt)
		if srv != nil {
			srv.Invalidate(evt)
		}
	})
	srv = server.New(server.Deps{
		Store:       st,
		Identity:    repo,
		Google:      google,
		Chat:        chat.NewClient(cfg.GroqAPIKey, cfg.ChatEndpoint, cfg.ChatModel),
		Hub:         hub,
		Notifier:    udpServer,
		Tracker:     stats.New(st, cfg.AppID),
		Listeners:   listeners,
		Secret:      secret,
		AdminEmail:  cfg.AdminEmail,
		Origins:     cfg.FrontendURLs,
		CacheTTL:    cfg.CacheTTL,
		ViewTimeout: 5 * time.Second,
	})

	grpcServer := grpc.NewServer()
	grpcserver.NewServer(st, rules.New(cfg.AdminEmail), secret).Register(grpcServer)
	reflection.Register(grpcServer)
	go func() {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		log.Infof("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	httpServer := &http.Server{Addr: cfg.Port, Handler: srv.Handler()}
	go func() {
		log.Infof("HTTP API listening on %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdown); err != nil {
		log.WithError(err).Warn("Failed to shut down HTTP server")
	}
	grpcServer.GracefulStop()
}

// openStore picks the document backend. The sql backend shares db with the accounts
// table and is seeded from cfg.SeedPath when that file exists.
func openStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (store.Store, func() int, error) {
	switch cfg.StoreBackend {
	case "firestore":
		var opts []option.ClientOption
		if cfg.FirestoreCreds != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCreds))
		}
		fs, err := store.NewFirestoreStore(ctx, cfg.FirestoreProject, opts...)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using firestore project %s", cfg.FirestoreProject)
		return fs, nil, nil
	case "sql", "":
		sq := store.NewSQLStore(db)
		if _, err := os.Stat(cfg.SeedPath); err == nil {
			n, err := sq.Seed(cfg.SeedPath)
			if err != nil {
				return nil, nil, err
			}
			log.Infof("Seeded %d documents into %s", n, cfg.DBPath)
		} else {
			log.Warnf("Seed file %s not found; skip seeding", cfg.SeedPath)
		}
		return sq, sq.Listeners, nil
	}
	return nil, nil, errors.New("unknown store backend " + cfg.StoreBackend)
}
