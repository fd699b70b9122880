package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/ioaccount/params"
	"github.com/uhyunpark/ioaccount/pkg/account"
	"github.com/uhyunpark/ioaccount/pkg/address"
	"github.com/uhyunpark/ioaccount/pkg/api"
	"github.com/uhyunpark/ioaccount/pkg/storage"
	"github.com/uhyunpark/ioaccount/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("") // "" means load from .env in current directory
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Setup logging (write to both console and file; console only when LOG_FILE is empty)
	var logger *zap.Logger
	if cfg.Node.LogFile == "" {
		logger, err = util.NewLogger(cfg.Node.LogLevel)
	} else {
		logger, err = util.NewLoggerWithFile(cfg.Node.LogFile, cfg.Node.LogLevel)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile)

	// ---- Network mode ----
	// Must be fixed before any address is rendered or parsed.
	network, err := cfg.AddressNetwork()
	if err != nil {
		sugar.Fatalw("invalid_network", "err", err)
	}
	if err := address.SetNetwork(network); err != nil {
		sugar.Fatalw("set_network_failed", "err", err)
	}
	sugar.Infow("network_selected", "network", network.String(), "prefix", network.Prefix())

	// ---- Directory of public records ----
	var dir *storage.Directory
	if cfg.Node.DirectoryPath == "" {
		dir, err = storage.OpenInMemory()
	} else {
		dir, err = storage.OpenDirectory(cfg.Node.DirectoryPath)
	}
	if err != nil {
		sugar.Fatalw("directory_open_failed", "err", err)
	}
	defer dir.Close()

	records, err := dir.List()
	if err != nil {
		sugar.Fatalw("directory_list_failed", "err", err)
	}
	sugar.Infow("directory_opened", "path", cfg.Node.DirectoryPath, "known_identities", len(records))

	accounts := account.NewAccounts(
		account.WithLogger(logger.Named("accounts")),
		account.WithDirectory(dir),
	)

	// ---- API Server ----
	apiServer := api.NewServer(accounts, logger.Named("api"), cfg.Node.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start(cfg.Node.APIAddr)
	}()

	select {
	case <-ctx.Done():
		sugar.Info("shutting_down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("api_server_failed", "err", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("api_shutdown_failed", "err", err)
	}
}
