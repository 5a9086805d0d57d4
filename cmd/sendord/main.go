package main

import (
	"flag"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sendor/config"
	"sendor/core/state"
	"sendor/native/launch"
	"sendor/observability/logging"
	"sendor/rpc"
	"sendor/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the node configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("sendord", "").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("sendord", cfg.Environment)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)
	store := launch.NewStore(manager)
	engine := launch.NewEngine()
	engine.SetState(store)

	if cfg.AdminAddress != "" && common.IsHexAddress(cfg.AdminAddress) {
		seedRegistry(engine, manager, cfg, logger)
	}

	server := rpc.NewServer(engine, manager, logger)
	limiter := rpc.NewRateLimiter(cfg.RequestsPerMinute, cfg.RequestBurst)

	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("rpc server listening", "address", cfg.RPCAddress, "network", cfg.NetworkName)
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}

// seedRegistry initialises the global registry from config on first start.
// A registry that already exists is left untouched.
func seedRegistry(engine *launch.Engine, manager *state.Manager, cfg *config.Config, logger *slog.Logger) {
	admin := common.HexToAddress(cfg.AdminAddress)
	feeRecipient := admin
	if cfg.FeeRecipient != "" && common.IsHexAddress(cfg.FeeRecipient) {
		feeRecipient = common.HexToAddress(cfg.FeeRecipient)
	}
	fee := big.NewInt(0)
	if cfg.LaunchFee != "" {
		if parsed, ok := new(big.Int).SetString(cfg.LaunchFee, 10); ok && parsed.Sign() >= 0 {
			fee = parsed
		}
	}
	if _, err := engine.Initialize(admin, feeRecipient, fee); err != nil {
		manager.Reset()
		return
	}
	if err := manager.Commit(); err != nil {
		manager.Reset()
		return
	}
	logger.Info("registry initialised", "admin", cfg.AdminAddress)
}
