package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sendor/native/launch"
	"sendor/observability"
)

// LaunchEngine is the slice of engine behaviour the HTTP layer depends on.
type LaunchEngine interface {
	Initialize(admin, feeRecipient [20]byte, launchFee *big.Int) (*launch.Global, error)
	CreateLaunch(creator [20]byte, basePrice, slope uint64, decimals uint8, name, symbol, uri string) (*launch.Launch, error)
	Buy(buyer [20]byte, launchID, qty, maxCost uint64) (uint64, error)
	Sell(seller [20]byte, launchID, qty, minPayout uint64) (uint64, error)
	Transfer(from, to [20]byte, launchID, qty uint64) error
	AdvanceDay(caller [20]byte, launchID uint64) (*launch.Launch, error)
	SetWindows(caller [20]byte, launchID uint64, window1Start, window2Start int64) (*launch.Launch, error)
	LaunchByID(launchID uint64) (*launch.Launch, error)
	MetadataByID(launchID uint64) (*launch.Metadata, error)
	TokenBalance(launchID uint64, addr [20]byte) (uint64, error)
	QuoteBuy(launchID, qty uint64) (uint64, error)
	QuoteSell(launchID, qty uint64) (uint64, error)
}

// StateCommitter finalises or discards the staged writes of one operation.
type StateCommitter interface {
	Commit() error
	Reset()
}

// Server exposes launch operations over HTTP. Every access to the shared
// state goes through the server lock: writers hold it exclusively for the
// duration of their staged operation, readers share it. The engine assumes no
// concurrent writer for the duration of each call.
type Server struct {
	mu      sync.RWMutex
	engine  LaunchEngine
	state   StateCommitter
	logger  *slog.Logger
	metrics *observability.LaunchMetrics
}

// NewServer wires the HTTP layer to an engine and its state committer.
func NewServer(engine LaunchEngine, state StateCommitter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  engine,
		state:   state,
		logger:  logger,
		metrics: observability.Launch(),
	}
}

// Router assembles the chi handler tree for the server.
func (s *Server) Router(limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/initialize", s.handleInitialize)
		v1.Post("/launches", s.handleCreateLaunch)
		v1.Get("/launches/{id}", s.handleGetLaunch)
		v1.Get("/launches/{id}/quote", s.handleQuote)
		v1.Get("/launches/{id}/balances/{address}", s.handleTokenBalance)
		v1.Post("/launches/{id}/buy", s.handleBuy)
		v1.Post("/launches/{id}/sell", s.handleSell)
		v1.Post("/launches/{id}/transfer", s.handleTransfer)
		v1.Post("/launches/{id}/advance-day", s.handleAdvanceDay)
		v1.Post("/launches/{id}/windows", s.handleSetWindows)
	})
	return r
}

// view runs a read-only call under the shared lock so it never observes the
// state overlay mid-mutation.
func (s *Server) view(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

// mutate serialises a state-changing call and commits or resets the staged
// writes depending on the outcome.
func (s *Server) mutate(op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		s.state.Reset()
		s.metrics.ObserveRejection(op, reasonForError(err))
		return err
	}
	if err := s.state.Commit(); err != nil {
		s.state.Reset()
		s.metrics.ObserveRejection(op, "commit")
		return err
	}
	s.metrics.ObserveOperation(op)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("launch operation failed", "op", op, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, launch.ErrLaunchNotFound):
		return http.StatusNotFound
	case errors.Is(err, launch.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, launch.ErrInvalidParams),
		errors.Is(err, launch.ErrInvalidDecimals),
		errors.Is(err, launch.ErrInvalidWindowTimes),
		errors.Is(err, launch.ErrMathOverflow):
		return http.StatusBadRequest
	case errors.Is(err, launch.ErrNotInTradingWindow),
		errors.Is(err, launch.ErrActionAlreadyPerformed),
		errors.Is(err, launch.ErrExceedsSellLimit),
		errors.Is(err, launch.ErrExceedsTransferLimit),
		errors.Is(err, launch.ErrSlippageExceeded),
		errors.Is(err, launch.ErrPayoutTooLow),
		errors.Is(err, launch.ErrInsufficientFunds),
		errors.Is(err, launch.ErrInsufficientLiquidity),
		errors.Is(err, launch.ErrInsufficientSupply),
		errors.Is(err, launch.ErrAlreadyInitialized),
		errors.Is(err, launch.ErrNotInitialized):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func reasonForError(err error) string {
	switch {
	case errors.Is(err, launch.ErrNotInTradingWindow):
		return "window_closed"
	case errors.Is(err, launch.ErrActionAlreadyPerformed):
		return "already_acted"
	case errors.Is(err, launch.ErrExceedsSellLimit):
		return "sell_limit"
	case errors.Is(err, launch.ErrExceedsTransferLimit):
		return "transfer_limit"
	case errors.Is(err, launch.ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, launch.ErrPayoutTooLow):
		return "payout_floor"
	case errors.Is(err, launch.ErrInsufficientFunds):
		return "funds"
	case errors.Is(err, launch.ErrInsufficientLiquidity):
		return "liquidity"
	case errors.Is(err, launch.ErrInsufficientSupply):
		return "supply"
	case errors.Is(err, launch.ErrInvalidWindowTimes):
		return "windows"
	case errors.Is(err, launch.ErrMathOverflow):
		return "overflow"
	case errors.Is(err, launch.ErrUnauthorized):
		return "unauthorized"
	default:
		return "other"
	}
}
