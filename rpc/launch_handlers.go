package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"sendor/native/launch"
)

type initializeParams struct {
	Admin        string `json:"admin"`
	FeeRecipient string `json:"feeRecipient"`
	LaunchFee    string `json:"launchFee,omitempty"`
}

type createLaunchParams struct {
	Caller    string `json:"caller"`
	BasePrice uint64 `json:"basePrice"`
	Slope     uint64 `json:"slope"`
	Decimals  uint8  `json:"decimals"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	URI       string `json:"uri,omitempty"`
}

type tradeParams struct {
	Caller string `json:"caller"`
	Qty    uint64 `json:"qty"`
	// MaxCost bounds buys; MinPayout bounds sells. The unused one is ignored.
	MaxCost   uint64 `json:"maxCost,omitempty"`
	MinPayout uint64 `json:"minPayout,omitempty"`
}

type transferParams struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Qty    uint64 `json:"qty"`
}

type advanceDayParams struct {
	Caller string `json:"caller"`
}

type setWindowsParams struct {
	Caller       string `json:"caller"`
	Window1Start int64  `json:"window1Start"`
	Window2Start int64  `json:"window2Start"`
}

type launchResult struct {
	ID            uint64 `json:"id"`
	Decimals      uint8  `json:"decimals"`
	BasePrice     uint64 `json:"basePrice"`
	Slope         uint64 `json:"slope"`
	CurrentSupply uint64 `json:"currentSupply"`
	TradingDay    uint64 `json:"tradingDay"`
	Window1Start  int64  `json:"window1Start"`
	Window2Start  int64  `json:"window2Start"`
	WindowLen     int64  `json:"windowLen"`
	Name          string `json:"name,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
}

type tradeResult struct {
	LaunchID uint64 `json:"launchId"`
	Qty      uint64 `json:"qty"`
	Amount   uint64 `json:"amount"`
}

type quoteResult struct {
	LaunchID uint64 `json:"launchId"`
	Side     string `json:"side"`
	Qty      uint64 `json:"qty"`
	Amount   uint64 `json:"amount"`
}

type balanceResult struct {
	LaunchID uint64 `json:"launchId"`
	Address  string `json:"address"`
	Balance  uint64 `json:"balance"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func parseAddress(w http.ResponseWriter, value string) ([20]byte, bool) {
	if !common.IsHexAddress(value) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid address"})
		return [20]byte{}, false
	}
	return common.HexToAddress(value), true
}

func launchIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid launch id"})
		return 0, false
	}
	return id, true
}

func formatLaunch(l *launch.Launch, meta *launch.Metadata) launchResult {
	result := launchResult{
		ID:            l.ID,
		Decimals:      l.Decimals,
		BasePrice:     l.BasePrice,
		Slope:         l.Slope,
		CurrentSupply: l.CurrentSupply,
		TradingDay:    l.TradingDay,
		Window1Start:  l.Window1Start,
		Window2Start:  l.Window2Start,
		WindowLen:     launch.WindowDuration,
	}
	if meta != nil {
		result.Name = meta.Name
		result.Symbol = meta.Symbol
	}
	return result
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var params initializeParams
	if !decodeBody(w, r, &params) {
		return
	}
	admin, ok := parseAddress(w, params.Admin)
	if !ok {
		return
	}
	feeRecipient, ok := parseAddress(w, params.FeeRecipient)
	if !ok {
		return
	}
	fee := big.NewInt(0)
	if params.LaunchFee != "" {
		parsed, ok := new(big.Int).SetString(params.LaunchFee, 10)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid launch fee"})
			return
		}
		fee = parsed
	}
	var global *launch.Global
	err := s.mutate("initialize", func() error {
		var innerErr error
		global, innerErr = s.engine.Initialize(admin, feeRecipient, fee)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "initialize", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"admin":        params.Admin,
		"feeRecipient": params.FeeRecipient,
		"launchFee":    global.LaunchFee.String(),
	})
}

func (s *Server) handleCreateLaunch(w http.ResponseWriter, r *http.Request) {
	var params createLaunchParams
	if !decodeBody(w, r, &params) {
		return
	}
	caller, ok := parseAddress(w, params.Caller)
	if !ok {
		return
	}
	var created *launch.Launch
	err := s.mutate("create", func() error {
		var innerErr error
		created, innerErr = s.engine.CreateLaunch(caller, params.BasePrice, params.Slope, params.Decimals, params.Name, params.Symbol, params.URI)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, formatLaunch(created, &launch.Metadata{Name: params.Name, Symbol: params.Symbol}))
}

func (s *Server) handleGetLaunch(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	var l *launch.Launch
	var meta *launch.Metadata
	err := s.view(func() error {
		var innerErr error
		l, innerErr = s.engine.LaunchByID(id)
		if innerErr != nil {
			return innerErr
		}
		if m, metaErr := s.engine.MetadataByID(id); metaErr == nil {
			meta = m
		}
		return nil
	})
	if err != nil {
		s.writeError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, formatLaunch(l, meta))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	side := r.URL.Query().Get("side")
	qty, err := strconv.ParseUint(r.URL.Query().Get("qty"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid qty"})
		return
	}
	var amount uint64
	switch side {
	case "buy", "sell":
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "side must be buy or sell"})
		return
	}
	err = s.view(func() error {
		var innerErr error
		if side == "buy" {
			amount, innerErr = s.engine.QuoteBuy(id, qty)
		} else {
			amount, innerErr = s.engine.QuoteSell(id, qty)
		}
		return innerErr
	})
	if err != nil {
		s.writeError(w, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResult{LaunchID: id, Side: side, Qty: qty, Amount: amount})
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	addr, ok := parseAddress(w, chi.URLParam(r, "address"))
	if !ok {
		return
	}
	var balance uint64
	err := s.view(func() error {
		var innerErr error
		balance, innerErr = s.engine.TokenBalance(id, addr)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "balance", err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResult{LaunchID: id, Address: chi.URLParam(r, "address"), Balance: balance})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	var params tradeParams
	if !decodeBody(w, r, &params) {
		return
	}
	buyer, ok := parseAddress(w, params.Caller)
	if !ok {
		return
	}
	var cost uint64
	err := s.mutate("buy", func() error {
		var innerErr error
		cost, innerErr = s.engine.Buy(buyer, id, params.Qty, params.MaxCost)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "buy", err)
		return
	}
	s.publishSupply(id)
	writeJSON(w, http.StatusOK, tradeResult{LaunchID: id, Qty: params.Qty, Amount: cost})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	var params tradeParams
	if !decodeBody(w, r, &params) {
		return
	}
	seller, ok := parseAddress(w, params.Caller)
	if !ok {
		return
	}
	var payout uint64
	err := s.mutate("sell", func() error {
		var innerErr error
		payout, innerErr = s.engine.Sell(seller, id, params.Qty, params.MinPayout)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "sell", err)
		return
	}
	s.publishSupply(id)
	writeJSON(w, http.StatusOK, tradeResult{LaunchID: id, Qty: params.Qty, Amount: payout})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	var params transferParams
	if !decodeBody(w, r, &params) {
		return
	}
	from, ok := parseAddress(w, params.Caller)
	if !ok {
		return
	}
	to, ok := parseAddress(w, params.To)
	if !ok {
		return
	}
	err := s.mutate("transfer", func() error {
		return s.engine.Transfer(from, to, id, params.Qty)
	})
	if err != nil {
		s.writeError(w, "transfer", err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResult{LaunchID: id, Qty: params.Qty})
}

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	var params advanceDayParams
	if !decodeBody(w, r, &params) {
		return
	}
	caller, ok := parseAddress(w, params.Caller)
	if !ok {
		return
	}
	var advanced *launch.Launch
	err := s.mutate("advance_day", func() error {
		var innerErr error
		advanced, innerErr = s.engine.AdvanceDay(caller, id)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "advance_day", err)
		return
	}
	writeJSON(w, http.StatusOK, formatLaunch(advanced, nil))
}

func (s *Server) handleSetWindows(w http.ResponseWriter, r *http.Request) {
	id, ok := launchIDParam(w, r)
	if !ok {
		return
	}
	var params setWindowsParams
	if !decodeBody(w, r, &params) {
		return
	}
	caller, ok := parseAddress(w, params.Caller)
	if !ok {
		return
	}
	var updated *launch.Launch
	err := s.mutate("set_windows", func() error {
		var innerErr error
		updated, innerErr = s.engine.SetWindows(caller, id, params.Window1Start, params.Window2Start)
		return innerErr
	})
	if err != nil {
		s.writeError(w, "set_windows", err)
		return
	}
	writeJSON(w, http.StatusOK, formatLaunch(updated, nil))
}

func (s *Server) publishSupply(id uint64) {
	var l *launch.Launch
	err := s.view(func() error {
		var innerErr error
		l, innerErr = s.engine.LaunchByID(id)
		return innerErr
	})
	if err != nil {
		return
	}
	s.metrics.SetSupply(strconv.FormatUint(id, 10), float64(l.CurrentSupply))
}
