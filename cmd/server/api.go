package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"curve-engine/internal/domain"
	"curve-engine/internal/engine"
	"curve-engine/internal/events"
	"curve-engine/internal/ledger"
	"curve-engine/internal/observability"
)

// server holds the HTTP layer over the settlement engine.
type server struct {
	engine  *engine.Engine
	ledger  *ledger.Memory
	bus     *events.Bus
	logger  *zap.Logger
	started time.Time
}

func newServer(eng *engine.Engine, led *ledger.Memory, bus *events.Bus, logger *zap.Logger) *server {
	return &server{
		engine:  eng,
		ledger:  led,
		bus:     bus,
		logger:  logger.Named("http"),
		started: time.Now(),
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("POST /v1/initialize", s.handleInitialize)
	mux.HandleFunc("POST /v1/params", s.handleSetParams)
	mux.HandleFunc("POST /v1/deposit", s.handleDeposit)
	mux.HandleFunc("GET /v1/config", s.handleConfig)

	mux.HandleFunc("POST /v1/pools", s.handleCreate)
	mux.HandleFunc("GET /v1/pools", s.handlePools)
	mux.HandleFunc("GET /v1/pools/{mint}", s.handlePool)
	mux.HandleFunc("GET /v1/pools/{mint}/trades", s.handleTrades)
	mux.HandleFunc("GET /v1/pools/{mint}/quote", s.handleQuote)

	mux.HandleFunc("POST /v1/buy", s.handleBuy)
	mux.HandleFunc("POST /v1/sell", s.handleSell)
	mux.HandleFunc("POST /v1/withdraw", s.handleWithdraw)

	mux.HandleFunc("GET /v1/balance", s.handleBalance)
	mux.HandleFunc("POST /v1/faucet", s.handleFaucet)

	mux.HandleFunc("GET /ws", s.handleWS)

	return mux
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "running",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Authority   string `json:"authority"`
		ReserveMint string `json:"reserve_mint"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	authority, err := domain.ParseIdentity(req.Authority)
	if err != nil {
		s.error(w, err)
		return
	}
	mint, err := domain.ParseAssetID(req.ReserveMint)
	if err != nil {
		s.error(w, err)
		return
	}

	cfg, err := s.engine.Initialize(r.Context(), authority, mint)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, configResponse(cfg))
}

func (s *server) handleSetParams(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller                  string `json:"caller"`
		FeeRecipient            string `json:"fee_recipient"`
		OwnerWallet             string `json:"owner_wallet"`
		PoolCreationTokenAmount uint64 `json:"pool_creation_token_amount"`
		PoolCreationFeeAmount   uint64 `json:"pool_creation_fee_amount"`
		CreationFee             uint64 `json:"creation_fee"`
		FeeBasisPoints          uint64 `json:"fee_basis_points"`
		McapLimit               uint64 `json:"mcap_limit"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseIdentity(req.Caller)
	if err != nil {
		s.error(w, err)
		return
	}
	feeRecipient, err := domain.ParseIdentity(req.FeeRecipient)
	if err != nil {
		s.error(w, err)
		return
	}
	ownerWallet, err := domain.ParseIdentity(req.OwnerWallet)
	if err != nil {
		s.error(w, err)
		return
	}

	cfg, err := s.engine.SetParams(r.Context(), caller, engine.Params{
		FeeRecipient:            feeRecipient,
		OwnerWallet:             ownerWallet,
		PoolCreationTokenAmount: req.PoolCreationTokenAmount,
		PoolCreationFeeAmount:   req.PoolCreationFeeAmount,
		CreationFee:             req.CreationFee,
		FeeBasisPoints:          req.FeeBasisPoints,
		McapLimit:               req.McapLimit,
	})
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse(cfg))
}

func (s *server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Amount uint64 `json:"amount"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseIdentity(req.Caller)
	if err != nil {
		s.error(w, err)
		return
	}
	if err := s.engine.Deposit(r.Context(), caller, req.Amount); err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deposited": req.Amount})
}

func (s *server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.Config(r.Context())
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse(cfg))
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller       string `json:"caller"`
		Mint         string `json:"mint"`
		InitialPrice string `json:"initial_price"`
		CurveSlope   string `json:"curve_slope"`
		SeedAmount   uint64 `json:"seed_amount"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseIdentity(req.Caller)
	if err != nil {
		s.error(w, err)
		return
	}
	mint, err := domain.ParseAssetID(req.Mint)
	if err != nil {
		s.error(w, err)
		return
	}
	initialPrice, err := sdkmath.LegacyNewDecFromStr(req.InitialPrice)
	if err != nil {
		s.error(w, engine.ErrInvalidPrice)
		return
	}
	curveSlope, err := sdkmath.LegacyNewDecFromStr(req.CurveSlope)
	if err != nil {
		s.error(w, engine.ErrInvalidSlope)
		return
	}

	pool, err := s.engine.Create(r.Context(), caller, mint, initialPrice, curveSlope, req.SeedAmount)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, poolResponse(pool))
}

func (s *server) handlePools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.engine.Pools(r.Context())
	if err != nil {
		s.error(w, err)
		return
	}
	out := make([]map[string]any, 0, len(pools))
	for _, p := range pools {
		out = append(out, poolResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handlePool(w http.ResponseWriter, r *http.Request) {
	mint, err := domain.ParseAssetID(r.PathValue("mint"))
	if err != nil {
		s.error(w, err)
		return
	}
	pool, err := s.engine.Pool(r.Context(), mint)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poolResponse(pool))
}

func (s *server) handleTrades(w http.ResponseWriter, r *http.Request) {
	mint, err := domain.ParseAssetID(r.PathValue("mint"))
	if err != nil {
		s.error(w, err)
		return
	}
	trades, err := s.engine.Trades(r.Context(), mint)
	if err != nil {
		s.error(w, err)
		return
	}
	out := make([]map[string]any, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tradeResponse(tr))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleQuote prices a hypothetical trade. Query parameters:
// side=buy|sell with amount=N tokens, or side=buy with budget=N reserve.
func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	mint, err := domain.ParseAssetID(r.PathValue("mint"))
	if err != nil {
		s.error(w, err)
		return
	}

	q := r.URL.Query()
	side := q.Get("side")
	amount, amountErr := parseUintParam(q.Get("amount"))
	budget, budgetErr := parseUintParam(q.Get("budget"))

	var quote *engine.Quote
	switch {
	case side == domain.TradeSideBuy && q.Get("budget") != "":
		if budgetErr != nil {
			s.error(w, engine.ErrInvalidAmount)
			return
		}
		quote, err = s.engine.QuoteBudget(r.Context(), mint, budget)
	case side == domain.TradeSideBuy:
		if amountErr != nil {
			s.error(w, engine.ErrInvalidAmount)
			return
		}
		quote, err = s.engine.QuoteBuy(r.Context(), mint, amount)
	case side == domain.TradeSideSell:
		if amountErr != nil {
			s.error(w, engine.ErrInvalidAmount)
			return
		}
		quote, err = s.engine.QuoteSell(r.Context(), mint, amount)
	default:
		s.error(w, engine.ErrInvalidAmount)
		return
	}
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mint":           quote.Mint.String(),
		"side":           quote.Side,
		"token_amount":   quote.TokenAmount,
		"reserve_amount": quote.ReserveAmount,
		"fee_amount":     quote.FeeAmount,
		"spot_price":     quote.SpotPrice,
	})
}

func (s *server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller          string `json:"caller"`
		Mint            string `json:"mint"`
		TokenAmount     uint64 `json:"token_amount"`
		MaxReserveSpend uint64 `json:"max_reserve_spend"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	caller, mint, ok := s.parseTradeIDs(w, req.Caller, req.Mint)
	if !ok {
		return
	}
	trade, err := s.engine.Buy(r.Context(), caller, mint, req.TokenAmount, req.MaxReserveSpend)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse(trade))
}

func (s *server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller           string `json:"caller"`
		Mint             string `json:"mint"`
		TokenAmount      uint64 `json:"token_amount"`
		MinReserveReturn uint64 `json:"min_reserve_return"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	caller, mint, ok := s.parseTradeIDs(w, req.Caller, req.Mint)
	if !ok {
		return
	}
	trade, err := s.engine.Sell(r.Context(), caller, mint, req.TokenAmount, req.MinReserveReturn)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse(trade))
}

func (s *server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Mint   string `json:"mint"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	caller, mint, ok := s.parseTradeIDs(w, req.Caller, req.Mint)
	if !ok {
		return
	}
	tokens, reserve, err := s.engine.Withdraw(r.Context(), caller, mint)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens_withdrawn": tokens,
		"reserve_proceeds": reserve,
	})
}

func (s *server) handleBalance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	account, err := domain.AccountRefFromString(q.Get("account"))
	if err != nil {
		s.error(w, err)
		return
	}
	asset, err := domain.ParseAssetID(q.Get("asset"))
	if err != nil {
		s.error(w, err)
		return
	}
	bal, err := s.ledger.BalanceOf(r.Context(), account, asset)
	if err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": account.String(),
		"asset":   asset.String(),
		"balance": bal,
	})
}

// handleFaucet credits the in-memory ledger. Development convenience; a
// production deployment fronts a real settlement layer instead.
func (s *server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string `json:"account"`
		Asset   string `json:"asset"`
		Amount  uint64 `json:"amount"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	account, err := domain.AccountRefFromString(req.Account)
	if err != nil {
		s.error(w, err)
		return
	}
	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		s.error(w, err)
		return
	}
	if err := s.ledger.Credit(account, asset, req.Amount); err != nil {
		s.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credited": req.Amount})
}

func (s *server) parseTradeIDs(w http.ResponseWriter, callerStr, mintStr string) (domain.Identity, domain.AssetID, bool) {
	caller, err := domain.ParseIdentity(callerStr)
	if err != nil {
		s.error(w, err)
		return domain.Identity{}, domain.AssetID{}, false
	}
	mint, err := domain.ParseAssetID(mintStr)
	if err != nil {
		s.error(w, err)
		return domain.Identity{}, domain.AssetID{}, false
	}
	return caller, mint, true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json: " + err.Error()})
		return false
	}
	return true
}

// error maps engine and domain errors onto HTTP status codes.
func (s *server) error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotInitialized),
		errors.Is(err, engine.ErrPoolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyInitialized),
		errors.Is(err, engine.ErrPoolAlreadyExists),
		errors.Is(err, engine.ErrPoolWithdrawn),
		errors.Is(err, engine.ErrCurveComplete):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrZeroAmount),
		errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidPrice),
		errors.Is(err, engine.ErrInvalidSlope),
		errors.Is(err, domain.ErrInvalidIdentity),
		errors.Is(err, domain.ErrInvalidAssetID):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrSlippageExceeded),
		errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrInsufficientReserves),
		errors.Is(err, engine.ErrInsufficientLiquidity),
		errors.Is(err, engine.ErrArithmeticOverflow),
		errors.Is(err, ledger.ErrBalanceOverflow):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func configResponse(cfg *domain.GlobalConfig) map[string]any {
	return map[string]any{
		"initialized":                cfg.Initialized,
		"authority":                  cfg.Authority.String(),
		"fee_recipient":              cfg.FeeRecipient.String(),
		"owner_wallet":               cfg.OwnerWallet.String(),
		"reserve_mint":               cfg.ReserveMint.String(),
		"reserve_vault":              cfg.ReserveVault.String(),
		"reserve_supply":             cfg.ReserveSupply,
		"pool_creation_token_amount": cfg.PoolCreationTokenAmount,
		"pool_creation_fee_amount":   cfg.PoolCreationFeeAmount,
		"creation_fee":               cfg.CreationFee,
		"fee_basis_points":           cfg.FeeBasisPoints,
		"mcap_limit":                 cfg.McapLimit,
		"updated_at":                 cfg.UpdatedAt,
	}
}

func poolResponse(p *domain.BondingCurvePool) map[string]any {
	return map[string]any{
		"mint":               p.Mint.String(),
		"creator":            p.Creator.String(),
		"initial_price":      p.InitialPrice.String(),
		"curve_slope":        p.CurveSlope.String(),
		"token_reserves":     p.TokenReserves,
		"token_total_supply": p.TokenTotalSupply,
		"token_vault":        p.TokenVault.String(),
		"reserve_vault":      p.ReserveVault.String(),
		"spot_price":         p.SpotPrice().String(),
		"market_cap":         p.MarketCap().String(),
		"mcap_limit":         p.McapLimit,
		"complete":           p.Complete,
		"withdrawn":          p.Withdrawn,
		"created_at":         p.CreatedAt,
		"updated_at":         p.UpdatedAt,
	}
}

func tradeResponse(t *domain.TradeEvent) map[string]any {
	return map[string]any{
		"trade_id":       t.TradeID,
		"mint":           t.Mint.String(),
		"user":           t.User.String(),
		"side":           t.Side,
		"token_amount":   t.TokenAmount,
		"reserve_amount": t.ReserveAmount,
		"fee_amount":     t.FeeAmount,
		"token_reserves": t.TokenReserves,
		"price":          t.Price,
		"timestamp":      t.Timestamp,
	}
}

func parseUintParam(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
