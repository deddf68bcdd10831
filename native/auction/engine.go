package auction

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync/atomic"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"editionhouse/core/events"
	"editionhouse/core/types"
	"editionhouse/native/common"
	"editionhouse/native/fees"
	"editionhouse/observability/metrics"
)

// ModuleName identifies the engine to the pause guard.
const ModuleName = "auction"

// TracerName names the tracer operation spans are recorded under.
const TracerName = "editionhouse/native/auction"

type engineState interface {
	AuctionSettingsGet() (*Settings, bool, error)
	AuctionSettingsPut(settings *Settings) error
	EnglishAuctionGet() (*EnglishAuction, bool, error)
	EnglishAuctionPut(auction *EnglishAuction) error
	EnglishBidAppend(bid *Bid) error
	EnglishBids() ([]*Bid, error)
	DutchAuctionGet() (*DutchAuction, bool, error)
	DutchAuctionPut(auction *DutchAuction) error
	FeeTiersGet() (fees.Table, error)
	FeeTiersPut(table fees.Table) error
	DiscountGet(wallet [20]byte) (bool, error)
	DiscountPut(wallet [20]byte, eligible bool) error
	DiscountWallets() ([][20]byte, error)
	TokenClaimedGet(tokenID uint64) (bool, error)
	TokenClaimedPut(tokenID uint64) error
	ClaimedTokens() ([]uint64, error)
	ServiceFeesGet() (*big.Int, error)
	ServiceFeesPut(amount *big.Int) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	Snapshot() int
	RevertToSnapshot(id int)
}

// Engine runs the English and Dutch auctions of a single collectible series
// and settles their proceeds. Every state-changing operation is atomic: on
// error the state is reverted to where the operation began and no events are
// emitted.
type Engine struct {
	state    engineState
	registry Registry
	emitter  events.Emitter
	logger   *slog.Logger
	metrics  *metrics.AuctionMetrics
	tracer   trace.Tracer
	hook     TransferHook
	nowFn    func() int64
	address  [20]byte

	entered atomic.Bool
	pending []*types.Event
}

// NewEngine constructs an auction engine holding funds under address.
func NewEngine(address [20]byte) *Engine {
	return &Engine{
		address: address,
		emitter: events.NoopEmitter{},
		logger:  slog.Default(),
		metrics: metrics.Auction(),
		tracer:  otel.Tracer(TracerName),
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetLogger configures the structured logger. Passing nil restores slog.Default.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

// SetMetrics overrides the metrics sink; nil disables metrics.
func (e *Engine) SetMetrics(m *metrics.AuctionMetrics) { e.metrics = m }

// SetTracer overrides the tracer used for operation spans. Passing nil
// restores the global provider's tracer.
func (e *Engine) SetTracer(tracer trace.Tracer) {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	e.tracer = tracer
}

// SetTransferHook installs the callback notified after every outgoing credit.
func (e *Engine) SetTransferHook(hook TransferHook) { e.hook = hook }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Address returns the account that escrows bids and accrued fees.
func (e *Engine) Address() [20]byte { return e.address }

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) emit(evt *types.Event) {
	if evt == nil {
		return
	}
	e.pending = append(e.pending, evt)
}

// execute runs fn as one atomic, non-reentrant operation.
func (e *Engine) execute(op string, fn func() error) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	tracer := e.tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	_, span := tracer.Start(context.Background(), "auction."+op, trace.WithAttributes(attribute.String("auction.op", op)))
	defer span.End()

	if !e.entered.CompareAndSwap(false, true) {
		e.reject(span, op, ErrReentrantCall)
		return ErrReentrantCall
	}
	defer e.entered.Store(false)

	snap := e.state.Snapshot()
	e.pending = nil
	if err := fn(); err != nil {
		e.state.RevertToSnapshot(snap)
		e.pending = nil
		e.reject(span, op, err)
		return err
	}
	span.SetAttributes(attribute.Int("auction.events", len(e.pending)))
	pending := e.pending
	e.pending = nil
	for _, evt := range pending {
		e.emitter.Emit(WrapEvent(evt))
	}
	return nil
}

func (e *Engine) reject(span trace.Span, op string, err error) {
	kind := KindOf(err).String()
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	span.SetAttributes(attribute.String("auction.error_kind", kind))
	e.metrics.ObserveRejection(op, kind)
	e.logger.Debug("auction operation rejected", "op", op, "kind", kind, "error", err)
}

// IsPaused implements common.PauseView.
func (e *Engine) IsPaused(module string) bool {
	if module != ModuleName || e == nil || e.state == nil {
		return false
	}
	settings, ok, err := e.state.AuctionSettingsGet()
	if err != nil || !ok || settings == nil {
		return false
	}
	return settings.Paused
}

func (e *Engine) guard() error {
	if err := common.Guard(e, ModuleName); err != nil {
		return ErrPaused.wrap(err)
	}
	return nil
}

func (e *Engine) settings() (*Settings, error) {
	settings, ok, err := e.state.AuctionSettingsGet()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !ok || settings == nil {
		return nil, ErrNotInitialized
	}
	return settings, nil
}

func (e *Engine) requireOwner(caller [20]byte) (*Settings, error) {
	settings, err := e.settings()
	if err != nil {
		return nil, err
	}
	if caller != settings.Owner {
		return nil, ErrNotOwner
	}
	return settings, nil
}

func (e *Engine) requireRegistry() (Registry, error) {
	if e.registry == nil {
		return nil, ErrRegistryNotSet
	}
	return e.registry, nil
}

// requireMintAllowance rejects wallets that already minted their maximum.
func (e *Engine) requireMintAllowance(reg Registry, wallet [20]byte) error {
	limit, err := reg.MaxMintPerWallet()
	if err != nil {
		return fmt.Errorf("registry max mint per wallet: %w", err)
	}
	minted, err := reg.MintPerWallet(wallet)
	if err != nil {
		return fmt.Errorf("registry mint per wallet: %w", err)
	}
	if minted >= limit {
		return ErrMintLimitReached
	}
	return nil
}

// requireSupply rejects auction creation once minted supply exceeds capacity.
func (e *Engine) requireSupply(reg Registry) error {
	total, err := reg.TotalSupply()
	if err != nil {
		return fmt.Errorf("registry total supply: %w", err)
	}
	limit, err := reg.MaxTotalSupply()
	if err != nil {
		return fmt.Errorf("registry max total supply: %w", err)
	}
	if total > limit {
		return ErrSupplyExhausted
	}
	return nil
}

// mint assigns a new collectible to wallet and bumps its mint counter.
func (e *Engine) mint(reg Registry, wallet [20]byte) (uint64, error) {
	tokenID, err := reg.Mint(wallet)
	if err != nil {
		return 0, fmt.Errorf("registry mint: %w", err)
	}
	minted, err := reg.MintPerWallet(wallet)
	if err != nil {
		return 0, fmt.Errorf("registry mint per wallet: %w", err)
	}
	if err := reg.SetMintPerWallet(wallet, minted+1); err != nil {
		return 0, fmt.Errorf("registry set mint per wallet: %w", err)
	}
	return tokenID, nil
}

// collect moves a caller's payment into the engine account.
func (e *Engine) collect(from [20]byte, amount *big.Int) error {
	return e.move(from, e.address, amount)
}

// transfer pays amount out of the engine account and notifies the hook once
// the balances have been written.
func (e *Engine) transfer(to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if to == ([20]byte{}) {
		return ErrUnspecifiedPayee
	}
	if err := e.move(e.address, to, amount); err != nil {
		return err
	}
	if e.hook != nil {
		if err := e.hook(e.address, to, new(big.Int).Set(amount)); err != nil {
			return ErrTransferRejected.wrap(err)
		}
	}
	return nil
}

func (e *Engine) move(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	fromAcc = types.EnsureAccount(fromAcc)
	if fromAcc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amount)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	toAcc = types.EnsureAccount(toAcc)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amount)
	if err := e.state.PutAccount(to[:], toAcc); err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	return nil
}

func (e *Engine) balance(addr [20]byte) (*big.Int, error) {
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return cloneBigInt(types.EnsureAccount(acc).Balance), nil
}

func hexAddr(addr [20]byte) string {
	return ethcommon.Address(addr).Hex()
}
