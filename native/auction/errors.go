package auction

import "errors"

// Kind groups engine rejections by how a caller should react to them.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindPrecondition marks malformed input; retry with corrected arguments.
	KindPrecondition
	// KindUnauthorized marks a caller that may not perform the operation.
	KindUnauthorized
	// KindState marks an operation that is invalid in the current phase.
	KindState
	// KindTransfer marks a failed fund movement; the operation was reverted.
	KindTransfer
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindUnauthorized:
		return "unauthorized"
	case KindState:
		return "state"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Error is a discriminated engine rejection. Two errors match under errors.Is
// when their codes are equal, so wrapped sentinels compare as expected.
type Error struct {
	Kind  Kind
	Code  string
	Msg   string
	cause error
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return "auction engine: " + e.Msg + ": " + e.cause.Error()
	}
	return "auction engine: " + e.Msg
}

// Is matches on the error code.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

func (e *Error) Unwrap() error { return e.cause }

// wrap returns a copy of the sentinel carrying cause.
func (e *Error) wrap(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

// KindOf classifies err, returning KindUnknown for errors the engine did not
// produce (for example state backend failures).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	errNilState = errors.New("auction engine: state not configured")

	ErrInvalidTimeRange     = newError(KindPrecondition, "invalid_time_range", "start must not be in the past and must precede end")
	ErrInvalidStartTime     = newError(KindPrecondition, "invalid_start_time", "start must not be in the past")
	ErrZeroPrice            = newError(KindPrecondition, "zero_price", "price must be positive")
	ErrReservedBelowStart   = newError(KindPrecondition, "reserved_below_start", "reserved price below start price")
	ErrInvalidIncrement     = newError(KindPrecondition, "invalid_increment", "bid increment must be within (0, 10000] bps")
	ErrInvalidFloorPrice    = newError(KindPrecondition, "invalid_floor_price", "floor price must be positive and not above start price")
	ErrInvalidDiscountRate  = newError(KindPrecondition, "invalid_discount_rate", "discount rate must be within (0, 9999] bps")
	ErrInvalidInterval      = newError(KindPrecondition, "invalid_interval", "discount interval must be positive")
	ErrInvalidPercent       = newError(KindPrecondition, "invalid_percent", "discount percent must not exceed 10000 bps")
	ErrInvalidFeeTiers      = newError(KindPrecondition, "invalid_fee_tiers", "invalid fee tier table")
	ErrZeroAddress          = newError(KindPrecondition, "zero_address", "address must be set")
	ErrInvalidAmount        = newError(KindPrecondition, "invalid_amount", "amount must be positive")
	ErrBidTooLow            = newError(KindPrecondition, "bid_too_low", "bid below required minimum")
	ErrInsufficientPayment  = newError(KindPrecondition, "insufficient_payment", "payment below price")
	ErrWithdrawExceedsFees  = newError(KindPrecondition, "withdraw_exceeds_fees", "withdrawal exceeds accrued service fees")
	ErrWithdrawExceedsFunds = newError(KindPrecondition, "withdraw_exceeds_funds", "withdrawal exceeds engine balance")

	ErrNotOwner            = newError(KindUnauthorized, "not_owner", "caller is not the operator")
	ErrNotWinner           = newError(KindUnauthorized, "not_winner", "caller is not the highest bidder")
	ErrNotTokenOwner       = newError(KindUnauthorized, "not_token_owner", "caller does not own the token")
	ErrMintLimitReached    = newError(KindUnauthorized, "mint_limit_reached", "wallet reached its mint limit")
	ErrNotInitialized      = newError(KindState, "not_initialized", "engine not initialized")
	ErrAlreadyInitialized  = newError(KindState, "already_initialized", "engine already initialized")
	ErrRegistryNotSet      = newError(KindState, "registry_not_set", "collectible registry not configured")
	ErrEnglishExists       = newError(KindState, "english_exists", "english auction already created")
	ErrEnglishNotCreated   = newError(KindState, "english_not_created", "english auction not created")
	ErrEnglishNotEnded     = newError(KindState, "english_not_ended", "english auction not ended")
	ErrAuctionNotStarted   = newError(KindState, "auction_not_started", "auction has not started")
	ErrAuctionClosed       = newError(KindState, "auction_closed", "auction window has closed")
	ErrNoWinner            = newError(KindState, "no_winner", "auction has no winner")
	ErrAlreadyClaimed      = newError(KindState, "already_claimed", "auction already claimed")
	ErrDutchNotCreated     = newError(KindState, "dutch_not_created", "dutch auction not created")
	ErrStaleAuction        = newError(KindState, "stale_auction", "dutch auction was recreated")
	ErrSupplyExhausted     = newError(KindState, "supply_exhausted", "minted supply exceeds maximum supply")
	ErrTokenAlreadyClaimed = newError(KindState, "token_already_claimed", "token already claimed")
	ErrPaused              = newError(KindState, "paused", "engine paused")
	ErrReentrantCall       = newError(KindState, "reentrant_call", "call already in progress")

	ErrInsufficientFunds = newError(KindTransfer, "insufficient_funds", "insufficient balance for transfer")
	ErrTransferRejected  = newError(KindTransfer, "transfer_rejected", "transfer rejected by recipient")
	ErrInvalidPayout     = newError(KindTransfer, "invalid_payout", "payout provider returned an invalid split")
	ErrUnspecifiedPayee  = newError(KindTransfer, "unspecified_payee", "payout receiver not specified")
)
