package auction

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{ErrBidTooLow, KindPrecondition},
		{ErrInvalidFeeTiers.wrap(errors.New("overflow")), KindPrecondition},
		{ErrNotWinner, KindUnauthorized},
		{ErrMintLimitReached, KindUnauthorized},
		{ErrEnglishNotEnded, KindState},
		{fmt.Errorf("outer: %w", ErrReentrantCall), KindState},
		{ErrTransferRejected.wrap(ErrReentrantCall), KindTransfer},
		{errors.New("disk failure"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestWrappedErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("hook refused")
	err := ErrTransferRejected.wrap(cause)
	if !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("expected sentinel match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause match")
	}
	if errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("unexpected match against a different code")
	}
	if err.Error() != "auction engine: transfer rejected by recipient: hook refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
