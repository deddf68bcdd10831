package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"editionhouse/native/fees"
)

// addressFlag is a hex wallet address flag that records whether it was set.
type addressFlag struct {
	addr [20]byte
	set  bool
}

func (f *addressFlag) String() string {
	if f == nil || !f.set {
		return ""
	}
	return ethcommon.Address(f.addr).Hex()
}

func (f *addressFlag) Set(value string) error {
	trimmed := strings.TrimSpace(value)
	if !ethcommon.IsHexAddress(trimmed) {
		return fmt.Errorf("invalid address %q", value)
	}
	f.addr = ethcommon.HexToAddress(trimmed)
	f.set = true
	return nil
}

// weiFlag is a non-negative decimal wei amount.
type weiFlag struct {
	amount *big.Int
}

func (f *weiFlag) String() string {
	if f == nil || f.amount == nil {
		return ""
	}
	return f.amount.String()
}

func (f *weiFlag) Set(value string) error {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || amount.Sign() < 0 {
		return fmt.Errorf("invalid wei amount %q", value)
	}
	f.amount = amount
	return nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func addressVar(fs *flag.FlagSet, name, usage string) *addressFlag {
	f := &addressFlag{}
	fs.Var(f, name, usage)
	return f
}

func weiVar(fs *flag.FlagSet, name, usage string) *weiFlag {
	f := &weiFlag{}
	fs.Var(f, name, usage)
	return f
}

func requireAddress(name string, f *addressFlag) error {
	if !f.set {
		return fmt.Errorf("-%s is required", name)
	}
	return nil
}

func requireWei(name string, f *weiFlag) error {
	if f.amount == nil {
		return fmt.Errorf("-%s is required", name)
	}
	return nil
}

func bpsValue(name string, v uint) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("-%s out of range", name)
	}
	return uint32(v), nil
}

// parseTiers reads "0xaddr=bps,0xaddr=bps". An empty string yields an empty
// table.
func parseTiers(raw string) (fees.Table, error) {
	table := fees.Table{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		recipient, share, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("tier %q: expected address=bps", part)
		}
		bps, err := strconv.ParseUint(strings.TrimSpace(share), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("tier %q: invalid share: %w", part, err)
		}
		tier, err := fees.ParseTier(recipient, uint32(bps))
		if err != nil {
			return nil, err
		}
		table = append(table, tier)
	}
	return table, nil
}
