package main

import (
	"errors"
	"fmt"
	"io"

	"editionhouse/native/auction"
	"editionhouse/services/eventlog"
)

func fail(stderr io.Writer, err error) int {
	if kind := auction.KindOf(err); kind != auction.KindUnknown {
		fmt.Fprintf(stderr, "Error (%s): %v\n", kind, err)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func usageError(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 2
}

// apply runs one engine operation against the attached node, commits on
// success and prints the result.
func (n *node) apply(stdout, stderr io.Writer, op func() (interface{}, error)) int {
	if err := n.attach(); err != nil {
		return fail(stderr, err)
	}
	out, err := op()
	if err != nil {
		n.discard()
		return fail(stderr, err)
	}
	if err := n.commit(); err != nil {
		return fail(stderr, err)
	}
	if out == nil {
		return 0
	}
	if err := printJSON(stdout, out); err != nil {
		return fail(stderr, err)
	}
	return 0
}

// caller resolves the acting wallet, defaulting to the current operator.
func (n *node) caller(f *addressFlag) ([20]byte, error) {
	if f.set {
		return f.addr, nil
	}
	settings, err := n.engine.Settings()
	if err != nil {
		return [20]byte{}, err
	}
	return settings.Owner, nil
}

func runBootstrap(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("bootstrap", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	owner, err := n.cfg.OwnerAddress()
	if err != nil {
		return fail(stderr, err)
	}
	table, err := n.cfg.FeeTable()
	if err != nil {
		return fail(stderr, err)
	}
	n.startEvents()
	steps := []func() error{
		func() error { return n.engine.Initialize(owner) },
		func() error { return n.engine.SetRegistry(owner, n.registry) },
		func() error { return n.engine.SetFeeTiers(owner, table) },
		func() error { return n.engine.SetDiscountWalletCount(owner, n.cfg.Auction.DiscountWalletCount) },
		func() error { return n.engine.SetDiscountPercent(owner, n.cfg.Auction.DiscountPercentBps) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			n.discard()
			return fail(stderr, err)
		}
	}
	if err := n.commit(); err != nil {
		return fail(stderr, err)
	}
	settings, err := n.engine.Settings()
	if err != nil {
		return fail(stderr, err)
	}
	return printOrFail(stdout, stderr, map[string]interface{}{
		"owner":               hexAddr(settings.Owner),
		"engine":              hexAddr(n.engine.Address()),
		"registry":            hexAddr(n.registry.Address()),
		"feeTiers":            table,
		"discountWalletCount": settings.DiscountWalletCount,
		"discountPercentBps":  settings.DiscountPercentBps,
	})
}

func printOrFail(stdout, stderr io.Writer, v interface{}) int {
	if err := printJSON(stdout, v); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func runFund(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("fund", stderr)
	to := addressVar(fs, "to", "wallet to credit")
	amount := weiVar(fs, "amount", "wei to credit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := errors.Join(requireAddress("to", to), requireWei("amount", amount)); err != nil {
		return usageError(stderr, err)
	}
	if err := n.state.Credit(to.addr[:], amount.amount); err != nil {
		return fail(stderr, err)
	}
	if err := n.commit(); err != nil {
		return fail(stderr, err)
	}
	return printBalance(n, to.addr, stdout, stderr)
}

func runBalance(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("balance", stderr)
	wallet := addressVar(fs, "addr", "wallet to inspect")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := requireAddress("addr", wallet); err != nil {
		return usageError(stderr, err)
	}
	return printBalance(n, wallet.addr, stdout, stderr)
}

func printBalance(n *node, wallet [20]byte, stdout, stderr io.Writer) int {
	balance, err := n.state.Balance(wallet[:])
	if err != nil {
		return fail(stderr, err)
	}
	return printOrFail(stdout, stderr, map[string]string{"address": hexAddr(wallet), "balance": wei(balance)})
}

func runCreateEnglish(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("create-english", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	start := fs.Int64("start", 0, "auction start (unix seconds)")
	end := fs.Int64("end", 0, "auction end (unix seconds)")
	startPrice := weiVar(fs, "start-price", "opening price in wei")
	reserve := weiVar(fs, "reserve", "reserved price in wei")
	increment := fs.Uint("increment-bps", 500, "minimum raise over the highest bid in bps")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := errors.Join(requireWei("start-price", startPrice), requireWei("reserve", reserve)); err != nil {
		return usageError(stderr, err)
	}
	bps, err := bpsValue("increment-bps", *increment)
	if err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		created, err := n.engine.CreateEnglishAuction(caller, *start, *end, startPrice.amount, reserve.amount, bps)
		if err != nil {
			return nil, err
		}
		return newEnglishView(created), nil
	})
}

func runBid(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("bid", stderr)
	from := addressVar(fs, "from", "bidder wallet")
	amount := weiVar(fs, "amount", "bid in wei")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := errors.Join(requireAddress("from", from), requireWei("amount", amount)); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		bid, err := n.engine.PlaceBid(from.addr, amount.amount)
		if err != nil {
			return nil, err
		}
		return newBidView(bid), nil
	})
}

func runMinBid(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("min-bid", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	minimum, err := n.engine.MinimumBid()
	if err != nil {
		return fail(stderr, err)
	}
	return printOrFail(stdout, stderr, map[string]string{"minimumBid": wei(minimum)})
}

func runEndEnglish(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("end-english", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		outcome, err := n.engine.EndEnglishAuction(caller)
		if err != nil {
			return nil, err
		}
		return newOutcomeView(outcome), nil
	})
}

func runClaim(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("claim", stderr)
	from := addressVar(fs, "from", "winning bidder")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := requireAddress("from", from); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		settlement, err := n.engine.ClaimEnglish(from.addr)
		if err != nil {
			return nil, err
		}
		return newSettlementView(settlement), nil
	})
}

func runCreateDutch(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("create-dutch", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	start := fs.Int64("start", 0, "auction start (unix seconds)")
	startPrice := weiVar(fs, "start-price", "opening price in wei")
	floor := weiVar(fs, "floor", "floor price in wei")
	rate := fs.Uint("rate-bps", 1000, "price decay per interval in bps")
	interval := fs.Uint64("interval", 3600, "seconds per decay step")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := errors.Join(requireWei("start-price", startPrice), requireWei("floor", floor)); err != nil {
		return usageError(stderr, err)
	}
	bps, err := bpsValue("rate-bps", *rate)
	if err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		created, err := n.engine.CreateDutchAuction(caller, *start, startPrice.amount, floor.amount, bps, *interval)
		if err != nil {
			return nil, err
		}
		return newDutchView(created), nil
	})
}

func runPrice(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("price", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	dutch, err := n.engine.DutchAuction()
	if err != nil {
		return fail(stderr, err)
	}
	price, err := n.engine.CurrentPrice()
	if err != nil {
		return fail(stderr, err)
	}
	view := newDutchView(dutch)
	view.CurrentPrice = wei(price)
	return printOrFail(stdout, stderr, view)
}

func runPurchase(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("purchase", stderr)
	from := addressVar(fs, "from", "buyer wallet")
	amount := weiVar(fs, "amount", "payment in wei")
	generation := fs.Uint64("generation", 0, "reject the purchase unless this Dutch auction generation is current")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := errors.Join(requireAddress("from", from), requireWei("amount", amount)); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		var (
			sale *auction.Sale
			err  error
		)
		if *generation > 0 {
			sale, err = n.engine.PurchaseAt(from.addr, amount.amount, *generation)
		} else {
			sale, err = n.engine.Purchase(from.addr, amount.amount)
		}
		if err != nil {
			return nil, err
		}
		return newSaleView(sale), nil
	})
}

func runGrantDiscount(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("grant-discount", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	wallet := addressVar(fs, "wallet", "wallet to make discount-eligible")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := requireAddress("wallet", wallet); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		if err := n.engine.GrantDiscount(caller, wallet.addr); err != nil {
			return nil, err
		}
		return map[string]interface{}{"wallet": hexAddr(wallet.addr), "eligible": true}, nil
	})
}

func runSetFeeTiers(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("set-fee-tiers", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	tiers := fs.String("tiers", "", "comma separated address=bps pairs; empty clears the table")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	table, err := parseTiers(*tiers)
	if err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		if err := n.engine.SetFeeTiers(caller, table); err != nil {
			return nil, err
		}
		return map[string]interface{}{"feeTiers": table, "totalBps": table.TotalBps()}, nil
	})
}

func runWithdraw(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("withdraw", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	to := addressVar(fs, "to", "recipient of the withdrawn fees")
	amount := weiVar(fs, "amount", "wei to withdraw")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := errors.Join(requireAddress("to", to), requireWei("amount", amount)); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		if err := n.engine.WithdrawFees(caller, to.addr, amount.amount); err != nil {
			return nil, err
		}
		remaining, err := n.engine.AccruedFees()
		if err != nil {
			return nil, err
		}
		return map[string]string{"to": hexAddr(to.addr), "amount": wei(amount.amount), "remaining": wei(remaining)}, nil
	})
}

func runMarkClaimed(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("mark-claimed", stderr)
	from := addressVar(fs, "from", "token owner")
	token := fs.Uint64("token", 0, "collectible token id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := requireAddress("from", from); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		if err := n.engine.MarkTokenClaimed(from.addr, *token); err != nil {
			return nil, err
		}
		uri, err := n.registry.TokenURI(*token)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"tokenId": *token, "claimed": true, "uri": uri}, nil
	})
}

func runToken(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("token", stderr)
	id := fs.Uint64("id", 0, "collectible token id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	token, err := n.registry.Token(*id)
	if err != nil {
		return fail(stderr, err)
	}
	claimed, err := n.engine.TokenClaimed(*id)
	if err != nil {
		return fail(stderr, err)
	}
	uri, err := n.registry.TokenURI(*id)
	if err != nil {
		return fail(stderr, err)
	}
	return printOrFail(stdout, stderr, map[string]interface{}{
		"tokenId": token.ID,
		"owner":   hexAddr(token.Owner),
		"creator": hexAddr(token.Creator),
		"claimed": claimed,
		"uri":     uri,
	})
}

func runPause(n *node, args []string, stdout, stderr io.Writer) int {
	return runPauseToggle("pause", true, n, args, stdout, stderr)
}

func runUnpause(n *node, args []string, stdout, stderr io.Writer) int {
	return runPauseToggle("unpause", false, n, args, stdout, stderr)
}

func runPauseToggle(name string, paused bool, n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(name, stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		if paused {
			err = n.engine.Pause(caller)
		} else {
			err = n.engine.Unpause(caller)
		}
		if err != nil {
			return nil, err
		}
		return map[string]bool{"paused": n.engine.IsPaused(auction.ModuleName)}, nil
	})
}

func runTransferOwnership(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("transfer-ownership", stderr)
	callerFlag := addressVar(fs, "caller", "acting operator (defaults to the current owner)")
	to := addressVar(fs, "to", "new operator")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := requireAddress("to", to); err != nil {
		return usageError(stderr, err)
	}
	return n.apply(stdout, stderr, func() (interface{}, error) {
		caller, err := n.caller(callerFlag)
		if err != nil {
			return nil, err
		}
		if err := n.engine.TransferOwnership(caller, to.addr); err != nil {
			return nil, err
		}
		return map[string]string{"owner": hexAddr(to.addr)}, nil
	})
}

func runSnapshot(n *node, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("snapshot", stderr)
	withEvents := fs.Bool("events", false, "include per-type counts from the event log")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	snap, err := n.engine.Snapshot()
	if err != nil {
		return fail(stderr, err)
	}
	report := newSnapshotReport(snap)
	engineAddr := n.engine.Address()
	balance, err := n.state.Balance(engineAddr[:])
	if err != nil {
		return fail(stderr, err)
	}
	report.EngineBalance = wei(balance)
	if report.TotalSupply, err = n.registry.TotalSupply(); err != nil {
		return fail(stderr, err)
	}
	report.MaxTotalSupply, _ = n.registry.MaxTotalSupply()
	if *withEvents {
		if n.events == nil {
			return fail(stderr, fmt.Errorf("event log is not configured"))
		}
		if report.Events, err = eventlog.CountByType(n.events); err != nil {
			return fail(stderr, err)
		}
	}
	return printOrFail(stdout, stderr, report)
}
