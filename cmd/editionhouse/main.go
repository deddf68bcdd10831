package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"editionhouse/config"
)

const defaultConfigPath = "editionhouse.toml"

type command struct {
	name    string
	summary string
	run     func(n *node, args []string, stdout, stderr io.Writer) int
}

var commands = []command{
	{"bootstrap", "Initialise the engine and apply the configured operator settings", runBootstrap},
	{"fund", "Credit an account with wei (genesis funding)", runFund},
	{"balance", "Print the balance of an account", runBalance},
	{"create-english", "Create the English auction", runCreateEnglish},
	{"bid", "Place an English auction bid", runBid},
	{"min-bid", "Print the minimum acceptable next bid", runMinBid},
	{"end-english", "Close the English auction", runEndEnglish},
	{"claim", "Claim and settle the English auction", runClaim},
	{"create-dutch", "Create or recreate the Dutch auction", runCreateDutch},
	{"price", "Print the current Dutch auction price", runPrice},
	{"purchase", "Buy from the Dutch auction", runPurchase},
	{"grant-discount", "Mark a wallet discount-eligible", runGrantDiscount},
	{"set-fee-tiers", "Replace the fee tier table (wallet=bps,...)", runSetFeeTiers},
	{"withdraw", "Withdraw accrued service fees", runWithdraw},
	{"mark-claimed", "Mark a collectible as claimed by its owner", runMarkClaimed},
	{"token", "Print a collectible's owner and URI", runToken},
	{"pause", "Pause user operations", runPause},
	{"unpause", "Resume user operations", runUnpause},
	{"transfer-ownership", "Hand the operator role to another wallet", runTransferOwnership},
	{"snapshot", "Print every record held by the engine", runSnapshot},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("editionhouse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigPath, "path to the TOML or YAML configuration")
	now := fs.Int64("now", 0, "override the engine clock with a unix timestamp")
	metricsOut := fs.String("metrics-out", "", "write prometheus metrics to this file after the command")
	fs.Usage = func() { fmt.Fprint(stderr, usage()) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage())
		return 2
	}

	if rest[0] == "init" {
		return runInit(*configPath, rest[1:], stdout, stderr)
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", rest[0])
		fmt.Fprint(stderr, usage())
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	ctx := context.Background()
	n, err := openNode(ctx, cfg, *now, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening node: %v\n", err)
		return 1
	}
	code := cmd.run(n, rest[1:], stdout, stderr)
	if err := n.Close(ctx); err != nil {
		fmt.Fprintf(stderr, "Error closing node: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	if *metricsOut != "" {
		if err := prometheus.WriteToTextfile(*metricsOut, prometheus.DefaultGatherer); err != nil {
			fmt.Fprintf(stderr, "Error writing metrics: %v\n", err)
			if code == 0 {
				code = 1
			}
		}
	}
	return code
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func usage() string {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "Usage: editionhouse [-config path] [-now unix] [-metrics-out path] <command> [flags]")
	fmt.Fprintln(buf, "Commands:")
	fmt.Fprintf(buf, "  %-20s %s\n", "init", "Write a configuration template")
	for _, cmd := range commands {
		fmt.Fprintf(buf, "  %-20s %s\n", cmd.name, cmd.summary)
	}
	return buf.String()
}

func runInit(path string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	force := fs.Bool("force", false, "overwrite an existing configuration")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(stderr, "Config %s already exists (use -force to overwrite)\n", path)
		return 1
	}
	if err := config.Write(path, config.Default()); err != nil {
		fmt.Fprintf(stderr, "Error writing config: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s; set Owner, EngineAddress and [collectible] before bootstrap.\n", path)
	return 0
}
