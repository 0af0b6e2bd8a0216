// Command payer-agent performs a single x402-aware HTTP request, paying with
// an SPL token transfer if the server challenges with 402, and prints the
// outcome. It is a demo harness for the Driver, not a long-running service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	x402 "github.com/PlaiPin/x402-payer"
	"github.com/PlaiPin/x402-payer/facilitator"
	"github.com/PlaiPin/x402-payer/retry"
	"github.com/PlaiPin/x402-payer/rpcclient"
	"github.com/PlaiPin/x402-payer/wallet"
)

func main() {
	url := flag.String("url", "", "URL of the resource to fetch (required)")
	method := flag.String("method", http.MethodGet, "HTTP method")
	keygenPath := flag.String("keygen", "", "path to a keygen JSON file produced by cmd/provision (required)")
	rpcEndpoint := flag.String("rpc", rpc.DevNet_RPC, "Solana JSON-RPC endpoint")
	facilitatorURL := flag.String("facilitator", "", "facilitator base URL, used only when the 402 challenge omits a fee payer")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *url == "" || *keygenPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -url and -keygen are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	w, err := wallet.New(wallet.WithKeygenFile(*keygenPath))
	if err != nil {
		logger.Error("failed to load wallet", "err", err)
		os.Exit(1)
	}
	defer w.Close()

	logger.Info("wallet loaded", "address", w.Address())

	rpcClient := rpcclient.New(*rpcEndpoint, retry.DefaultConfig)

	var fac x402.FacilitatorProbe
	if *facilitatorURL != "" {
		fac = facilitator.New(*facilitatorURL, http.DefaultClient, logger)
	}

	driver, err := x402.NewDriver(http.DefaultClient, rpcClient, w, fac, x402.WithLogger(logger))
	if err != nil {
		logger.Error("failed to construct driver", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := driver.Fetch(ctx, *method, *url, nil)
	if err != nil {
		logger.Error("request failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("status: %d\n", resp.StatusCode)
	fmt.Printf("payment made: %v\n", resp.PaymentMade)
	if resp.Receipt != nil {
		fmt.Printf("settlement: success=%v network=%s\n", resp.Receipt.Success, resp.Receipt.Network)
	} else if resp.Unverified {
		fmt.Println("settlement: paid but no receipt header returned")
	}
	fmt.Printf("body:\n%s\n", string(resp.Body))
}
