// Command selectcoin-demo wires candidates, the selection service, and the
// HTTP API together for a live demonstration: pull UTXOs from a Bitcoin
// node (or fall back to a synthetic candidate set when no node is
// configured), run the meta-selector once and persist the result, then
// serve the HTTP API, whose select-coin endpoint broadcasts each result
// over the WebSocket hub.
package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/rawblock/coinselect-engine/internal/api"
	"github.com/rawblock/coinselect-engine/internal/bitcoin"
	"github.com/rawblock/coinselect-engine/internal/candidates"
	"github.com/rawblock/coinselect-engine/internal/db"
	"github.com/rawblock/coinselect-engine/internal/selectservice"
	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

func main() {
	log.Println("Starting coin-selection demo engine...")

	// ─── Optional environment variables ─────────────────────────────────
	// Unlike credential-bearing services, nothing here is required: the
	// demo degrades to an in-memory candidate set when Postgres or a
	// Bitcoin node are not configured.
	// ──────────────────────────────────────────────────────────────────

	var store *db.PostgresStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without persisting selection runs: %v", err)
		} else {
			defer conn.Close()
			if err := conn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
			store = conn
		}
	} else {
		log.Println("DATABASE_URL not set — running without selection-run persistence")
	}

	var svc *selectservice.Service
	if store != nil {
		svc = selectservice.New(store)
	} else {
		svc = selectservice.New(nil)
	}

	btcHost := getEnvOrDefault("BTC_RPC_HOST", "localhost:8332")
	var btcClient *bitcoin.Client
	if btcUser, btcPass := os.Getenv("BTC_RPC_USER"), os.Getenv("BTC_RPC_PASS"); btcUser != "" && btcPass != "" {
		client, err := bitcoin.NewClient(bitcoin.Config{Host: btcHost, User: btcUser, Pass: btcPass})
		if err != nil {
			log.Printf("Warning: failed to connect to Bitcoin RPC, falling back to synthetic candidates: %v", err)
		} else {
			defer client.Shutdown()
			btcClient = client
		}
	} else {
		log.Println("BTC_RPC_USER/BTC_RPC_PASS not set — running with synthetic candidates only")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	if err := runDemoSelection(btcClient, svc); err != nil {
		log.Printf("Warning: demo selection run failed: %v", err)
	}

	r := api.SetupRouter(svc, wsHub)

	port := getEnvOrDefault("PORT", "5339")
	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runDemoSelection exercises the full candidates -> service pipeline once
// at startup so logs show a live selection before the first HTTP request
// arrives.
func runDemoSelection(btcClient *bitcoin.Client, svc *selectservice.Service) error {
	var inputs []coinselect.OutputGroup

	watchAddr := os.Getenv("DEMO_WATCH_ADDRESS")
	if btcClient != nil && watchAddr != "" {
		utxos, err := btcClient.ListUnspent([]string{watchAddr})
		if err != nil {
			return err
		}
		groups, skipped := candidates.FromListUnspent(utxos)
		if skipped > 0 {
			log.Printf("candidates: skipped %d unspendable/unclassifiable UTXOs", skipped)
		}
		inputs = groups
	} else {
		inputs = syntheticCandidates()
	}

	feerate := float32(5)
	if v := os.Getenv("DEMO_TARGET_FEERATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			feerate = float32(parsed)
		}
	}

	opts := coinselect.CoinSelectionOpt{
		TargetValue:     100_000,
		TargetFeerate:   feerate,
		MinAbsoluteFee:  100,
		BaseWeight:      10,
		ChangeWeight:    50,
		ChangeCost:      10,
		AvgInputWeight:  272,
		AvgOutputWeight: 150,
		MinChangeValue:  1_000,
		ExcessStrategy:  coinselect.ExcessToChange,
	}

	result, err := svc.Select(context.Background(), inputs, opts)
	if err != nil {
		return err
	}

	log.Printf("demo selection: run=%s selected=%v change=%d waste=%.2f",
		result.RunID, result.SelectedInputs, result.Change, result.Waste)
	return nil
}

// syntheticCandidates is a small fixed candidate set used when no Bitcoin
// node is configured, just large enough to exercise every algorithm.
func syntheticCandidates() []coinselect.OutputGroup {
	return []coinselect.OutputGroup{
		{Value: 55_000, Weight: 500, InputCount: 1},
		{Value: 40_000, Weight: 300, InputCount: 1},
		{Value: 25_000, Weight: 100, InputCount: 1},
		{Value: 35_000, Weight: 150, InputCount: 1},
		{Value: 30_000, Weight: 120, InputCount: 1},
		{Value: 94_730, Weight: 50, InputCount: 1},
	}
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
