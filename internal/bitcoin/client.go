// Package bitcoin is a thin client over a Bitcoin Core JSON-RPC node,
// trimmed to the calls the candidate-selection pipeline needs: listing
// spendable UTXOs for a watched address set and estimating the current
// network feerate.
package bitcoin

import (
	"encoding/json"
	"log"
	"math"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/rpcclient"
)

// Client wraps a connected RPC session against a single Bitcoin Core node.
type Client struct {
	RPC    *rpcclient.Client
	Config Config
}

// Config carries the node's RPC endpoint and credentials.
type Config struct {
	Host string
	User string
	Pass string
}

// NewClient dials the node and verifies the connection with getblockcount.
func NewClient(cfg Config) (*Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true, // Bitcoin Core only supports HTTP POST mode
		DisableTLS:   true, // assumes a local node without TLS
	}

	log.Printf("Connecting to Bitcoin RPC at %s...", cfg.Host)
	client, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, err
	}

	blockCount, err := client.GetBlockCount()
	if err != nil {
		client.Shutdown()
		return nil, err
	}
	log.Printf("Connected to Bitcoin node. Current block height: %d", blockCount)

	return &Client{RPC: client, Config: cfg}, nil
}

// Shutdown closes the underlying RPC connection.
func (c *Client) Shutdown() {
	c.RPC.Shutdown()
}

// ListUnspent returns spendable UTXOs for the given watched addresses,
// minconf=0 through maxconf=9999999.
func (c *Client) ListUnspent(addresses []string) ([]btcjson.ListUnspentResult, error) {
	decodedAddrs := make([]btcutil.Address, 0, len(addresses))
	for _, addr := range addresses {
		decoded, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
		if err != nil {
			return nil, err
		}
		decodedAddrs = append(decodedAddrs, decoded)
	}
	return c.RPC.ListUnspentMinMaxAddresses(0, 9999999, decodedAddrs)
}

func (c *Client) estimateSmartFeeByMode(confTarget int64, mode *btcjson.EstimateSmartFeeMode) (float64, error) {
	res, err := c.RPC.EstimateSmartFee(confTarget, mode)
	if err != nil {
		return 0, err
	}
	if res == nil || res.FeeRate == nil {
		return 0, nil
	}
	if !isFinitePositive(*res.FeeRate) {
		return 0, nil
	}
	return *res.FeeRate, nil
}

func (c *Client) getMempoolFeeFloorBTCPerKVb() (float64, error) {
	rawResp, err := c.RPC.RawRequest("getmempoolinfo", nil)
	if err != nil {
		return 0, err
	}

	var mempool struct {
		MempoolMinFee float64 `json:"mempoolminfee"`
		MinRelayTxFee float64 `json:"minrelaytxfee"`
	}
	if err := json.Unmarshal(rawResp, &mempool); err != nil {
		return 0, err
	}

	floor := mempool.MempoolMinFee
	if mempool.MinRelayTxFee > floor {
		floor = mempool.MinRelayTxFee
	}
	if !isFinitePositive(floor) {
		return 0, nil
	}
	return floor, nil
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// BTCPerKVbToSatPerVB converts a BTC/kvB feerate to sat/vB.
func BTCPerKVbToSatPerVB(v float64) float64 {
	return v * 100_000
}

// EstimateSmartFee returns a BTC/kvB smart fee estimate, falling back
// CONSERVATIVE -> ECONOMICAL -> mempool floor when an estimate mode is
// unavailable (typical on a freshly started or low-traffic node).
func (c *Client) EstimateSmartFee(confTarget int64) (float64, error) {
	conservative := btcjson.EstimateModeConservative
	if fee, err := c.estimateSmartFeeByMode(confTarget, &conservative); err == nil && fee > 0 {
		return fee, nil
	}

	economical := btcjson.EstimateModeEconomical
	if fee, err := c.estimateSmartFeeByMode(confTarget, &economical); err == nil && fee > 0 {
		return fee, nil
	}

	return c.getMempoolFeeFloorBTCPerKVb()
}

// EstimateSmartFeeSatVB is EstimateSmartFee converted to sat/vB.
// CoinSelectionOpt.TargetFeerate is priced per weight unit, and one vbyte
// is four weight units, so this figure is four times the per-weight-unit
// rate.
func (c *Client) EstimateSmartFeeSatVB(confTarget int64) (float64, error) {
	feeBTCPerKVb, err := c.EstimateSmartFee(confTarget)
	if err != nil {
		return 0, err
	}
	return BTCPerKVbToSatPerVB(feeBTCPerKVb), nil
}
