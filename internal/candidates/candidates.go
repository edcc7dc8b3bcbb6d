// Package candidates turns wallet-visible UTXOs into the OutputGroup shape
// the coin-selection algorithms consume: a value and a weight, nothing
// more. Everything address/script-specific lives here so pkg/coinselect
// never has to know what a Bitcoin script looks like.
package candidates

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

// Approximate input weights (witness + scriptSig, in weight units) by
// script class, following the standard per-type spend weight tables used
// by wallet fee estimators. A compressed-key P2PKH/P2SH-nested spend is
// assumed; these are estimates, not consensus-exact figures, which is all
// BnB's match window and waste metric need.
const (
	weightP2PKH        uint64 = 592 // legacy: ~148 vbytes
	weightP2SHP2WPKH   uint64 = 364 // nested segwit: ~91 vbytes
	weightP2WPKH       uint64 = 272 // native segwit v0: ~68 vbytes
	weightP2TR         uint64 = 230 // taproot key-path spend: ~57.5 vbytes
	weightP2WSHDefault uint64 = 460 // generic P2WSH multisig fallback
	weightUnknown      uint64 = weightP2PKH
)

// WeightForScript classifies a scriptPubKey hex string and returns the
// estimated weight of spending it.
func WeightForScript(scriptPubKeyHex string) (uint64, error) {
	raw, err := hex.DecodeString(scriptPubKeyHex)
	if err != nil {
		return 0, fmt.Errorf("candidates: decode scriptPubKey: %w", err)
	}

	class := txscript.GetScriptClass(raw)
	switch class {
	case txscript.PubKeyHashTy:
		return weightP2PKH, nil
	case txscript.WitnessV0PubKeyHashTy:
		return weightP2WPKH, nil
	case txscript.WitnessV1TaprootTy:
		return weightP2TR, nil
	case txscript.WitnessV0ScriptHashTy:
		return weightP2WSHDefault, nil
	case txscript.ScriptHashTy:
		// Ambiguous at the script level (P2SH can wrap anything); assume
		// the common case, a nested P2WPKH.
		return weightP2SHP2WPKH, nil
	default:
		return weightUnknown, nil
	}
}

// creationSequenceFromConfirmations derives a FIFO ordinal from a UTXO's
// confirmation count: more confirmations means older, so it must map to a
// smaller sequence number (spec.md's creation_sequence sorts ascending,
// oldest first).
func creationSequenceFromConfirmations(confirmations int64) *uint32 {
	if confirmations < 0 {
		return nil
	}
	capped := confirmations
	if capped > math.MaxUint32 {
		capped = math.MaxUint32
	}
	seq := uint32(math.MaxUint32) - uint32(capped)
	return &seq
}

// FromListUnspent converts the node's listunspent results into selection
// candidates. A UTXO is skipped (not an error) if it is unspendable or its
// scriptPubKey cannot be classified; those are recorded in the returned
// skipped count so the caller can log it rather than feed coinselect a
// corrupt group count.
func FromListUnspent(utxos []btcjson.ListUnspentResult) (groups []coinselect.OutputGroup, skipped int) {
	groups = make([]coinselect.OutputGroup, 0, len(utxos))
	for _, u := range utxos {
		if !u.Spendable {
			skipped++
			continue
		}

		amount, err := btcutil.NewAmount(u.Amount)
		if err != nil {
			skipped++
			continue
		}

		weight, err := WeightForScript(u.ScriptPubKey)
		if err != nil {
			skipped++
			continue
		}

		groups = append(groups, coinselect.OutputGroup{
			Value:            uint64(amount),
			Weight:           weight,
			InputCount:       1,
			CreationSequence: creationSequenceFromConfirmations(u.Confirmations),
		})
	}
	return groups, skipped
}
