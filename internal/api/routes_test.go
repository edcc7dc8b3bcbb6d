package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/coinselect-engine/internal/selectservice"
	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseExcessStrategy(t *testing.T) {
	tests := []struct {
		in     string
		want   coinselect.ExcessStrategy
		wantOK bool
	}{
		{"", coinselect.ExcessToFee, true},
		{"to_fee", coinselect.ExcessToFee, true},
		{"to_recipient", coinselect.ExcessToRecipient, true},
		{"to_change", coinselect.ExcessToChange, true},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseExcessStrategy(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parseExcessStrategy(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseExcessStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	router := SetupRouter(selectservice.New(nil), NewHub())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health check status = %d, want 200", rec.Code)
	}
}

func TestHandleSelectCoinSuccess(t *testing.T) {
	router := SetupRouter(selectservice.New(nil), NewHub())

	body := map[string]any{
		"inputs": []map[string]any{
			{"value": 60000, "weight": 300, "inputCount": 1},
			{"value": 50000, "weight": 300, "inputCount": 1},
		},
		"targetValue":     100000,
		"targetFeerate":   1,
		"minAbsoluteFee":  0,
		"baseWeight":      10,
		"changeWeight":    50,
		"changeCost":      10,
		"avgInputWeight":  300,
		"avgOutputWeight": 150,
		"minChangeValue":  1000,
		"excessStrategy":  "to_change",
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/select-coin", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("select-coin status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if _, ok := resp["runId"]; !ok {
		t.Error("expected a runId in the response")
	}
}

func TestHandleSelectCoinInvalidExcessStrategy(t *testing.T) {
	router := SetupRouter(selectservice.New(nil), NewHub())

	body := map[string]any{
		"inputs":         []map[string]any{{"value": 1000, "weight": 100, "inputCount": 1}},
		"targetValue":    500,
		"excessStrategy": "not_a_strategy",
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/select-coin", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
