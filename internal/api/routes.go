package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/coinselect-engine/internal/selectservice"
	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

// APIHandler wires the pure selection service into HTTP handlers.
type APIHandler struct {
	service *selectservice.Service
	wsHub   *Hub
}

// SetupRouter builds the Gin engine: CORS, optional bearer auth, rate
// limiting, and the selection endpoint.
func SetupRouter(service *selectservice.Service, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://example.com,https://www.example.com
	// Development: leave empty for *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{service: service, wsHub: wsHub}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	// select-coin runs a branch-and-bound search of up to 1,000,000 nodes
	// plus 100,000 knapsack trials per call; keep it off the public
	// internet's unlimited-retry path.
	protected.Use(NewRateLimiter(30, 5).Middleware())
	{
		protected.POST("/select-coin", handler.handleSelectCoin)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "coin-selection engine",
	})
}

// selectCoinRequest mirrors coinselect.OutputGroup/CoinSelectionOpt over
// the wire; json tags use lowerCamel per the rest of the API.
type selectCoinRequest struct {
	Inputs []struct {
		Value            uint64  `json:"value"`
		Weight           uint64  `json:"weight"`
		InputCount       int     `json:"inputCount"`
		CreationSequence *uint32 `json:"creationSequence,omitempty"`
	} `json:"inputs"`

	TargetValue     uint64   `json:"targetValue"`
	TargetFeerate   float32  `json:"targetFeerate"`
	LongTermFeerate *float32 `json:"longTermFeerate,omitempty"`
	MinAbsoluteFee  uint64   `json:"minAbsoluteFee"`
	BaseWeight      uint64   `json:"baseWeight"`
	ChangeWeight    uint64   `json:"changeWeight"`
	ChangeCost      uint64   `json:"changeCost"`
	AvgInputWeight  uint64   `json:"avgInputWeight"`
	AvgOutputWeight uint64   `json:"avgOutputWeight"`
	MinChangeValue  uint64   `json:"minChangeValue"`
	ExcessStrategy  string   `json:"excessStrategy"`
}

func parseExcessStrategy(s string) (coinselect.ExcessStrategy, bool) {
	switch s {
	case "", "to_fee":
		return coinselect.ExcessToFee, true
	case "to_recipient":
		return coinselect.ExcessToRecipient, true
	case "to_change":
		return coinselect.ExcessToChange, true
	default:
		return 0, false
	}
}

// handleSelectCoin runs the meta-selector over a caller-supplied candidate
// set and selection options, broadcasting the outcome to subscribed
// dashboards over the WebSocket hub.
// POST /api/v1/select-coin
func (h *APIHandler) handleSelectCoin(c *gin.Context) {
	var req selectCoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	excess, ok := parseExcessStrategy(req.ExcessStrategy)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid excessStrategy", "got": req.ExcessStrategy})
		return
	}

	inputs := make([]coinselect.OutputGroup, len(req.Inputs))
	for i, in := range req.Inputs {
		inputs[i] = coinselect.OutputGroup{
			Value:            in.Value,
			Weight:           in.Weight,
			InputCount:       in.InputCount,
			CreationSequence: in.CreationSequence,
		}
	}

	opts := coinselect.CoinSelectionOpt{
		TargetValue:     req.TargetValue,
		TargetFeerate:   req.TargetFeerate,
		LongTermFeerate: req.LongTermFeerate,
		MinAbsoluteFee:  req.MinAbsoluteFee,
		BaseWeight:      req.BaseWeight,
		ChangeWeight:    req.ChangeWeight,
		ChangeCost:      req.ChangeCost,
		AvgInputWeight:  req.AvgInputWeight,
		AvgOutputWeight: req.AvgOutputWeight,
		MinChangeValue:  req.MinChangeValue,
		ExcessStrategy:  excess,
	}

	result, err := h.service.Select(c.Request.Context(), inputs, opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	payload := gin.H{
		"runId":          result.RunID,
		"selectedInputs": result.SelectedInputs,
		"waste":          float32(result.Waste),
		"change":         result.Change,
	}
	c.JSON(http.StatusOK, payload)

	if h.wsHub != nil {
		BroadcastSelectionResult(h.wsHub, payload)
	}
}
