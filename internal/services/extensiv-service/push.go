package extensivservice

import (
	"encoding/json"
	"errors"

	"wms-alloc/internal/config"
	"wms-alloc/internal/db"
	allocservice "wms-alloc/internal/services/alloc-service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PushRequest struct {
	OrderID int `json:"order_id"`
}

type PushResponse struct {
	OrderID     int                      `json:"order_id"`
	LinesPushed int                      `json:"lines_pushed"`
	PayloadSent allocservice.PushPayload `json:"payload_sent"`
}

// PushOrderAllocations reads the current ledger for an order, builds the
// allocator payload, and PUTs it to the WMS.
func PushOrderAllocations(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req PushRequest
	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}
	if req.OrderID <= 0 {
		return nil, errors.New("order_id required")
	}

	sqlxDB, err := db.ConnectSqlx(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	payload, err := allocservice.BuildPushPayload(c.Request.Context(), sqlxDB, req.OrderID)
	if err != nil {
		return nil, err
	}
	if len(payload.ProposedAllocations) == 0 {
		return nil, errors.New("no planned allocations to push for this order")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client := NewClient(cfg, NewTokenSource(cfg, nil))
	if err := client.PushAllocations(c.Request.Context(), req.OrderID, payload); err != nil {
		return nil, err
	}

	log.Info().
		Int("order_id", req.OrderID).
		Int("lines", len(payload.ProposedAllocations)).
		Msg("pushed allocations to WMS")

	return PushResponse{
		OrderID:     req.OrderID,
		LinesPushed: len(payload.ProposedAllocations),
		PayloadSent: payload,
	}, nil
}

// GetTokenInfo reports the cached token shape without exposing the token,
// for connectivity debugging.
func GetTokenInfo(c *gin.Context, jsonPayload string) (interface{}, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	token, err := NewTokenSource(cfg, nil).Token(c.Request.Context())
	if err != nil {
		return nil, err
	}

	head := token
	if len(head) > 12 {
		head = head[:12]
	}

	return gin.H{"token_len": len(token), "head": head}, nil
}
