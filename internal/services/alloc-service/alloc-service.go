package allocservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wms-alloc/internal/config"
	"wms-alloc/internal/db"
	runlogservice "wms-alloc/internal/services/runlog-service"
	"wms-alloc/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type PlanRequest struct {
	OrderID  int            `json:"order_id"`
	Selected []SelectedLine `json:"selected"`
}

type SelectedLine struct {
	OrderID     int `json:"order_id"`
	OrderItemID int `json:"order_item_id"`
}

type LineView struct {
	OrderItemID      int    `db:"order_item_id" json:"order_item_id"`
	OrderID          int    `db:"order_id" json:"order_id"`
	SKU              string `db:"sku" json:"sku"`
	Qualifier        string `db:"qualifier" json:"qualifier"`
	OrderedQty       int    `db:"ordered_qty" json:"ordered_qty"`
	AllocatedSoFar   int    `db:"allocated_so_far" json:"allocated_so_far"`
	RemainingOpenQty int    `db:"remaining_open_qty" json:"remaining_open_qty"`
}

type OrderView struct {
	OrderID      int    `db:"order_id" json:"order_id"`
	CustomerName string `db:"customer_name" json:"customer_name"`
	ReferenceNum string `db:"reference_num" json:"reference_num"`
}

// PlanAllocation is the /Alloc/Plan service: resolve the scope, run the
// engine, persist a run-log row, and return the full result.
func PlanAllocation(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req PlanRequest
	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	scope := Scope{OrderID: req.OrderID}
	for _, sel := range req.Selected {
		scope.OrderItemIDs = append(scope.OrderItemIDs, sel.OrderItemID)
		if scope.OrderID == 0 {
			scope.OrderID = sel.OrderID
		}
	}

	sqlxDB, err := db.ConnectSqlx(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	engine := NewEngineWithConfig(NewSQLStore(sqlxDB), EngineConfig{
		IterationCap: cfg.AllocIterationCap,
	})

	started := time.Now().UTC()
	result, runErr := engine.Run(c.Request.Context(), scope)

	scopeSize := len(scope.OrderItemIDs)
	if logErr := runlogservice.AddRunLog(sqlxDB, runlogservice.RunLog{
		ScopeSize:     scopeSize,
		AllocatedRows: resultRows(result),
		AllocatedQty:  resultQty(result),
		HitCap:        result != nil && result.HitCap,
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
		ErrorText:     errText(runErr),
	}); logErr != nil {
		log.Warn().Err(logErr).Msg("failed to write allocation run log")
	}

	if runErr != nil {
		return nil, runErr
	}

	log.Info().
		Int("scope_size", scopeSize).
		Int("rows", result.AllocatedCount).
		Int("qty", result.AllocatedQty).
		Bool("hit_cap", result.HitCap).
		Msg("allocation run finished")

	return result, nil
}

func resultRows(result *Result) int {
	if result == nil {
		return 0
	}
	return result.AllocatedCount
}

func resultQty(result *Result) int {
	if result == nil {
		return 0
	}
	return result.AllocatedQty
}

func errText(err error) string {
	if err == nil {
		return ``
	}
	return err.Error()
}

type LinesRequest struct {
	OrderID int `json:"order_id"`
}

// GetOrderLines returns an order's lines with planned and remaining
// quantities derived from the current ledger.
func GetOrderLines(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req LinesRequest
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

	lines, err := LoadLineViews(c.Request.Context(), sqlxDB, req.OrderID)
	if err != nil {
		return nil, err
	}

	return gin.H{"order_id": req.OrderID, "lines": lines}, nil
}

func LoadLineViews(ctx context.Context, sqlxDB *sqlx.DB, orderID int) ([]LineView, error) {
	query := sqlxDB.Rebind(`
		SELECT
			d.order_item_id,
			d.order_id,
			COALESCE(d.sku, '') AS sku,
			COALESCE(d.qualifier, '') AS qualifier,
			COALESCE(d.ordered_qty, 0) AS ordered_qty,
			COALESCE(sa.sum_sugg, 0) AS allocated_so_far,
			COALESCE(d.ordered_qty, 0) - COALESCE(sa.sum_sugg, 0) AS remaining_open_qty
		FROM order_details d
		LEFT JOIN (
			SELECT order_item_id, SUM(COALESCE(sugg_alloc_qty, 0)) AS sum_sugg
			FROM sugg_alloc GROUP BY order_item_id
		) sa ON sa.order_item_id = d.order_item_id
		WHERE d.order_id = ?
		ORDER BY d.order_item_id ASC`)

	var lines []LineView
	if err := sqlxDB.SelectContext(ctx, &lines, query, orderID); err != nil {
		return nil, fmt.Errorf("select line views: %w", err)
	}
	return lines, nil
}

type SearchRequest struct {
	Query string `json:"q"`
}

// SearchOrders finds orders by exact or partial order number.
func SearchOrders(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req SearchRequest
	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	sqlxDB, err := db.ConnectSqlx(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	query := `
		SELECT h.order_id,
			COALESCE(h.customer_name, '') AS customer_name,
			COALESCE(h.reference_num, '') AS reference_num
		FROM order_headers h
		WHERE CAST(h.order_id AS VARCHAR(50)) LIKE ?
		ORDER BY h.order_id DESC
		LIMIT 50`

	rows, err := db.ExecuteQuery(sqlxDB, query, `%`+req.Query+`%`)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}

	orders := []OrderView{}
	for _, row := range rows {
		orders = append(orders, OrderView{
			OrderID:      int(utils.GetDefaultValue(row, "order_id", "int64").(int64)),
			CustomerName: utils.GetDefaultValue(row, "customer_name", "string").(string),
			ReferenceNum: utils.GetDefaultValue(row, "reference_num", "string").(string),
		})
	}

	return gin.H{"orders": orders}, nil
}

// BuildPushPayload groups the current ledger rows of an order by line for
// the outbound WMS push. Pure read, no side effects.
func BuildPushPayload(ctx context.Context, sqlxDB *sqlx.DB, orderID int) (PushPayload, error) {
	query := sqlxDB.Rebind(`
		SELECT sa.order_item_id, sa.receive_item_id, sa.sugg_alloc_qty, sa.created_at
		FROM sugg_alloc sa
		JOIN order_details d ON d.order_item_id = sa.order_item_id
		WHERE d.order_id = ?
		ORDER BY sa.order_item_id ASC, sa.receive_item_id ASC`)

	var entries []LedgerEntry
	if err := sqlxDB.SelectContext(ctx, &entries, query, orderID); err != nil {
		return PushPayload{}, fmt.Errorf("select push rows: %w", err)
	}

	payload := PushPayload{ProposedAllocations: []LinePushPayload{}}
	byLine := map[int]int{}

	for _, entry := range entries {
		idx, exists := byLine[entry.OrderItemID]
		if !exists {
			payload.ProposedAllocations = append(payload.ProposedAllocations, LinePushPayload{
				OrderItemID: entry.OrderItemID,
			})
			idx = len(payload.ProposedAllocations) - 1
			byLine[entry.OrderItemID] = idx
		}

		payload.ProposedAllocations[idx].ProposedAllocations = append(
			payload.ProposedAllocations[idx].ProposedAllocations,
			ProposedAllocation{ReceiveItemID: entry.ReceiveItemID, Qty: entry.SuggAllocQty},
		)
	}

	return payload, nil
}
