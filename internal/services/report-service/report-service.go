package reportservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wms-alloc/internal/config"
	"wms-alloc/internal/db"
	"wms-alloc/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AllocationSummaryRequest struct {
	OrderID int `json:"order_id"`
}

type AllocationSummaryRow struct {
	OrderItemID  int    `db:"order_item_id" json:"order_item_id"`
	ItemID       string `db:"item_id" json:"item_id"`
	SKU          string `db:"sku" json:"sku"`
	Qualifier    string `db:"qualifier" json:"qualifier"`
	OrderedQty   int    `db:"ordered_qty" json:"ordered_qty"`
	AllocatedQty int    `db:"allocated_qty" json:"allocated_qty"`
	RemainingQty int    `db:"remaining_qty" json:"remaining_qty"`
}

type AllocationSummaryResponse struct {
	OrderID  int                    `json:"order_id"`
	FilePath string                 `json:"file_path"`
	RowCount int                    `json:"row_count"`
	Rows     []AllocationSummaryRow `json:"rows"`
}

// AllocationSummary builds the per-line ordered/allocated/remaining view
// for one order and writes it to an xlsx under the report output dir.
func AllocationSummary(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req AllocationSummaryRequest

	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}

	if req.OrderID == 0 {
		return nil, errors.New(`require order_id`)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sqlx, err := db.ConnectSqlx(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer sqlx.Close()

	rows := []AllocationSummaryRow{}
	query := `
		select od.order_item_id
			, coalesce(od.item_id, '') item_id
			, coalesce(od.sku, '') sku
			, coalesce(od.qualifier, '') qualifier
			, od.ordered_qty
			, coalesce(sum(sa.sugg_alloc_qty), 0) allocated_qty
			, od.ordered_qty - coalesce(sum(sa.sugg_alloc_qty), 0) remaining_qty
		from order_details od
		left join sugg_alloc sa on sa.order_item_id = od.order_item_id
		where od.order_id = ?
		group by od.order_item_id, od.item_id, od.sku, od.qualifier, od.ordered_qty
		order by od.order_item_id
	`
	if err := sqlx.Select(&rows, sqlx.Rebind(query), req.OrderID); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no order lines for order %d", req.OrderID)
	}

	filePath, err := writeSummaryFile(cfg.ReportOutputDir, req.OrderID, rows)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("order_id", req.OrderID).
		Int("rows", len(rows)).
		Str("file", filePath).
		Msg("allocation summary written")

	return AllocationSummaryResponse{
		OrderID:  req.OrderID,
		FilePath: filePath,
		RowCount: len(rows),
		Rows:     rows,
	}, nil
}

func writeSummaryFile(outputDir string, orderID int, rows []AllocationSummaryRow) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return ``, err
	}

	headers := []string{"Order Item ID", "Item ID", "SKU", "Qualifier", "Ordered Qty", "Allocated Qty", "Remaining Qty"}
	data := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		data = append(data, []interface{}{
			row.OrderItemID,
			row.ItemID,
			row.SKU,
			row.Qualifier,
			row.OrderedQty,
			row.AllocatedQty,
			row.RemainingQty,
		})
	}

	fileName := fmt.Sprintf("alloc-summary-%d-%s.xlsx", orderID, time.Now().Format("20060102-150405"))
	filePath := filepath.Join(outputDir, fileName)

	if err := utils.WriteExcelFile(filePath, "AllocationSummary", headers, data); err != nil {
		return ``, err
	}

	return filePath, nil
}
