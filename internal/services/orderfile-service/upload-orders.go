package orderfileservice

import (
	"errors"
	"fmt"

	"wms-alloc/internal/db"
	extensivservice "wms-alloc/internal/services/extensiv-service"
	"wms-alloc/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UploadOrdersResponse struct {
	FileName      string `json:"file_name"`
	UpsertedLines int    `json:"upserted_lines"`
	SkippedRows   int    `json:"skipped_rows"`
}

// cellString reads a cell that may come back numeric, item ids often do.
func cellString(row map[string]interface{}, key string) string {
	if s := utils.GetDefaultValue(row, key, "string").(string); s != "" {
		return s
	}
	if f := utils.GetDefaultValue(row, key, "float64").(float64); f != 0 {
		return fmt.Sprintf("%.0f", f)
	}
	return ``
}

// UploadOrders takes an xlsx upload with columns order_id, order_item_id,
// item_id, sku, qualifier, ordered_qty and upserts the order lines. Rows
// without an order_item_id are skipped.
func UploadOrders(c *gin.Context) (interface{}, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, errors.New("incorrect content type, expected multipart/form-data")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("failed to get multipart form: " + err.Error())
	}

	if len(form.File) == 0 {
		return nil, errors.New("no file found in the request")
	}

	var lines []extensivservice.OrderDetail
	var uploadFileName string
	skipped := 0

	for fieldName := range form.File {
		data, fileName, err := utils.ReadExcelFile(c, fieldName, ``)
		if err != nil {
			return nil, err
		}

		uploadFileName = fileName

		for _, row := range data {
			orderItemID := int(utils.GetDefaultValue(row, "order_item_id", "float64").(float64))
			if orderItemID == 0 {
				skipped++
				continue
			}

			lines = append(lines, extensivservice.OrderDetail{
				OrderItemID: orderItemID,
				OrderID:     int(utils.GetDefaultValue(row, "order_id", "float64").(float64)),
				ItemID:      cellString(row, "item_id"),
				SKU:         cellString(row, "sku"),
				Qualifier:   cellString(row, "qualifier"),
				OrderedQty:  int(utils.GetDefaultValue(row, "ordered_qty", "float64").(float64)),
			})
		}
	}

	if len(lines) == 0 {
		return nil, errors.New("no order lines in the uploaded file")
	}

	gormx, err := db.ConnectGORM(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer db.CloseGORM(gormx)

	if err := upsertOrderLines(gormx, lines); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", uploadFileName).
		Int("lines", len(lines)).
		Int("skipped", skipped).
		Msg("order upload finished")

	return UploadOrdersResponse{
		FileName:      uploadFileName,
		UpsertedLines: len(lines),
		SkippedRows:   skipped,
	}, nil
}
