package extensivservice

import (
	"encoding/json"
	"errors"

	"wms-alloc/internal/config"
	"wms-alloc/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImportInventoryRequest struct {
	MaxPages int `json:"max_pages"`
	PageSize int `json:"page_size"`
}

type ImportInventoryResponse struct {
	UpsertedReceipts int `json:"upserted_receipts"`
	SkippedRecords   int `json:"skipped_records"`
	Pages            int `json:"pages"`
}

// ImportInventory pages through receipt-level inventory and upserts it.
func ImportInventory(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req ImportInventoryRequest
	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}
	if req.PageSize <= 0 {
		req.PageSize = 200
	}
	if req.MaxPages <= 0 {
		req.MaxPages = 20
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	gormx, err := db.ConnectGORM(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer db.CloseGORM(gormx)

	client := NewClient(cfg, NewTokenSource(cfg, nil))

	var res ImportInventoryResponse
	for page := 1; page <= req.MaxPages; page++ {
		records, err := client.FetchInventoryPage(c.Request.Context(), page, req.PageSize)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}

		receipts := make([]InventoryItem, 0, len(records))
		for _, record := range records {
			receipt, ok := NormalizeReceipt(record)
			if !ok {
				res.SkippedRecords++
				continue
			}
			receipts = append(receipts, receipt)
		}

		if err := upsertInventoryPage(gormx, receipts); err != nil {
			return nil, err
		}

		res.UpsertedReceipts += len(receipts)
		res.Pages++

		if len(records) < req.PageSize {
			break
		}
	}

	log.Info().
		Int("receipts", res.UpsertedReceipts).
		Int("skipped", res.SkippedRecords).
		Int("pages", res.Pages).
		Msg("inventory import finished")

	return res, nil
}

func upsertInventoryPage(gormx *gorm.DB, receipts []InventoryItem) error {
	if len(receipts) == 0 {
		return nil
	}

	tx := gormx.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "receive_item_id"}},
		UpdateAll: true,
	}).Create(&receipts).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	return nil
}
