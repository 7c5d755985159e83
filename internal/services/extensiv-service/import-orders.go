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

type ImportOrdersRequest struct {
	MaxPages int `json:"max_pages"`
	PageSize int `json:"page_size"`
}

type ImportOrdersResponse struct {
	ImportedHeaders int `json:"imported_headers"`
	UpsertedItems   int `json:"upserted_items"`
	Pages           int `json:"pages"`
}

// ImportOrders pages through the WMS order list and upserts headers and
// lines. Each page is one transaction, so a failing page leaves earlier
// pages committed; the import is re-runnable.
func ImportOrders(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req ImportOrdersRequest
	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}
	if req.PageSize <= 0 {
		req.PageSize = 100
	}
	if req.MaxPages <= 0 {
		req.MaxPages = 10
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

	var res ImportOrdersResponse
	for page := 1; page <= req.MaxPages; page++ {
		records, err := client.FetchOrdersPage(c.Request.Context(), page, req.PageSize)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}

		headers := make([]OrderHeader, 0, len(records))
		var details []OrderDetail

		for _, record := range records {
			header, lines := NormalizeOrder(record)
			if header.OrderID == 0 {
				continue
			}
			headers = append(headers, header)
			details = append(details, lines...)
		}

		if err := upsertOrdersPage(gormx, headers, details); err != nil {
			return nil, err
		}

		res.ImportedHeaders += len(headers)
		res.UpsertedItems += len(details)
		res.Pages++

		if len(records) < req.PageSize {
			break
		}
	}

	log.Info().
		Int("headers", res.ImportedHeaders).
		Int("items", res.UpsertedItems).
		Int("pages", res.Pages).
		Msg("order import finished")

	return res, nil
}

func upsertOrdersPage(gormx *gorm.DB, headers []OrderHeader, details []OrderDetail) error {
	tx := gormx.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if len(headers) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).Create(&headers).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	if len(details) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_item_id"}},
			UpdateAll: true,
		}).Create(&details).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	return nil
}
