package orderfileservice

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"wms-alloc/internal/config"
	"wms-alloc/internal/cronjob"
	"wms-alloc/internal/db"
	extensivservice "wms-alloc/internal/services/extensiv-service"
	sftpservice "wms-alloc/internal/services/sftp-service"
	"wms-alloc/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderFilePrefix = `940_`

func init() {
	cronjob.RegisterJob("pull-order-files", PullOrderFilesCron, `0 * * * *`)
}

func PullOrderFilesCron() {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("order file pull: config load failed")
		return
	}

	res, err := processPullOrderFiles(cfg)
	if err != nil {
		log.Error().Err(err).Msg("order file pull failed")
		return
	}

	log.Info().
		Str("file", res.FileName).
		Int("lines", res.UpsertedLines).
		Msg("order file pull finished")
}

type PullResponse struct {
	FileName      string `json:"file_name"`
	UpsertedLines int    `json:"upserted_lines"`
}

// PullOrderFiles runs the scheduled pull on demand.
func PullOrderFiles(c *gin.Context, jsonPayload string) (interface{}, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return processPullOrderFiles(cfg)
}

func processPullOrderFiles(cfg config.Config) (*PullResponse, error) {
	localPath, fileName, err := downloadLatestOrderFile(cfg)
	if err != nil {
		return nil, err
	}

	lines, err := parseOrderFile(localPath)
	if err != nil {
		return nil, err
	}

	gormx, err := db.ConnectGORM(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer db.CloseGORM(gormx)

	if err := upsertOrderLines(gormx, lines); err != nil {
		return nil, err
	}

	return &PullResponse{FileName: fileName, UpsertedLines: len(lines)}, nil
}

func downloadLatestOrderFile(cfg config.Config) (string, string, error) {
	client, sshConn, err := sftpservice.NewClient(cfg)
	if err != nil {
		return ``, ``, err
	}
	defer client.Close()
	defer sshConn.Close()

	files, err := client.ReadDir(cfg.OrderFilePath)
	if err != nil {
		return ``, ``, err
	}

	latestFile, err := utils.GetLatestFile(files, orderFilePrefix)
	if err != nil {
		return ``, ``, err
	}

	if err := os.MkdirAll(cfg.OrderFileLocal, 0o755); err != nil {
		return ``, ``, err
	}

	localPath := filepath.Join(cfg.OrderFileLocal, latestFile.Name())
	remotePath := cfg.OrderFilePath + "/" + latestFile.Name()

	remoteFile, err := client.Open(remotePath)
	if err != nil {
		return ``, ``, err
	}
	defer remoteFile.Close()

	dstFile, err := os.Create(localPath)
	if err != nil {
		return ``, ``, err
	}
	defer dstFile.Close()

	if _, err := remoteFile.WriteTo(dstFile); err != nil {
		return ``, ``, err
	}

	return localPath, latestFile.Name(), nil
}

// parseOrderFile reads a 940 drop file. Expected columns: order_id,
// order_item_id, item_id, sku, qualifier, ordered_qty, header row first.
func parseOrderFile(path string) ([]extensivservice.OrderDetail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var lines []extensivservice.OrderDetail
	rowNum := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rowNum++
		if rowNum == 1 {
			continue
		}
		if len(record) < 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", rowNum, len(record))
		}

		orderID, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad order_id: %w", rowNum, err)
		}
		orderItemID, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad order_item_id: %w", rowNum, err)
		}
		orderedQty, err := strconv.Atoi(strings.TrimSpace(record[5]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad ordered_qty: %w", rowNum, err)
		}

		lines = append(lines, extensivservice.OrderDetail{
			OrderItemID: orderItemID,
			OrderID:     orderID,
			ItemID:      strings.TrimSpace(record[2]),
			SKU:         strings.TrimSpace(record[3]),
			Qualifier:   strings.TrimSpace(record[4]),
			OrderedQty:  orderedQty,
		})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no order lines in %s", filepath.Base(path))
	}

	return lines, nil
}

func upsertOrderLines(gormx *gorm.DB, lines []extensivservice.OrderDetail) error {
	seen := map[int]bool{}
	var headers []extensivservice.OrderHeader
	for _, line := range lines {
		if !seen[line.OrderID] {
			seen[line.OrderID] = true
			headers = append(headers, extensivservice.OrderHeader{OrderID: line.OrderID})
		}
	}

	tx := gormx.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if len(headers) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).Create(&headers).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_item_id"}},
		UpdateAll: true,
	}).Create(&lines).Error
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
