package runlogservice

import (
	"encoding/json"
	"errors"
	"time"

	"wms-alloc/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RunLog is one audit row per allocation run, written whether the run
// succeeded or not.
type RunLog struct {
	RunID         string    `db:"run_id" json:"run_id"`
	ScopeSize     int       `db:"scope_size" json:"scope_size"`
	AllocatedRows int       `db:"allocated_rows" json:"allocated_rows"`
	AllocatedQty  int       `db:"allocated_qty" json:"allocated_qty"`
	HitCap        bool      `db:"hit_cap" json:"hit_cap"`
	StartedAt     time.Time `db:"started_at" json:"started_at"`
	FinishedAt    time.Time `db:"finished_at" json:"finished_at"`
	ErrorText     string    `db:"error_text" json:"error_text"`
}

func AddRunLog(sqlxDB *sqlx.DB, entry RunLog) error {
	if entry.RunID == `` {
		entry.RunID = uuid.New().String()
	}

	_, err := sqlxDB.NamedExec(`
		INSERT INTO alloc_run_log (
			run_id,
			scope_size,
			allocated_rows,
			allocated_qty,
			hit_cap,
			started_at,
			finished_at,
			error_text
		) VALUES (
			:run_id, :scope_size, :allocated_rows, :allocated_qty,
			:hit_cap, :started_at, :finished_at, :error_text
		)`, entry)

	return err
}

type GetRunLogsRequest struct {
	Limit int `json:"limit"`
}

func GetRunLogs(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req GetRunLogsRequest

	if jsonPayload != `` {
		if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
			return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
		}
	}

	sqlxDB, err := db.ConnectSqlx(`wms_alloc`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	return ListRunLogs(sqlxDB, req.Limit)
}

func ListRunLogs(sqlxDB *sqlx.DB, limit int) ([]RunLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []RunLog
	query := sqlxDB.Rebind(`
		SELECT run_id, scope_size, allocated_rows, allocated_qty,
			hit_cap, started_at, finished_at, COALESCE(error_text, '') AS error_text
		FROM alloc_run_log
		ORDER BY started_at DESC
		LIMIT ?`)
	if err := sqlxDB.Select(&logs, query, limit); err != nil {
		return nil, err
	}

	return logs, nil
}
