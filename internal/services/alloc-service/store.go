package allocservice

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store is the backing-store boundary of the engine. Business-logic
// non-matches are data; only infrastructure failures come back as errors.
type Store interface {
	LineIDsForOrder(ctx context.Context, orderID int) ([]int, error)
	LoadOrderLines(ctx context.Context, lineIDs []int) ([]OrderLine, error)
	LoadInventory(ctx context.Context, itemIDs, skus []string) ([]InventoryReceipt, error)
	LoadLedger(ctx context.Context, lineIDs []int) ([]LedgerEntry, error)
	AllocatedReceiptIDs(ctx context.Context) (map[int]bool, error)
	ClearLedger(ctx context.Context, lineIDs []int) error
	CommitEntry(ctx context.Context, entry LedgerEntry) error
}

// SQLStore implements Store on sqlx. All id lists go through sqlx.In with
// bound parameters; nothing is concatenated into SQL text.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) LineIDsForOrder(ctx context.Context, orderID int) ([]int, error) {
	var ids []int
	query := s.db.Rebind(`SELECT order_item_id FROM order_details WHERE order_id = ? ORDER BY order_item_id ASC`)
	if err := s.db.SelectContext(ctx, &ids, query, orderID); err != nil {
		return nil, fmt.Errorf("select line ids: %w", err)
	}
	return ids, nil
}

func (s *SQLStore) LoadOrderLines(ctx context.Context, lineIDs []int) ([]OrderLine, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT order_item_id, order_id,
			COALESCE(item_id, '') AS item_id,
			COALESCE(sku, '') AS sku,
			COALESCE(qualifier, '') AS qualifier,
			COALESCE(ordered_qty, 0) AS ordered_qty
		FROM order_details
		WHERE order_item_id IN (?)
		ORDER BY order_item_id ASC`, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("build line query: %w", err)
	}

	var lines []OrderLine
	if err := s.db.SelectContext(ctx, &lines, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	return lines, nil
}

func (s *SQLStore) LoadInventory(ctx context.Context, itemIDs, skus []string) ([]InventoryReceipt, error) {
	if len(itemIDs) == 0 && len(skus) == 0 {
		return nil, nil
	}

	// Either key side may be empty; only the populated sides become IN
	// clauses, otherwise an empty-string list would match NULL columns.
	base := `
		SELECT receive_item_id,
			COALESCE(item_id, '') AS item_id,
			COALESCE(sku, '') AS sku,
			COALESCE(qualifier, '') AS qualifier,
			COALESCE(available_qty, 0) AS available_qty,
			COALESCE(received_qty, 0) AS received_qty,
			COALESCE(location_name, '') AS location_name
		FROM inventory
		WHERE `
	tail := ` ORDER BY receive_item_id ASC`

	var (
		query string
		args  []interface{}
		err   error
	)
	switch {
	case len(itemIDs) > 0 && len(skus) > 0:
		query, args, err = sqlx.In(base+
			`UPPER(TRIM(COALESCE(item_id, ''))) IN (?)
			   OR UPPER(TRIM(COALESCE(sku, ''))) IN (?)`+tail, itemIDs, skus)
	case len(itemIDs) > 0:
		query, args, err = sqlx.In(base+`UPPER(TRIM(COALESCE(item_id, ''))) IN (?)`+tail, itemIDs)
	default:
		query, args, err = sqlx.In(base+`UPPER(TRIM(COALESCE(sku, ''))) IN (?)`+tail, skus)
	}
	if err != nil {
		return nil, fmt.Errorf("build inventory query: %w", err)
	}

	var receipts []InventoryReceipt
	if err := s.db.SelectContext(ctx, &receipts, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	return receipts, nil
}

func (s *SQLStore) LoadLedger(ctx context.Context, lineIDs []int) ([]LedgerEntry, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT order_item_id, receive_item_id, sugg_alloc_qty, created_at
		FROM sugg_alloc
		WHERE order_item_id IN (?)
		ORDER BY order_item_id ASC, receive_item_id ASC`, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("build ledger query: %w", err)
	}

	var entries []LedgerEntry
	if err := s.db.SelectContext(ctx, &entries, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}
	return entries, nil
}

func (s *SQLStore) AllocatedReceiptIDs(ctx context.Context) (map[int]bool, error) {
	var ids []int
	if err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT receive_item_id FROM sugg_alloc`); err != nil {
		return nil, fmt.Errorf("select allocated receipts: %w", err)
	}

	allocated := make(map[int]bool, len(ids))
	for _, id := range ids {
		allocated[id] = true
	}
	return allocated, nil
}

// ClearLedger deletes every ledger row of the scope in one transaction, so
// the clear either fully succeeds or nothing is cleared. Clearing an
// already-empty scope is a no-op.
func (s *SQLStore) ClearLedger(ctx context.Context, lineIDs []int) error {
	if len(lineIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM sugg_alloc WHERE order_item_id IN (?)`, lineIDs)
	if err != nil {
		return fmt.Errorf("build clear query: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear ledger rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return fmt.Errorf("commit clear: %w", err)
	}

	return nil
}

// CommitEntry inserts one row; ledger rows are never updated in place.
func (s *SQLStore) CommitEntry(ctx context.Context, entry LedgerEntry) error {
	query := s.db.Rebind(`
		INSERT INTO sugg_alloc (order_item_id, receive_item_id, sugg_alloc_qty, created_at)
		VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		entry.OrderItemID, entry.ReceiveItemID, entry.SuggAllocQty, entry.CreatedAt); err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}
	return nil
}
