package allocservice

import (
	"context"
	"testing"
)

// memStore is an in-memory Store used to drive the engine in tests.
type memStore struct {
	lines    []OrderLine
	receipts []InventoryReceipt
	ledger   []LedgerEntry
}

func (m *memStore) LineIDsForOrder(ctx context.Context, orderID int) ([]int, error) {
	var ids []int
	for _, line := range m.lines {
		if line.OrderID == orderID {
			ids = append(ids, line.OrderItemID)
		}
	}
	return ids, nil
}

func (m *memStore) LoadOrderLines(ctx context.Context, lineIDs []int) ([]OrderLine, error) {
	want := map[int]bool{}
	for _, id := range lineIDs {
		want[id] = true
	}
	var out []OrderLine
	for _, line := range m.lines {
		if want[line.OrderItemID] {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m *memStore) LoadInventory(ctx context.Context, itemIDs, skus []string) ([]InventoryReceipt, error) {
	wantItem := map[string]bool{}
	for _, id := range itemIDs {
		wantItem[id] = true
	}
	wantSku := map[string]bool{}
	for _, sku := range skus {
		wantSku[sku] = true
	}
	var out []InventoryReceipt
	for _, receipt := range m.receipts {
		if wantItem[NormalizeSKU(receipt.ItemID)] || wantSku[NormalizeSKU(receipt.SKU)] {
			out = append(out, receipt)
		}
	}
	return out, nil
}

func (m *memStore) LoadLedger(ctx context.Context, lineIDs []int) ([]LedgerEntry, error) {
	want := map[int]bool{}
	for _, id := range lineIDs {
		want[id] = true
	}
	var out []LedgerEntry
	for _, entry := range m.ledger {
		if want[entry.OrderItemID] {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memStore) AllocatedReceiptIDs(ctx context.Context) (map[int]bool, error) {
	allocated := map[int]bool{}
	for _, entry := range m.ledger {
		allocated[entry.ReceiveItemID] = true
	}
	return allocated, nil
}

func (m *memStore) ClearLedger(ctx context.Context, lineIDs []int) error {
	want := map[int]bool{}
	for _, id := range lineIDs {
		want[id] = true
	}
	var kept []LedgerEntry
	for _, entry := range m.ledger {
		if !want[entry.OrderItemID] {
			kept = append(kept, entry)
		}
	}
	m.ledger = kept
	return nil
}

func (m *memStore) CommitEntry(ctx context.Context, entry LedgerEntry) error {
	m.ledger = append(m.ledger, entry)
	return nil
}

func TestRunExactMatchSingleIteration(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 10},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 11, SKU: "X", AvailableQty: 10, ReceivedQty: 10, LocationName: "010A"},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", result.Iterations)
	}
	if len(result.Rows) != 1 || result.Rows[0].SuggAllocQty != 10 {
		t.Fatalf("rows = %+v, want one row of qty 10", result.Rows)
	}
	if result.Lines[0].RemainingQty != 0 {
		t.Errorf("remaining = %d, want 0", result.Lines[0].RemainingQty)
	}
}

func TestRunSplitsAcrossReceiptsByBucket(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 15},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 21, SKU: "X", AvailableQty: 10, ReceivedQty: 10, LocationName: "020B"},
			{ReceiveItemID: 22, SKU: "X", AvailableQty: 8, ReceivedQty: 8, LocationName: "030A"},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(result.Rows))
	}

	// Rows are sorted by receipt id; the bucket-3 non-A receipt is drawn
	// first for 10, the leftover 5 comes from the A receipt via bucket 7.
	byReceipt := map[int]int{}
	for _, row := range result.Rows {
		byReceipt[row.ReceiveItemID] = row.SuggAllocQty
	}
	if byReceipt[21] != 10 || byReceipt[22] != 5 {
		t.Errorf("allocations = %v, want 21:10 22:5", byReceipt)
	}
	if result.AllocatedQty != 15 {
		t.Errorf("allocated qty = %d, want 15", result.AllocatedQty)
	}
}

func TestRunReceiptExclusivityBetweenLines(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 5},
			{OrderItemID: 2, OrderID: 100, SKU: "X", OrderedQty: 5},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 31, SKU: "X", AvailableQty: 5, ReceivedQty: 5, LocationName: "010A"},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Rows) != 1 || result.Rows[0].OrderItemID != 1 {
		t.Fatalf("rows = %+v, want single row on line 1", result.Rows)
	}
	if result.Lines[1].RemainingQty != 5 {
		t.Errorf("line 2 remaining = %d, want 5", result.Lines[1].RemainingQty)
	}
}

func TestRunNoMatchIsNotAnError(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 10},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 41, SKU: "Y", AvailableQty: 10, ReceivedQty: 10, LocationName: "010A"},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Rows) != 0 {
		t.Errorf("rows = %+v, want none", result.Rows)
	}
	if result.Lines[0].RemainingQty != 10 {
		t.Errorf("remaining = %d, want full ordered qty", result.Lines[0].RemainingQty)
	}
}

func TestRunClearsStaleLedgerEvenWithoutInventory(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 10},
		},
		ledger: []LedgerEntry{
			{OrderItemID: 1, ReceiveItemID: 51, SuggAllocQty: 10},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(store.ledger) != 0 {
		t.Errorf("ledger = %+v, want stale rows removed and nothing committed", store.ledger)
	}
	if len(result.Rows) != 0 {
		t.Errorf("rows = %+v, want none", result.Rows)
	}
}

func TestRunStaleLedgerOutsideScopeStillBlocksReceipts(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 5},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 61, SKU: "X", AvailableQty: 5, ReceivedQty: 5, LocationName: "010A"},
		},
		ledger: []LedgerEntry{
			// Committed by a different order's run; receipt exclusivity is
			// global, so this receipt stays off-limits.
			{OrderItemID: 999, ReceiveItemID: 61, SuggAllocQty: 5},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Rows) != 0 {
		t.Errorf("rows = %+v, want none", result.Rows)
	}
	if result.Lines[0].RemainingQty != 5 {
		t.Errorf("remaining = %d, want 5", result.Lines[0].RemainingQty)
	}
}

func TestRunHitsIterationCap(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 50},
		},
	}
	for i := 1; i <= 5; i++ {
		store.receipts = append(store.receipts, InventoryReceipt{
			ReceiveItemID: 70 + i, SKU: "X", AvailableQty: 10, ReceivedQty: 10, LocationName: "010B",
		})
	}

	engine := NewEngineWithConfig(store, EngineConfig{IterationCap: 2})
	result, err := engine.Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.HitCap {
		t.Error("HitCap = false, want true")
	}
	if len(result.Rows) != 2 {
		t.Errorf("rows = %d, want exactly 2", len(result.Rows))
	}
	if result.Lines[0].RemainingQty != 30 {
		t.Errorf("remaining = %d, want 30", result.Lines[0].RemainingQty)
	}
}

func TestRunEmptyScope(t *testing.T) {
	store := &memStore{}

	if _, err := NewEngine(store).Run(context.Background(), Scope{}); err != ErrEmptyScope {
		t.Errorf("err = %v, want ErrEmptyScope", err)
	}

	// Negative and duplicate line ids filter down to nothing too.
	scope := Scope{OrderItemIDs: []int{-1, 0, -1}}
	if _, err := NewEngine(store).Run(context.Background(), scope); err != ErrEmptyScope {
		t.Errorf("err = %v, want ErrEmptyScope", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 10},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 81, SKU: "X", AvailableQty: 10, ReceivedQty: 10, LocationName: "010A"},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewEngine(store).Run(ctx, Scope{OrderID: 100}); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	build := func() *memStore {
		return &memStore{
			lines: []OrderLine{
				{OrderItemID: 2, OrderID: 100, SKU: "X", OrderedQty: 7},
				{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 12},
			},
			receipts: []InventoryReceipt{
				{ReceiveItemID: 93, SKU: "X", AvailableQty: 7, ReceivedQty: 7, LocationName: "030A"},
				{ReceiveItemID: 91, SKU: "X", AvailableQty: 12, ReceivedQty: 12, LocationName: "020B"},
				{ReceiveItemID: 92, SKU: "X", AvailableQty: 12, ReceivedQty: 12, LocationName: "010B"},
			},
		}
	}

	first, err := NewEngine(build()).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := NewEngine(build()).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.Rows) != len(second.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		a, b := first.Rows[i], second.Rows[i]
		if a.OrderItemID != b.OrderItemID || a.ReceiveItemID != b.ReceiveItemID || a.SuggAllocQty != b.SuggAllocQty {
			t.Errorf("row %d differs: %+v vs %+v", i, a, b)
		}
	}

	// Equal-size receipts fall back to the lower receipt id.
	if first.Rows[0].OrderItemID != 1 || first.Rows[0].ReceiveItemID != 91 {
		t.Errorf("first row = %+v, want line 1 on receipt 91", first.Rows[0])
	}
}

func TestRunNeverOverAllocatesReceipts(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 30},
			{OrderItemID: 2, OrderID: 100, SKU: "X", OrderedQty: 30},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 101, SKU: "X", AvailableQty: 20, ReceivedQty: 20, LocationName: "010A"},
			{ReceiveItemID: 102, SKU: "X", AvailableQty: 15, ReceivedQty: 15, LocationName: "020B"},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	avail := map[int]int{101: 20, 102: 15}
	seen := map[int]int{}
	for _, row := range result.Rows {
		seen[row.ReceiveItemID]++
		if seen[row.ReceiveItemID] > 1 {
			t.Errorf("receipt %d referenced by more than one row", row.ReceiveItemID)
		}
		if row.SuggAllocQty > avail[row.ReceiveItemID] {
			t.Errorf("receipt %d allocated %d, available %d", row.ReceiveItemID, row.SuggAllocQty, avail[row.ReceiveItemID])
		}
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		available int
		received  int
		location  string
		want      int
	}{
		{"fully A exact", 10, 10, 10, "010A", 1},
		{"fully nonA exact", 10, 10, 10, "010B", 2},
		{"fully nonA over", 15, 10, 10, "010B", 3},
		{"fully A over", 15, 10, 10, "010A", 4},
		{"partial A exact", 10, 10, 12, "010A", 5},
		{"partial A over", 15, 10, 12, "010A", 5},
		{"partial nonA exact", 10, 10, 12, "010B", 6},
		{"partial nonA over", 15, 10, 12, "010B", 6},
		{"fully A under", 5, 10, 10, "010A", 7},
		{"partial A under", 5, 10, 12, "010A", 7},
		{"fully nonA under", 5, 10, 10, "010B", 8},
		{"partial nonA under", 5, 10, 12, "010B", 8},
		{"short location is not A", 10, 10, 10, "A", 2},
		{"empty location under", 5, 10, 10, "", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bucketFor(tt.remaining, tt.available, tt.received, tt.location)
			if got != tt.want {
				t.Errorf("bucketFor(%d, %d, %d, %q) = %d, want %d",
					tt.remaining, tt.available, tt.received, tt.location, got, tt.want)
			}
		})
	}
}

func TestBetterCandidatePrefersSmallestInBucketSeven(t *testing.T) {
	store := &memStore{
		lines: []OrderLine{
			{OrderItemID: 1, OrderID: 100, SKU: "X", OrderedQty: 5},
		},
		receipts: []InventoryReceipt{
			{ReceiveItemID: 111, SKU: "X", AvailableQty: 50, ReceivedQty: 50, LocationName: "010A"},
			{ReceiveItemID: 112, SKU: "X", AvailableQty: 8, ReceivedQty: 8, LocationName: "020A"},
		},
	}

	result, err := NewEngine(store).Run(context.Background(), Scope{OrderID: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Rows) != 1 || result.Rows[0].ReceiveItemID != 112 {
		t.Fatalf("rows = %+v, want the 8-unit receipt", result.Rows)
	}
	if result.Rows[0].SuggAllocQty != 5 {
		t.Errorf("qty = %d, want 5", result.Rows[0].SuggAllocQty)
	}
}
