package allocservice

import (
	"strings"
	"time"
)

// OrderLine is one ordered quantity of a SKU for one order. The engine only
// reads order lines; imports own their lifecycle.
type OrderLine struct {
	OrderItemID int    `db:"order_item_id" json:"order_item_id"`
	OrderID     int    `db:"order_id" json:"order_id"`
	ItemID      string `db:"item_id" json:"item_id"`
	SKU         string `db:"sku" json:"sku"`
	Qualifier   string `db:"qualifier" json:"qualifier"`
	OrderedQty  int    `db:"ordered_qty" json:"ordered_qty"`
}

// InventoryReceipt is one receivable unit of stock at a location.
// AvailableQty is the quantity not yet committed to any ledger row;
// ReceivedQty is the original received quantity, used only to classify
// fully-received vs over-received candidates.
type InventoryReceipt struct {
	ReceiveItemID int    `db:"receive_item_id" json:"receive_item_id"`
	ItemID        string `db:"item_id" json:"item_id"`
	SKU           string `db:"sku" json:"sku"`
	Qualifier     string `db:"qualifier" json:"qualifier"`
	AvailableQty  int    `db:"available_qty" json:"available_qty"`
	ReceivedQty   int    `db:"received_qty" json:"received_qty"`
	LocationName  string `db:"location_name" json:"location_name"`
}

// LedgerEntry is one committed allocation decision.
type LedgerEntry struct {
	OrderItemID   int       `db:"order_item_id" json:"order_item_id"`
	ReceiveItemID int       `db:"receive_item_id" json:"receive_item_id"`
	SuggAllocQty  int       `db:"sugg_alloc_qty" json:"sugg_alloc_qty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Scope is the set of order lines one allocation run operates on, either a
// whole order or an explicit line id list.
type Scope struct {
	OrderID      int   `json:"order_id"`
	OrderItemIDs []int `json:"order_item_ids"`
}

// LineResult reports per-line demand after a run, so under-allocation is
// observable without inspecting logs.
type LineResult struct {
	OrderItemID  int `json:"order_item_id"`
	OrderedQty   int `json:"ordered_qty"`
	AllocatedQty int `json:"allocated_qty"`
	RemainingQty int `json:"remaining_qty"`
}

// Result is the outcome of one allocation run.
type Result struct {
	AllocatedCount int           `json:"allocated_count"`
	AllocatedQty   int           `json:"allocated_qty"`
	Iterations     int           `json:"iterations"`
	HitCap         bool          `json:"hit_cap"`
	Rows           []LedgerEntry `json:"ledger_rows"`
	Lines          []LineResult  `json:"lines"`
}

// ProposedAllocation is one receipt/qty pair of a push payload.
type ProposedAllocation struct {
	ReceiveItemID int `json:"receiveItemId"`
	Qty           int `json:"qty"`
}

// LinePushPayload groups the proposed allocations of one order line.
type LinePushPayload struct {
	OrderItemID         int                  `json:"orderItemId"`
	ProposedAllocations []ProposedAllocation `json:"proposedAllocations"`
}

// PushPayload is the body handed to the outbound WMS push collaborator.
type PushPayload struct {
	ProposedAllocations []LinePushPayload `json:"proposedAllocations"`
}

// NormalizeSKU uppercases and trims a SKU or item id for matching.
func NormalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeQualifier normalizes a qualifier the same way; an empty string
// means "no qualifier".
func NormalizeQualifier(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
