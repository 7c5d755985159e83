package allocservice

import "fmt"

// MatchTier is the fallback level of match strictness used for one line.
type MatchTier int

const (
	TierItemID MatchTier = iota + 1
	TierSKUQualifier
	TierSKUOnly
	TierNone
)

func (t MatchTier) String() string {
	switch t {
	case TierItemID:
		return "item-id"
	case TierSKUQualifier:
		return "sku+qualifier"
	case TierSKUOnly:
		return "sku-only"
	default:
		return "none"
	}
}

// receiptState is the engine's mutable view of one candidate receipt.
// A receipt is consumed whole: once a ledger row references it, it is
// excluded from every later iteration.
type receiptState struct {
	InventoryReceipt
	used bool
}

func (r *receiptState) eligible() bool {
	return !r.used && r.AvailableQty > 0
}

// InventoryIndex groups candidate receipts by matching key per tier.
type InventoryIndex struct {
	byItemQual map[string][]*receiptState
	bySkuQual  map[string][]*receiptState
	bySku      map[string][]*receiptState
}

func qualKey(id, qualifier string) string {
	return fmt.Sprintf(`%s|%s`, id, qualifier)
}

// NewInventoryIndex builds the candidate pool for a run. Receipts with
// non-positive availability are dropped, duplicate receipt ids keep the
// first occurrence, and receipts already referenced by any ledger row are
// marked used up front (receipt exclusivity is global across the table).
func NewInventoryIndex(receipts []InventoryReceipt, alreadyAllocated map[int]bool) *InventoryIndex {
	idx := &InventoryIndex{
		byItemQual: map[string][]*receiptState{},
		bySkuQual:  map[string][]*receiptState{},
		bySku:      map[string][]*receiptState{},
	}

	seen := map[int]bool{}

	for _, receipt := range receipts {
		if seen[receipt.ReceiveItemID] {
			continue
		}
		seen[receipt.ReceiveItemID] = true

		if receipt.AvailableQty <= 0 || receipt.ReceivedQty < 0 {
			continue
		}

		state := &receiptState{
			InventoryReceipt: receipt,
			used:             alreadyAllocated[receipt.ReceiveItemID],
		}

		itemID := NormalizeSKU(receipt.ItemID)
		sku := NormalizeSKU(receipt.SKU)
		qualifier := NormalizeQualifier(receipt.Qualifier)

		if itemID != `` {
			key := qualKey(itemID, qualifier)
			idx.byItemQual[key] = append(idx.byItemQual[key], state)
		}

		if sku != `` {
			key := qualKey(sku, qualifier)
			idx.bySkuQual[key] = append(idx.bySkuQual[key], state)
			idx.bySku[sku] = append(idx.bySku[sku], state)
		}
	}

	return idx
}

// CandidatesFor returns the eligible receipts for a line, walking the tiers
// in order and stopping at the first tier that still has eligible stock.
// Tier selection is per line and re-evaluated every iteration, so a line
// whose exact-key pool has been drained falls through to the wider keys.
func (idx *InventoryIndex) CandidatesFor(line OrderLine) ([]*receiptState, MatchTier) {
	itemID := NormalizeSKU(line.ItemID)
	sku := NormalizeSKU(line.SKU)
	qualifier := NormalizeQualifier(line.Qualifier)

	if itemID != `` {
		if found := eligibleOnly(idx.byItemQual[qualKey(itemID, qualifier)]); len(found) > 0 {
			return found, TierItemID
		}
	}

	if sku != `` {
		if found := eligibleOnly(idx.bySkuQual[qualKey(sku, qualifier)]); len(found) > 0 {
			return found, TierSKUQualifier
		}

		if found := eligibleOnly(idx.bySku[sku]); len(found) > 0 {
			return found, TierSKUOnly
		}
	}

	return nil, TierNone
}

func eligibleOnly(states []*receiptState) []*receiptState {
	var found []*receiptState
	for _, state := range states {
		if state.eligible() {
			found = append(found, state)
		}
	}
	return found
}

// MatchKeys collects the normalized item ids and SKUs of the scope's lines,
// used to load only the inventory slice a run can possibly touch.
func MatchKeys(lines []OrderLine) (itemIDs []string, skus []string) {
	seenItem := map[string]bool{}
	seenSku := map[string]bool{}

	for _, line := range lines {
		if itemID := NormalizeSKU(line.ItemID); itemID != `` && !seenItem[itemID] {
			itemIDs = append(itemIDs, itemID)
			seenItem[itemID] = true
		}
		if sku := NormalizeSKU(line.SKU); sku != `` && !seenSku[sku] {
			skus = append(skus, sku)
			seenSku[sku] = true
		}
	}

	return itemIDs, skus
}
