package allocservice

import "testing"

func TestCandidatesForWalksTiers(t *testing.T) {
	receipts := []InventoryReceipt{
		{ReceiveItemID: 1, ItemID: "IT-1", SKU: "X", Qualifier: "LOT1", AvailableQty: 5, ReceivedQty: 5},
		{ReceiveItemID: 2, SKU: "X", Qualifier: "LOT1", AvailableQty: 5, ReceivedQty: 5},
		{ReceiveItemID: 3, SKU: "X", Qualifier: "LOT2", AvailableQty: 5, ReceivedQty: 5},
	}
	idx := NewInventoryIndex(receipts, nil)

	tests := []struct {
		name     string
		line     OrderLine
		wantTier MatchTier
		wantIDs  []int
	}{
		{
			name:     "item id plus qualifier wins",
			line:     OrderLine{ItemID: "IT-1", SKU: "X", Qualifier: "LOT1"},
			wantTier: TierItemID,
			wantIDs:  []int{1},
		},
		{
			name:     "falls to sku plus qualifier",
			line:     OrderLine{ItemID: "IT-MISSING", SKU: "X", Qualifier: "LOT1"},
			wantTier: TierSKUQualifier,
			wantIDs:  []int{1, 2},
		},
		{
			name:     "falls to sku only",
			line:     OrderLine{SKU: "X", Qualifier: "LOT9"},
			wantTier: TierSKUOnly,
			wantIDs:  []int{1, 2, 3},
		},
		{
			name:     "nothing matches",
			line:     OrderLine{SKU: "Z"},
			wantTier: TierNone,
		},
		{
			name:     "matching is case and space insensitive",
			line:     OrderLine{SKU: "  x ", Qualifier: " lot1 "},
			wantTier: TierSKUQualifier,
			wantIDs:  []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, tier := idx.CandidatesFor(tt.line)
			if tier != tt.wantTier {
				t.Fatalf("tier = %s, want %s", tier, tt.wantTier)
			}
			if len(found) != len(tt.wantIDs) {
				t.Fatalf("candidates = %d, want %d", len(found), len(tt.wantIDs))
			}
			for i, state := range found {
				if state.ReceiveItemID != tt.wantIDs[i] {
					t.Errorf("candidate %d = receipt %d, want %d", i, state.ReceiveItemID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestCandidatesForReEvaluatesAfterDrain(t *testing.T) {
	receipts := []InventoryReceipt{
		{ReceiveItemID: 1, ItemID: "IT-1", SKU: "X", AvailableQty: 5, ReceivedQty: 5},
		{ReceiveItemID: 2, SKU: "X", AvailableQty: 5, ReceivedQty: 5},
	}
	idx := NewInventoryIndex(receipts, nil)
	line := OrderLine{ItemID: "IT-1", SKU: "X"}

	found, tier := idx.CandidatesFor(line)
	if tier != TierItemID || len(found) != 1 {
		t.Fatalf("tier = %s with %d candidates, want item-id tier with 1", tier, len(found))
	}

	found[0].used = true

	found, tier = idx.CandidatesFor(line)
	if tier != TierSKUQualifier {
		t.Fatalf("tier after drain = %s, want sku+qualifier", tier)
	}
	if len(found) != 1 || found[0].ReceiveItemID != 2 {
		t.Errorf("candidates after drain = %+v, want only receipt 2", found)
	}
}

func TestNewInventoryIndexFiltersInput(t *testing.T) {
	receipts := []InventoryReceipt{
		{ReceiveItemID: 1, SKU: "X", AvailableQty: 5, ReceivedQty: 5},
		{ReceiveItemID: 1, SKU: "X", AvailableQty: 99, ReceivedQty: 99}, // duplicate id, dropped
		{ReceiveItemID: 2, SKU: "X", AvailableQty: 0, ReceivedQty: 5},   // nothing available
		{ReceiveItemID: 3, SKU: "X", AvailableQty: -4, ReceivedQty: 5},  // negative treated as empty
		{ReceiveItemID: 4, SKU: "X", AvailableQty: 5, ReceivedQty: -1},  // corrupt received qty
		{ReceiveItemID: 5, SKU: "X", AvailableQty: 5, ReceivedQty: 5},
	}
	idx := NewInventoryIndex(receipts, map[int]bool{5: true})

	found, _ := idx.CandidatesFor(OrderLine{SKU: "X"})
	if len(found) != 1 || found[0].ReceiveItemID != 1 {
		t.Fatalf("candidates = %+v, want only the first receipt 1", found)
	}
	if found[0].AvailableQty != 5 {
		t.Errorf("duplicate receipt replaced the original: avail = %d, want 5", found[0].AvailableQty)
	}
}

func TestMatchKeys(t *testing.T) {
	lines := []OrderLine{
		{ItemID: " it-1 ", SKU: "x"},
		{ItemID: "IT-1", SKU: "X"},
		{SKU: "y"},
		{},
	}

	itemIDs, skus := MatchKeys(lines)

	if len(itemIDs) != 1 || itemIDs[0] != "IT-1" {
		t.Errorf("itemIDs = %v, want [IT-1]", itemIDs)
	}
	if len(skus) != 2 || skus[0] != "X" || skus[1] != "Y" {
		t.Errorf("skus = %v, want [X Y]", skus)
	}
}

func TestNormalize(t *testing.T) {
	if got := NormalizeSKU("  ab-12c "); got != "AB-12C" {
		t.Errorf("NormalizeSKU = %q", got)
	}
	if got := NormalizeQualifier("   "); got != "" {
		t.Errorf("NormalizeQualifier = %q, want empty", got)
	}
}
