package extensivservice

import (
	"encoding/json"
	"testing"
)

func mustDecode(t *testing.T, raw string) interface{} {
	t.Helper()
	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return data
}

func TestFirstListEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantLen  int
		wantName string
	}{
		{
			name:     "HAL embedded rel",
			raw:      `{"_embedded":{"http://api.3plCentral.com/rels/orders/order":[{"OrderId":1},{"OrderId":2}]}}`,
			wantLen:  2,
			wantName: "HAL:_embedded[http://api.3plCentral.com/rels/orders/order]",
		},
		{
			name:     "legacy ResourceList",
			raw:      `{"ResourceList":[{"OrderId":1}]}`,
			wantLen:  1,
			wantName: "ResourceList",
		},
		{
			name:     "data wrapper",
			raw:      `{"data":[{"OrderId":1}]}`,
			wantLen:  1,
			wantName: "data",
		},
		{
			name:     "bare array",
			raw:      `[{"OrderId":1}]`,
			wantLen:  1,
			wantName: "(root)",
		},
		{
			name:    "nothing matches",
			raw:     `{"TotalResults":0}`,
			wantLen: 0,
		},
		{
			name:    "empty HAL list falls through to nothing",
			raw:     `{"_embedded":{"http://api.3plCentral.com/rels/orders/order":[]}}`,
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, name := FirstList(mustDecode(t, tt.raw), OrderListStrategies)
			if len(records) != tt.wantLen {
				t.Errorf("records = %d, want %d", len(records), tt.wantLen)
			}
			if name != tt.wantName {
				t.Errorf("strategy = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestPickHelpers(t *testing.T) {
	record := map[string]interface{}{
		"OrderId":   float64(42),
		"qtyStr":    " 7 ",
		"empty":     "",
		"customer":  "  Acme  ",
		"deadField": nil,
	}

	if got := PickInt(record, "missing", "OrderId"); got != 42 {
		t.Errorf("PickInt = %d, want 42", got)
	}
	if got := PickInt(record, "qtyStr"); got != 7 {
		t.Errorf("PickInt string = %d, want 7", got)
	}
	if got := PickInt(record, "deadField", "empty"); got != 0 {
		t.Errorf("PickInt fallback = %d, want 0", got)
	}
	if got := PickString(record, "empty", "customer"); got != "Acme" {
		t.Errorf("PickString = %q, want Acme", got)
	}

	withTime := map[string]interface{}{"ProcessDate": "2026-03-01T10:30:00"}
	parsed := PickTime(withTime, "ProcessDate")
	if parsed == nil || parsed.Day() != 1 || parsed.Hour() != 10 {
		t.Errorf("PickTime = %v", parsed)
	}
	if PickTime(record, "customer") != nil {
		t.Error("PickTime on junk should be nil")
	}
}

func TestNormalizeOrder(t *testing.T) {
	raw := `{
		"OrderId": 100,
		"ReferenceNum": "SO-100",
		"CustomerId": 7,
		"_embedded": {
			"http://api.3plCentral.com/rels/orders/item": [
				{"OrderItemId": 1, "ItemIdentifier": "SKU-A", "Qualifier": "LOT1", "OrderedQty": 5},
				{"OrderItemId": 2, "Sku": "SKU-B", "Qty": "3"},
				{"Sku": "NO-ID", "OrderedQty": 9}
			]
		}
	}`

	data := mustDecode(t, raw).(map[string]interface{})
	header, details := NormalizeOrder(data)

	if header.OrderID != 100 || header.ReferenceNum != "SO-100" || header.CustomerID != 7 {
		t.Errorf("header = %+v", header)
	}
	if len(details) != 2 {
		t.Fatalf("details = %d, want 2 (id-less row skipped)", len(details))
	}
	if details[0].SKU != "SKU-A" || details[0].Qualifier != "LOT1" || details[0].OrderedQty != 5 {
		t.Errorf("detail 0 = %+v", details[0])
	}
	if details[1].OrderID != 100 || details[1].OrderedQty != 3 {
		t.Errorf("detail 1 = %+v", details[1])
	}
}

func TestNormalizeReceipt(t *testing.T) {
	record := map[string]interface{}{
		"ReceiveItemId":  float64(55),
		"ItemIdentifier": "SKU-A",
		"AvailableQty":   float64(10),
		"ReceivedQty":    float64(12),
		"LocationName":   "010A",
	}

	item, ok := NormalizeReceipt(record)
	if !ok {
		t.Fatal("expected a usable receipt")
	}
	if item.ReceiveItemID != 55 || item.SKU != "SKU-A" || item.AvailableQty != 10 || item.ReceivedQty != 12 {
		t.Errorf("item = %+v", item)
	}

	if _, ok := NormalizeReceipt(map[string]interface{}{"SKU": "X"}); ok {
		t.Error("receipt without an id should be skipped")
	}
}
