package extensivservice

import (
	"strconv"
	"strings"
	"time"
)

// The WMS answers in several envelope shapes: HAL _embedded rels, the
// legacy ResourceList wrapper, a plain data array, or a bare array. Each
// shape is a named strategy; extraction tries them in order and the first
// non-empty result wins.

type ListStrategy struct {
	Name    string
	Extract func(data interface{}) []interface{}
}

func halStrategy(rel string) ListStrategy {
	return ListStrategy{
		Name: "HAL:_embedded[" + rel + "]",
		Extract: func(data interface{}) []interface{} {
			obj, ok := data.(map[string]interface{})
			if !ok {
				return nil
			}
			embedded, ok := obj["_embedded"].(map[string]interface{})
			if !ok {
				return nil
			}
			list, _ := embedded[rel].([]interface{})
			return list
		},
	}
}

func keyStrategy(key string) ListStrategy {
	return ListStrategy{
		Name: key,
		Extract: func(data interface{}) []interface{} {
			obj, ok := data.(map[string]interface{})
			if !ok {
				return nil
			}
			list, _ := obj[key].([]interface{})
			return list
		},
	}
}

var rootStrategy = ListStrategy{
	Name: "(root)",
	Extract: func(data interface{}) []interface{} {
		list, _ := data.([]interface{})
		return list
	},
}

var OrderListStrategies = []ListStrategy{
	halStrategy("http://api.3plCentral.com/rels/orders/order"),
	keyStrategy("ResourceList"),
	keyStrategy("data"),
	rootStrategy,
}

var OrderItemStrategies = []ListStrategy{
	halStrategy("http://api.3plCentral.com/rels/orders/item"),
	keyStrategy("OrderItems"),
	keyStrategy("OrderLineItems"),
	keyStrategy("Items"),
	keyStrategy("ResourceList"),
	keyStrategy("data"),
}

var InventoryListStrategies = []ListStrategy{
	halStrategy("http://api.3plCentral.com/rels/inventory/item"),
	keyStrategy("ResourceList"),
	keyStrategy("data"),
	rootStrategy,
}

// FirstList applies the strategies in order and returns the first non-empty
// record list plus the winning strategy name.
func FirstList(data interface{}, strategies []ListStrategy) ([]map[string]interface{}, string) {
	for _, strategy := range strategies {
		raw := strategy.Extract(data)
		if len(raw) == 0 {
			continue
		}

		records := make([]map[string]interface{}, 0, len(raw))
		for _, item := range raw {
			if record, ok := item.(map[string]interface{}); ok {
				records = append(records, record)
			}
		}
		if len(records) > 0 {
			return records, strategy.Name
		}
	}

	return nil, ""
}

// PickString returns the first non-empty string value among the candidate
// field names. The WMS is inconsistent about casing per entity.
func PickString(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if val, ok := record[key]; ok {
			if str, ok := val.(string); ok && strings.TrimSpace(str) != `` {
				return strings.TrimSpace(str)
			}
		}
	}
	return ``
}

// PickInt returns the first numeric value among the candidate field names,
// accepting JSON numbers and numeric strings; anything unparseable is 0.
func PickInt(record map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		val, ok := record[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return int(parsed)
			}
		}
	}
	return 0
}

// PickTime parses the first parseable RFC3339-ish timestamp among the
// candidate field names.
func PickTime(record map[string]interface{}, keys ...string) *time.Time {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	for _, key := range keys {
		str := PickString(record, key)
		if str == `` {
			continue
		}
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, str); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

// NormalizeOrder flattens one raw order payload into a header row and its
// line rows.
func NormalizeOrder(record map[string]interface{}) (OrderHeader, []OrderDetail) {
	header := OrderHeader{
		OrderID:          PickInt(record, "OrderId", "orderId", "id"),
		ReferenceNum:     PickString(record, "ReferenceNum", "referenceNum", "OrderNumber", "orderNumber"),
		CustomerID:       PickInt(record, "CustomerId", "customerId"),
		CustomerName:     PickString(record, "CustomerName", "customerName"),
		FacilityID:       PickInt(record, "FacilityId", "facilityId"),
		Status:           PickInt(record, "Status", "status"),
		ProcessDate:      PickTime(record, "ProcessDate", "processDate"),
		LastModifiedDate: PickTime(record, "LastModifiedDate", "lastModifiedDate"),
	}

	rawItems, _ := FirstList(record, OrderItemStrategies)

	details := make([]OrderDetail, 0, len(rawItems))
	for _, item := range rawItems {
		detail := OrderDetail{
			OrderItemID: PickInt(item, "OrderItemId", "OrderItemID", "orderItemId", "id"),
			OrderID:     header.OrderID,
			ItemID:      PickString(item, "ItemId", "ItemID", "itemId"),
			SKU:         PickString(item, "SKU", "Sku", "sku", "ItemIdentifier"),
			Qualifier:   PickString(item, "Qualifier", "qualifier"),
			OrderedQty:  PickInt(item, "OrderedQty", "OrderedQTY", "OrderedQuantity", "Qty", "quantity"),
		}
		if detail.OrderItemID == 0 {
			continue
		}
		details = append(details, detail)
	}

	return header, details
}

// NormalizeReceipt maps one raw inventory record to an inventory row.
// Records without a receive item id are skipped.
func NormalizeReceipt(record map[string]interface{}) (InventoryItem, bool) {
	item := InventoryItem{
		ReceiveItemID: PickInt(record, "ReceiveItemId", "ReceiveItemID", "receiveItemId", "id"),
		ItemID:        PickString(record, "ItemId", "ItemID", "itemId"),
		SKU:           PickString(record, "SKU", "Sku", "sku", "ItemIdentifier"),
		Qualifier:     PickString(record, "Qualifier", "qualifier"),
		AvailableQty:  PickInt(record, "AvailableQty", "AvailableQTY", "Available", "available"),
		ReceivedQty:   PickInt(record, "ReceivedQty", "ReceivedQTY", "OriginalQty", "received"),
		LocationName:  PickString(record, "LocationName", "Location", "locationName", "location"),
	}

	if item.ReceiveItemID == 0 {
		return InventoryItem{}, false
	}
	return item, true
}
