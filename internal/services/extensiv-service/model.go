package extensivservice

import "time"

func (OrderHeader) TableName() string {
	return "order_headers"
}

func (OrderDetail) TableName() string {
	return "order_details"
}

func (InventoryItem) TableName() string {
	return "inventory"
}

type OrderHeader struct {
	OrderID          int        `gorm:"column:order_id;primaryKey" json:"order_id"`
	ReferenceNum     string     `gorm:"column:reference_num" json:"reference_num"`
	CustomerID       int        `gorm:"column:customer_id" json:"customer_id"`
	CustomerName     string     `gorm:"column:customer_name" json:"customer_name"`
	FacilityID       int        `gorm:"column:facility_id" json:"facility_id"`
	Status           int        `gorm:"column:status" json:"status"`
	ProcessDate      *time.Time `gorm:"column:process_date" json:"process_date"`
	LastModifiedDate *time.Time `gorm:"column:last_modified_date" json:"last_modified_date"`
}

type OrderDetail struct {
	OrderItemID int    `gorm:"column:order_item_id;primaryKey" json:"order_item_id"`
	OrderID     int    `gorm:"column:order_id" json:"order_id"`
	ItemID      string `gorm:"column:item_id" json:"item_id"`
	SKU         string `gorm:"column:sku" json:"sku"`
	Qualifier   string `gorm:"column:qualifier" json:"qualifier"`
	OrderedQty  int    `gorm:"column:ordered_qty" json:"ordered_qty"`
}

type InventoryItem struct {
	ReceiveItemID int    `gorm:"column:receive_item_id;primaryKey" json:"receive_item_id"`
	ItemID        string `gorm:"column:item_id" json:"item_id"`
	SKU           string `gorm:"column:sku" json:"sku"`
	Qualifier     string `gorm:"column:qualifier" json:"qualifier"`
	AvailableQty  int    `gorm:"column:available_qty" json:"available_qty"`
	ReceivedQty   int    `gorm:"column:received_qty" json:"received_qty"`
	LocationName  string `gorm:"column:location_name" json:"location_name"`
}
