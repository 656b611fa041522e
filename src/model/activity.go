package model

import "github.com/shopspring/decimal"

const (
	ActivityList = 1 // 挂单
	ActivitySale = 2 // 成交
)

// ItemActivity NFT 的挂单 / 成交记录
type ItemActivity struct {
	Id         int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ItemId     string          `gorm:"column:item_id;type:varchar(64);index:idx_item_time" json:"item_id"`
	EventType  int             `gorm:"column:event_type" json:"event_type"`
	Maker      string          `gorm:"column:maker;type:varchar(64)" json:"maker"` // 卖家
	Taker      string          `gorm:"column:taker;type:varchar(64)" json:"taker"` // 买家, 挂单时为空
	Price      decimal.Decimal `gorm:"column:price;type:decimal(30,0)" json:"price"`
	EventTime  int64           `gorm:"column:event_time;index:idx_item_time" json:"event_time"` // unix 毫秒
	CreateTime int64           `gorm:"column:create_time" json:"create_time"`
	UpdateTime int64           `gorm:"column:update_time" json:"update_time"`
}

func ItemActivityTableName() string {
	return "opend_item_activity"
}

// EventTypeName 活动类型的展示名
func EventTypeName(eventType int) string {
	switch eventType {
	case ActivityList:
		return "list"
	case ActivitySale:
		return "sale"
	default:
		return "unknown"
	}
}
