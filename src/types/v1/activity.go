package types

import (
	"github.com/shopspring/decimal"
)

// ActivityParams 活动分页参数
type ActivityParams struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size" validate:"omitempty,max=100"`
}

// ActivityInfo 挂单 / 成交记录
type ActivityInfo struct {
	ItemID    string          `json:"item_id"`
	EventType string          `json:"event_type"` // list, sale
	EventTime int64           `json:"event_time"`
	Maker     string          `json:"maker"` // 卖家
	Taker     string          `json:"taker"` // 买家, 仅成交时有值
	Price     decimal.Decimal `json:"price"`
}

type ActivityResp struct {
	Result interface{} `json:"result"`
	Count  int64       `json:"count"`
}
