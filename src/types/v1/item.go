package types

import (
	"github.com/shopspring/decimal"
)

// ItemCardParams 卡片查询参数
type ItemCardParams struct {
	Role string `form:"role" json:"role" validate:"omitempty,oneof=collection discover"`
}

// ConfirmParams 挂单价格, 只接受正整数
type ConfirmParams struct {
	Price string `form:"price" json:"price" validate:"required,price"`
}

// ItemCard 卡片视图
type ItemCard struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	Name            string           `json:"name"`
	Owner           string           `json:"owner"`
	Image           string           `json:"image,omitempty"` // data URL
	Price           *decimal.Decimal `json:"price,omitempty"`
	SellStatus      string           `json:"sell_status"`
	Control         string           `json:"control"`
	PriceInputShown bool             `json:"price_input_shown"`
	PriceInput      string           `json:"price_input"`
	Blurred         bool             `json:"blurred"`
	Loading         bool             `json:"loading"`
	Visible         bool             `json:"visible"`
}

type ItemCardResp struct {
	Result interface{} `json:"result"`
}
