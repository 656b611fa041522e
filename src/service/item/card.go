package item

import (
	"encoding/base64"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"

	"github.com/PhilipDev237/opend/src/common/principal"
)

// Role 卡片的展示模式, 由调用方传入
type Role string

const (
	RoleCollection Role = "collection" // 我的收藏页, 持有者视角
	RoleDiscover   Role = "discover"   // 市场发现页, 买家视角
)

// Control 卡片上唯一的操作按钮
type Control string

const (
	ControlNone    Control = ""
	ControlSell    Control = "sell"
	ControlConfirm Control = "confirm"
	ControlBuy     Control = "buy"
)

const (
	// OwnerMarketplace 已挂单的 NFT 所有者显示为市场
	OwnerMarketplace = "OpenD"
	// StatusListed 已挂单状态标签
	StatusListed = "Listed"
)

// Card item 卡片的视图状态
// 字段在对应的远程调用返回之前保持零值
type Card struct {
	ID     principal.Principal `json:"id"`
	Role   Role                `json:"role"`
	Caller principal.Principal `json:"caller"`

	Name       string           `json:"name"`
	Owner      string           `json:"owner"`
	Image      []byte           `json:"-"`
	Price      *decimal.Decimal `json:"price,omitempty"` // 仅 discover 模式展示
	SellStatus string           `json:"sell_status"`

	Control         Control `json:"control"`
	PriceInputShown bool    `json:"price_input_shown"`
	PriceInput      string  `json:"price_input"`

	Blurred bool `json:"blurred"`
	Loading bool `json:"loading"`
	Visible bool `json:"visible"`
	Loaded  bool `json:"loaded"`
}

// ImageContentType 根据图片内容识别 MIME 类型, 识别失败时按 png 处理
func (c *Card) ImageContentType() string {
	if len(c.Image) == 0 {
		return "image/png"
	}
	mt := mimetype.Detect(c.Image)
	if mt.Is("application/octet-stream") {
		return "image/png"
	}
	return mt.String()
}

// ImageDataURL 图片的 data URL, 前端可直接作为 img src
func (c *Card) ImageDataURL() string {
	if len(c.Image) == 0 {
		return ""
	}
	return "data:" + c.ImageContentType() + ";base64," + base64.StdEncoding.EncodeToString(c.Image)
}

func (c Card) clone() Card {
	cp := c
	if c.Price != nil {
		p := *c.Price
		cp.Price = &p
	}
	return cp
}
