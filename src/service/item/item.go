package item

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/utils"
	"github.com/PhilipDev237/opend/src/common/xzap"
)

var (
	// ErrNotSuccess 远程调用返回了非 "Success" 的状态
	ErrNotSuccess = errors.New("remote call did not succeed")
	// ErrInvalidPrice 价格输入不是正整数
	ErrInvalidPrice = errors.New("invalid price")
	// ErrUnexpectedControl 当前卡片状态不允许该操作
	ErrUnexpectedControl = errors.New("action not available in current card state")
	// ErrInFlight 卡片上已有正在执行的操作
	ErrInFlight = errors.New("another action is in flight")
	// ErrInsufficientFunds 买家余额不足以支付价格
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// StatusError 远程调用返回的状态不是 Success
type StatusError struct {
	Op     string
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %q", e.Op, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotSuccess
}

// NFTActor 单个 NFT canister
type NFTActor interface {
	GetName(ctx context.Context) (string, error)
	GetOwner(ctx context.Context) (principal.Principal, error)
	GetAsset(ctx context.Context) ([]byte, error)
	TransferOwnership(ctx context.Context, newOwner principal.Principal) (string, error)
}

// Marketplace 市场 canister
type Marketplace interface {
	IsListed(ctx context.Context, item principal.Principal) (bool, error)
	GetOriginalOwner(ctx context.Context, item principal.Principal) (principal.Principal, error)
	GetNFTPrice(ctx context.Context, item principal.Principal) (decimal.Decimal, error)
	ListItem(ctx context.Context, item principal.Principal, price decimal.Decimal) (string, error)
	GetOpendCanisterID(ctx context.Context) (principal.Principal, error)
	CompletePurchase(ctx context.Context, item, seller, buyer principal.Principal) (string, error)
}

// TokenActor 代币 canister, 以调用者身份转出
type TokenActor interface {
	Transfer(ctx context.Context, to principal.Principal, amount decimal.Decimal) (string, error)
	BalanceOf(ctx context.Context, who principal.Principal) (decimal.Decimal, error)
}

// Receipt confirm / buy 成功后的结果, 用于记录活动
type Receipt struct {
	Item   principal.Principal
	Seller principal.Principal
	Buyer  principal.Principal
	Price  decimal.Decimal
}

// Item 单个 NFT 卡片
// 状态变更在锁内完成, 远程调用期间不持有锁, Loading 标记表示有操作进行中
type Item struct {
	nft    NFTActor
	market Marketplace
	token  TokenActor

	mu   sync.Mutex
	card Card
}

// New 创建一个尚未加载的卡片
func New(id principal.Principal, role Role, caller principal.Principal, nft NFTActor, market Marketplace, token TokenActor) *Item {
	return Restore(Card{ID: id, Role: role, Caller: caller, Visible: true}, nft, market, token)
}

// Restore 从已保存的卡片状态恢复
func Restore(card Card, nft NFTActor, market Marketplace, token TokenActor) *Item {
	return &Item{
		nft:    nft,
		market: market,
		token:  token,
		card:   card.clone(),
	}
}

// Card 返回当前卡片状态的快照
func (it *Item) Card() Card {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.card.clone()
}

// Load 加载卡片
// 1. 从 NFT canister 读取名称, 所有者, 图片
// 2. collection 模式: 已挂单则显示市场为所有者并模糊图片, 未挂单则显示 Sell 按钮
// 3. discover 模式: 调用者不是原持有者时显示 Buy 按钮, 并展示价格
// 任一调用失败时卡片保持加载前的状态
func (it *Item) Load(ctx context.Context) error {
	it.mu.Lock()
	if it.card.Loading {
		it.mu.Unlock()
		return ErrInFlight
	}
	card := Card{ID: it.card.ID, Role: it.card.Role, Caller: it.card.Caller, Visible: true}
	it.mu.Unlock()

	var err error
	if card.Name, err = it.nft.GetName(ctx); err != nil {
		return errors.Wrap(err, "failed on get nft name")
	}
	owner, err := it.nft.GetOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "failed on get nft owner")
	}
	card.Owner = owner.Text()
	if card.Image, err = it.nft.GetAsset(ctx); err != nil {
		return errors.Wrap(err, "failed on get nft asset")
	}

	switch card.Role {
	case RoleCollection:
		listed, err := it.market.IsListed(ctx, card.ID)
		if err != nil {
			return errors.Wrap(err, "failed on check listing")
		}
		if listed {
			card.Owner = OwnerMarketplace
			card.Blurred = true
			card.SellStatus = StatusListed
		} else {
			card.Control = ControlSell
		}
	case RoleDiscover:
		originalOwner, err := it.market.GetOriginalOwner(ctx, card.ID)
		if err != nil {
			return errors.Wrap(err, "failed on get original owner")
		}
		if originalOwner != card.Caller {
			card.Control = ControlBuy
		}

		price, err := it.market.GetNFTPrice(ctx, card.ID)
		if err != nil {
			return errors.Wrap(err, "failed on get nft price")
		}
		card.Price = &price
	}

	card.Loaded = true
	it.mu.Lock()
	it.card = card
	it.mu.Unlock()
	return nil
}

// Sell 展示价格输入框, 按钮切换为 Confirm
func (it *Item) Sell() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.card.Loading {
		return ErrInFlight
	}
	if it.card.Control != ControlSell {
		return errors.Wrapf(ErrUnexpectedControl, "sell with control %q", it.card.Control)
	}

	it.card.PriceInputShown = true
	it.card.PriceInput = ""
	it.card.Control = ControlConfirm
	return nil
}

// SetPriceInput 更新价格输入框内容
func (it *Item) SetPriceInput(text string) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if !it.card.PriceInputShown {
		return errors.Wrap(ErrUnexpectedControl, "price input is hidden")
	}
	it.card.PriceInput = text
	return nil
}

// Confirm 以输入的价格挂单
// 1. 调用市场 listItem
// 2. 成功后将 NFT 所有权转移给市场 canister
// 3. 全部成功后卡片显示 Listed, 所有者为市场
// 失败时卡片回到 Confirm 之前的状态并返回错误
func (it *Item) Confirm(ctx context.Context) (*Receipt, error) {
	it.mu.Lock()
	if it.card.Loading {
		it.mu.Unlock()
		return nil, ErrInFlight
	}
	if it.card.Control != ControlConfirm {
		control := it.card.Control
		it.mu.Unlock()
		return nil, errors.Wrapf(ErrUnexpectedControl, "confirm with control %q", control)
	}
	price, err := utils.ParsePrice(it.card.PriceInput)
	if err != nil {
		input := it.card.PriceInput
		it.mu.Unlock()
		return nil, errors.Wrapf(ErrInvalidPrice, "%q: %v", input, err)
	}
	prev := it.card.clone()
	it.card.Blurred = true
	it.card.Loading = true
	id, seller := it.card.ID, it.card.Caller
	it.mu.Unlock()

	logger := xzap.WithContext(ctx).With(zap.String("item", id.Text()), zap.String("price", price.String()))

	status, err := it.market.ListItem(ctx, id, price)
	if err = checkStatus("listItem", status, err); err != nil {
		it.rollback(prev)
		logger.Warn("list item failed", zap.Error(err))
		return nil, err
	}

	opendID, err := it.market.GetOpendCanisterID(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		status, err = it.nft.TransferOwnership(ctx, opendID)
		err = checkStatus("transferOwnership", status, err)
	}
	if err != nil {
		it.rollback(prev)
		// 市场侧已登记挂单, 但 NFT 仍在卖家手中, 这里无法撤销
		logger.Error("item listed but ownership not transferred", zap.Error(err))
		return nil, err
	}

	it.mu.Lock()
	it.card.Loading = false
	it.card.Control = ControlNone
	it.card.PriceInputShown = false
	it.card.PriceInput = ""
	it.card.Owner = OwnerMarketplace
	it.card.SellStatus = StatusListed
	it.mu.Unlock()

	return &Receipt{Item: id, Seller: seller, Price: price}, nil
}

// Buy 购买当前卡片的 NFT
// 1. 查询卖家 (原持有者) 与价格
// 2. 余额不足时直接失败, 不发起转账
// 3. 以调用者身份向卖家转账
// 4. 通知市场完成交易, 成功后卡片隐藏
// 失败时卡片回到 Buy 之前的状态并返回错误
func (it *Item) Buy(ctx context.Context) (*Receipt, error) {
	it.mu.Lock()
	if it.card.Loading {
		it.mu.Unlock()
		return nil, ErrInFlight
	}
	if it.card.Control != ControlBuy {
		control := it.card.Control
		it.mu.Unlock()
		return nil, errors.Wrapf(ErrUnexpectedControl, "buy with control %q", control)
	}
	prev := it.card.clone()
	it.card.Loading = true
	id, buyer := it.card.ID, it.card.Caller
	it.mu.Unlock()

	logger := xzap.WithContext(ctx).With(zap.String("item", id.Text()), zap.String("buyer", buyer.Text()))

	seller, err := it.market.GetOriginalOwner(ctx, id)
	if err != nil {
		it.rollback(prev)
		return nil, errors.Wrap(err, "failed on get seller")
	}
	price, err := it.market.GetNFTPrice(ctx, id)
	if err != nil {
		it.rollback(prev)
		return nil, errors.Wrap(err, "failed on get price")
	}
	balance, err := it.token.BalanceOf(ctx, buyer)
	if err != nil {
		it.rollback(prev)
		return nil, errors.Wrap(err, "failed on get balance")
	}
	if balance.LessThan(price) {
		it.rollback(prev)
		return nil, errors.Wrapf(ErrInsufficientFunds, "balance %s, price %s", balance, price)
	}
	if err := ctx.Err(); err != nil {
		it.rollback(prev)
		return nil, err
	}

	status, err := it.token.Transfer(ctx, seller, price)
	if err = checkStatus("transfer", status, err); err != nil {
		it.rollback(prev)
		logger.Warn("token transfer failed", zap.Error(err))
		return nil, err
	}

	status, err = it.market.CompletePurchase(ctx, id, seller, buyer)
	if err = checkStatus("completePurchase", status, err); err != nil {
		it.rollback(prev)
		// 代币已转给卖家, 但市场未完成过户
		logger.Error("tokens transferred but purchase not completed",
			zap.String("seller", seller.Text()), zap.String("price", price.String()), zap.Error(err))
		return nil, err
	}

	it.mu.Lock()
	it.card.Loading = false
	it.card.Visible = false
	it.mu.Unlock()

	return &Receipt{Item: id, Seller: seller, Buyer: buyer, Price: price}, nil
}

func (it *Item) rollback(prev Card) {
	it.mu.Lock()
	it.card = prev
	it.mu.Unlock()
}

// checkStatus 远程调用以 "Success" 文本表示成功
func checkStatus(op, status string, err error) error {
	if err != nil {
		return errors.Wrapf(err, "failed on %s", op)
	}
	if status != actor.StatusSuccess {
		return &StatusError{Op: op, Status: status}
	}
	return nil
}
