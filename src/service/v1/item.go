package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/common/metrics"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/xzap"
	"github.com/PhilipDev237/opend/src/model"
	"github.com/PhilipDev237/opend/src/service/item"
	"github.com/PhilipDev237/opend/src/service/svc"
	"github.com/PhilipDev237/opend/src/types/v1"
)

const (
	actionLoad    = "load"
	actionSell    = "sell"
	actionConfirm = "confirm"
	actionBuy     = "buy"

	resultOK   = "ok"
	resultFail = "fail"
)

// newItem 以调用者身份创建卡片
func newItem(svcCtx *svc.ServerCtx, caller, id principal.Principal, role item.Role) *item.Item {
	return item.New(id, role, caller,
		svcCtx.Actors.NFT(caller, id),
		svcCtx.Actors.Market(caller),
		svcCtx.Actors.Token(caller))
}

// restoreItem 优先从会话恢复卡片, 没有会话时按 role 重新加载
// confirm / buy 需在持有 item 锁之后调用
func restoreItem(ctx context.Context, svcCtx *svc.ServerCtx, caller, id principal.Principal, role item.Role) (*item.Item, error) {
	card, err := svcCtx.Sessions.Load(caller, id)
	if err != nil {
		return nil, err
	}
	if card != nil && card.Loaded {
		// 会话中不保存图片, 恢复时重新读取
		nft := svcCtx.Actors.NFT(caller, id)
		if card.Image, err = nft.GetAsset(ctx); err != nil {
			return nil, errors.Wrap(err, "failed on get nft asset")
		}
		return item.Restore(*card, nft,
			svcCtx.Actors.Market(caller),
			svcCtx.Actors.Token(caller)), nil
	}

	it := newItem(svcCtx, caller, id, role)
	if err := it.Load(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

// GetItemCard 加载卡片并保存会话
// 1. 依次读取 NFT 名称, 所有者, 图片
// 2. 根据 role 读取挂单状态或原持有者与价格
// 3. 写入会话, 后续 sell / confirm / buy 基于该状态
func GetItemCard(ctx context.Context, svcCtx *svc.ServerCtx, caller, id principal.Principal, role item.Role) (*types.ItemCardResp, error) {
	it := newItem(svcCtx, caller, id, role)
	if err := it.Load(ctx); err != nil {
		metrics.RecordWorkflow(actionLoad, resultFail)
		return nil, errors.Wrap(err, "failed on load item")
	}
	metrics.RecordWorkflow(actionLoad, resultOK)

	card := it.Card()
	if err := svcCtx.Sessions.Save(card); err != nil {
		return nil, err
	}
	return &types.ItemCardResp{Result: toItemCard(&card)}, nil
}

// GetItemImage 直接返回 NFT 图片字节与 MIME 类型
func GetItemImage(ctx context.Context, svcCtx *svc.ServerCtx, caller, id principal.Principal) ([]byte, string, error) {
	asset, err := svcCtx.Actors.NFT(caller, id).GetAsset(ctx)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed on get nft asset")
	}
	card := item.Card{Image: asset}
	return asset, card.ImageContentType(), nil
}

// SellItem 显示价格输入框
func SellItem(ctx context.Context, svcCtx *svc.ServerCtx, caller, id principal.Principal) (*types.ItemCardResp, error) {
	it, err := restoreItem(ctx, svcCtx, caller, id, item.RoleCollection)
	if err != nil {
		return nil, err
	}
	if err := it.Sell(); err != nil {
		metrics.RecordWorkflow(actionSell, resultFail)
		return nil, err
	}
	metrics.RecordWorkflow(actionSell, resultOK)

	card := it.Card()
	if err := svcCtx.Sessions.Save(card); err != nil {
		return nil, err
	}
	return &types.ItemCardResp{Result: toItemCard(&card)}, nil
}

// ConfirmItem 以输入的价格挂单
// 1. 获取 item 锁, 同一 item 同时只允许一个 confirm / buy
// 2. 在锁内从会话恢复 Sell 之后的卡片并填入价格
// 3. listItem 与 transferOwnership 均成功后写入会话并记录挂单活动
// 失败时会话保持 Confirm 之前的状态
func ConfirmItem(ctx context.Context, svcCtx *svc.ServerCtx, caller, id principal.Principal, price string) (*types.ItemCardResp, error) {
	unlock, err := svcCtx.Sessions.Lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	it, err := restoreItem(ctx, svcCtx, caller, id, item.RoleCollection)
	if err != nil {
		return nil, err
	}
	if err := it.SetPriceInput(price); err != nil {
		return nil, err
	}

	receipt, err := it.Confirm(ctx)
	if err != nil {
		metrics.RecordWorkflow(actionConfirm, resultFail)
		return nil, err
	}
	metrics.RecordWorkflow(actionConfirm, resultOK)

	card := it.Card()
	if err := svcCtx.Sessions.Save(card); err != nil {
		xzap.WithContext(ctx).Error("failed on save card session", zap.Error(err))
	}
	recordActivity(ctx, svcCtx, model.ActivityList, receipt)
	return &types.ItemCardResp{Result: toItemCard(&card)}, nil
}

// BuyItem 购买 NFT
// 1. 获取 item 锁
// 2. 在锁内从会话恢复卡片, 没有会话时按 discover 模式加载
// 3. 转账并完成交易, 成功后卡片隐藏, 删除会话并记录成交活动
func BuyItem(ctx context.Context, svcCtx *svc.ServerCtx, caller, id principal.Principal) (*types.ItemCardResp, error) {
	unlock, err := svcCtx.Sessions.Lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	it, err := restoreItem(ctx, svcCtx, caller, id, item.RoleDiscover)
	if err != nil {
		return nil, err
	}

	receipt, err := it.Buy(ctx)
	if err != nil {
		metrics.RecordWorkflow(actionBuy, resultFail)
		return nil, err
	}
	metrics.RecordWorkflow(actionBuy, resultOK)

	card := it.Card()
	if err := svcCtx.Sessions.Delete(caller, id); err != nil {
		xzap.WithContext(ctx).Error("failed on delete card session", zap.Error(err))
	}
	recordActivity(ctx, svcCtx, model.ActivitySale, receipt)
	return &types.ItemCardResp{Result: toItemCard(&card)}, nil
}

// recordActivity 写入活动记录, 链上操作已完成, 写入失败只记录日志
func recordActivity(ctx context.Context, svcCtx *svc.ServerCtx, eventType int, receipt *item.Receipt) {
	if svcCtx.Dao == nil || receipt == nil {
		return
	}
	activity := &model.ItemActivity{
		ItemId:    receipt.Item.Text(),
		EventType: eventType,
		Maker:     receipt.Seller.Text(),
		Taker:     receipt.Buyer.Text(),
		Price:     receipt.Price,
	}
	if err := svcCtx.Dao.InsertActivity(ctx, activity); err != nil {
		xzap.WithContext(ctx).Error("failed on record item activity",
			zap.String("item", activity.ItemId), zap.String("event", model.EventTypeName(eventType)), zap.Error(err))
	}
}

func toItemCard(card *item.Card) types.ItemCard {
	return types.ItemCard{
		ID:              card.ID.Text(),
		Role:            string(card.Role),
		Name:            card.Name,
		Owner:           card.Owner,
		Image:           card.ImageDataURL(),
		Price:           card.Price,
		SellStatus:      card.SellStatus,
		Control:         string(card.Control),
		PriceInputShown: card.PriceInputShown,
		PriceInput:      card.PriceInput,
		Blurred:         card.Blurred,
		Loading:         card.Loading,
		Visible:         card.Visible,
	}
}
