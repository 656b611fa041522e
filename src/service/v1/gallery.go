package service

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/xzap"
	"github.com/PhilipDev237/opend/src/service/item"
	"github.com/PhilipDev237/opend/src/service/svc"
	"github.com/PhilipDev237/opend/src/types/v1"
)

// GetCollection 调用者持有的 NFT, 以 collection 模式加载
func GetCollection(ctx context.Context, svcCtx *svc.ServerCtx, caller principal.Principal) (*types.GalleryResp, error) {
	ids, err := svcCtx.Actors.Market(caller).GetOwnedNFTs(ctx, caller)
	if err != nil {
		return nil, errors.Wrap(err, "failed on get owned nfts")
	}
	return loadGallery(ctx, svcCtx, caller, ids, item.RoleCollection)
}

// GetDiscover 市场上所有挂单的 NFT, 以 discover 模式加载
func GetDiscover(ctx context.Context, svcCtx *svc.ServerCtx, caller principal.Principal) (*types.GalleryResp, error) {
	ids, err := svcCtx.Actors.Market(caller).GetListedNFTs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed on get listed nfts")
	}
	return loadGallery(ctx, svcCtx, caller, ids, item.RoleDiscover)
}

// loadGallery 并发加载卡片, 保持 ids 的顺序
// 单张卡片加载失败只记录日志并略过, 不影响其他卡片
func loadGallery(ctx context.Context, svcCtx *svc.ServerCtx, caller principal.Principal, ids []principal.Principal, role item.Role) (*types.GalleryResp, error) {
	cards := make([]*types.ItemCard, len(ids))
	var failed int32

	concurrency := 8
	if svcCtx.C != nil && svcCtx.C.Gallery.Concurrency > 0 {
		concurrency = svcCtx.C.Gallery.Concurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			it := newItem(svcCtx, caller, id, role)
			if err := it.Load(gctx); err != nil {
				atomic.AddInt32(&failed, 1)
				xzap.WithContext(ctx).Warn("failed on load gallery item",
					zap.String("item", id.Text()), zap.String("role", string(role)), zap.Error(err))
				return nil
			}

			card := it.Card()
			if err := svcCtx.Sessions.Save(card); err != nil {
				xzap.WithContext(ctx).Warn("failed on save card session", zap.String("item", id.Text()), zap.Error(err))
			}
			view := toItemCard(&card)
			cards[i] = &view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]types.ItemCard, 0, len(cards))
	for _, c := range cards {
		if c != nil {
			result = append(result, *c)
		}
	}
	return &types.GalleryResp{Result: result, Count: len(result), Failed: int(failed)}, nil
}
