package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/model"
	"github.com/PhilipDev237/opend/src/service/svc"
	"github.com/PhilipDev237/opend/src/types/v1"
)

// ErrActivityDisabled 未配置数据库
var ErrActivityDisabled = errors.New("item activity is disabled")

// GetItemActivities 分页查询 item 的挂单与成交记录
func GetItemActivities(ctx context.Context, svcCtx *svc.ServerCtx, id principal.Principal, page, pageSize int) (*types.ActivityResp, error) {
	if svcCtx.Dao == nil {
		return nil, ErrActivityDisabled
	}

	activities, total, err := svcCtx.Dao.QueryItemActivities(ctx, id.Text(), page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed on query item activity")
	}
	if total == 0 || len(activities) == 0 {
		return &types.ActivityResp{Result: nil, Count: total}, nil
	}

	results := make([]types.ActivityInfo, 0, len(activities))
	for _, a := range activities {
		results = append(results, types.ActivityInfo{
			ItemID:    a.ItemId,
			EventType: model.EventTypeName(a.EventType),
			EventTime: a.EventTime,
			Maker:     a.Maker,
			Taker:     a.Taker,
			Price:     a.Price,
		})
	}
	return &types.ActivityResp{Result: results, Count: total}, nil
}
