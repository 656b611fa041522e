package dao

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PhilipDev237/opend/src/model"
)

// InsertActivity 写入一条挂单 / 成交记录
func (d *Dao) InsertActivity(ctx context.Context, activity *model.ItemActivity) error {
	now := time.Now().UnixMilli()
	if activity.EventTime == 0 {
		activity.EventTime = now
	}
	activity.CreateTime = now
	activity.UpdateTime = now

	if err := d.DB.WithContext(ctx).Table(model.ItemActivityTableName()).
		Create(activity).Error; err != nil {
		return errors.Wrap(err, "failed on insert item activity")
	}
	return nil
}

// QueryItemActivities 分页查询 item 的活动记录, 按时间倒序
func (d *Dao) QueryItemActivities(ctx context.Context, itemID string, page, pageSize int) ([]model.ItemActivity, int64, error) {
	var count int64
	// SQL 逻辑:
	// SELECT count(*) FROM opend_item_activity WHERE item_id = ?
	if err := d.DB.WithContext(ctx).Table(model.ItemActivityTableName()).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on count item activities")
	}
	if count == 0 {
		return nil, 0, nil
	}

	var activities []model.ItemActivity
	if err := d.DB.WithContext(ctx).Table(model.ItemActivityTableName()).
		Where("item_id = ?", itemID).
		Order("event_time desc, id desc").
		Limit(pageSize).
		Offset(pageSize * (page - 1)).
		Find(&activities).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on query item activities")
	}

	return activities, count, nil
}

// AutoMigrate 创建活动表
func (d *Dao) AutoMigrate(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).Table(model.ItemActivityTableName()).
		AutoMigrate(&model.ItemActivity{}); err != nil {
		return errors.Wrap(err, "failed on migrate item activity table")
	}
	return nil
}
