package svc

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/common/stores/gdb"
	"github.com/PhilipDev237/opend/src/common/stores/xkv"
	"github.com/PhilipDev237/opend/src/common/xzap"
	"github.com/PhilipDev237/opend/src/config"
	"github.com/PhilipDev237/opend/src/dao"
	"github.com/PhilipDev237/opend/src/service/session"
)

type ServerCtx struct {
	C        *config.Config
	DB       *gorm.DB
	Dao      *dao.Dao // 未配置数据库时为 nil, 活动记录关闭
	KvStore  *xkv.Store
	Sessions *session.Store
	Agent    *actor.Agent
	Actors   Actors
}

// NewServiceContext 初始化服务上下文
// 该函数负责初始化后端服务所需的所有基础设施组件
func NewServiceContext(c *config.Config) (*ServerCtx, error) {
	// 1. 初始化日志系统 (Zap Logger)
	if _, err := xzap.SetUp(c.Log); err != nil {
		return nil, err
	}

	// 2. 初始化 Redis 客户端 (xkv Store), 卡片会话与 item 锁都保存在这里
	store := xkv.NewStore(c.Kv.Redis)
	sessions := session.New(store,
		time.Duration(c.Session.TTL)*time.Second,
		time.Duration(c.Session.LockTTL)*time.Second)

	// 3. 初始化 canister 网关 Agent, 不发起网络请求, 探测在启动时进行
	agent := actor.NewAgent(c.Agent)
	actors := NewAgentActors(agent, c.OpenDCanister(), c.TokenCanister())

	opts := []CtxOption{
		WithKv(store),
		WithSessions(sessions),
		WithAgent(agent),
		WithActors(actors),
	}

	// 4. 数据库可选, 配置后记录挂单与成交
	if c.DB.Enabled() {
		db, err := gdb.NewDB(&c.DB)
		if err != nil {
			return nil, err
		}
		d := dao.New(context.Background(), db)
		if err := d.AutoMigrate(context.Background()); err != nil {
			return nil, err
		}
		opts = append(opts, WithDB(db), WithDao(d))
	}

	// 5. 组装 ServerCtx 对象
	serverCtx := NewServerCtx(opts...)
	serverCtx.C = c
	return serverCtx, nil
}
