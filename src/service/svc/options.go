package svc

import (
	"gorm.io/gorm"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/common/stores/xkv"
	"github.com/PhilipDev237/opend/src/dao"
	"github.com/PhilipDev237/opend/src/service/session"
)

// CtxConfig 服务上下文配置构建器
// 用于使用 Option 模式构建 ServerCtx
type CtxConfig struct {
	db       *gorm.DB
	dao      *dao.Dao
	kvStore  *xkv.Store
	sessions *session.Store
	agent    *actor.Agent
	actors   Actors
}

type CtxOption func(conf *CtxConfig)

// NewServerCtx 创建新的服务上下文
func NewServerCtx(options ...CtxOption) *ServerCtx {
	c := &CtxConfig{}
	for _, opt := range options {
		opt(c)
	}
	return &ServerCtx{
		DB:       c.db,
		Dao:      c.dao,
		KvStore:  c.kvStore,
		Sessions: c.sessions,
		Agent:    c.agent,
		Actors:   c.actors,
	}
}

func WithKv(kv *xkv.Store) CtxOption {
	return func(conf *CtxConfig) {
		conf.kvStore = kv
	}
}

func WithDB(db *gorm.DB) CtxOption {
	return func(conf *CtxConfig) {
		conf.db = db
	}
}

func WithDao(dao *dao.Dao) CtxOption {
	return func(conf *CtxConfig) {
		conf.dao = dao
	}
}

func WithSessions(s *session.Store) CtxOption {
	return func(conf *CtxConfig) {
		conf.sessions = s
	}
}

func WithAgent(agent *actor.Agent) CtxOption {
	return func(conf *CtxConfig) {
		conf.agent = agent
	}
}

// WithActors 替换 canister actor 的创建方式
func WithActors(actors Actors) CtxOption {
	return func(conf *CtxConfig) {
		conf.actors = actors
	}
}
