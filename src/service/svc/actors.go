package svc

import (
	"context"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/service/item"
)

// Marketplace 市场 canister, 在卡片所需方法之外提供列表查询
type Marketplace interface {
	item.Marketplace
	GetOwnedNFTs(ctx context.Context, user principal.Principal) ([]principal.Principal, error)
	GetListedNFTs(ctx context.Context) ([]principal.Principal, error)
}

// Actors 以指定调用者身份创建 canister actor
type Actors interface {
	NFT(caller, id principal.Principal) item.NFTActor
	Market(caller principal.Principal) Marketplace
	Token(caller principal.Principal) item.TokenActor
}

// agentActors 基于网关 Agent 的实现
type agentActors struct {
	agent *actor.Agent
	opend principal.Principal
	token principal.Principal
}

// NewAgentActors 市场与代币 canister id 来自配置
func NewAgentActors(agent *actor.Agent, opend, token principal.Principal) Actors {
	return &agentActors{agent: agent, opend: opend, token: token}
}

func (a *agentActors) NFT(caller, id principal.Principal) item.NFTActor {
	return a.agent.As(caller).NFT(id)
}

func (a *agentActors) Market(caller principal.Principal) Marketplace {
	return a.agent.As(caller).OpenD(a.opend)
}

func (a *agentActors) Token(caller principal.Principal) item.TokenActor {
	return a.agent.As(caller).Token(a.token)
}
