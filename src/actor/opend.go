package actor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/PhilipDev237/opend/src/common/principal"
)

// OpenD 市场 canister 的 actor
type OpenD struct {
	agent *Agent
	id    principal.Principal
}

func (a *Agent) OpenD(id principal.Principal) *OpenD {
	return &OpenD{agent: a, id: id}
}

func (o *OpenD) IsListed(ctx context.Context, item principal.Principal) (bool, error) {
	var listed bool
	err := o.agent.call(ctx, o.id, &listed, "isListed", item)
	return listed, err
}

func (o *OpenD) GetOriginalOwner(ctx context.Context, item principal.Principal) (principal.Principal, error) {
	var owner principal.Principal
	err := o.agent.call(ctx, o.id, &owner, "getOriginalOwner", item)
	return owner, err
}

func (o *OpenD) GetNFTPrice(ctx context.Context, item principal.Principal) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := o.agent.call(ctx, o.id, &price, "getNFTPrice", item)
	return price, err
}

func (o *OpenD) ListItem(ctx context.Context, item principal.Principal, price decimal.Decimal) (string, error) {
	var status string
	err := o.agent.call(ctx, o.id, &status, "listItem", item, price)
	return status, err
}

// GetOpendCanisterID 市场 canister 自身的 id, 挂单后 NFT 所有权转移给它
func (o *OpenD) GetOpendCanisterID(ctx context.Context) (principal.Principal, error) {
	var id principal.Principal
	err := o.agent.call(ctx, o.id, &id, "getOpendCanisterID")
	return id, err
}

func (o *OpenD) CompletePurchase(ctx context.Context, item, seller, buyer principal.Principal) (string, error) {
	var status string
	err := o.agent.call(ctx, o.id, &status, "completePurchase", item, seller, buyer)
	return status, err
}

// GetOwnedNFTs 用户持有的 NFT canister 列表
func (o *OpenD) GetOwnedNFTs(ctx context.Context, user principal.Principal) ([]principal.Principal, error) {
	var ids []principal.Principal
	err := o.agent.call(ctx, o.id, &ids, "getOwnedNFTs", user)
	return ids, err
}

// GetListedNFTs 市场上正在挂单的 NFT canister 列表
func (o *OpenD) GetListedNFTs(ctx context.Context) ([]principal.Principal, error) {
	var ids []principal.Principal
	err := o.agent.call(ctx, o.id, &ids, "getListedNFTs")
	return ids, err
}
