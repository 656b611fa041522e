package actor

import (
	"context"

	"github.com/PhilipDev237/opend/src/common/principal"
)

// NFT 单个 NFT canister 的 actor, 每个 item 一个 canister
type NFT struct {
	agent *Agent
	id    principal.Principal
}

// NFT 返回绑定到指定 canister 的 NFT actor
func (a *Agent) NFT(id principal.Principal) *NFT {
	return &NFT{agent: a, id: id}
}

func (n *NFT) GetName(ctx context.Context) (string, error) {
	var name string
	err := n.agent.call(ctx, n.id, &name, "getName")
	return name, err
}

func (n *NFT) GetOwner(ctx context.Context) (principal.Principal, error) {
	var owner principal.Principal
	err := n.agent.call(ctx, n.id, &owner, "getOwner")
	return owner, err
}

// GetAsset 返回图片原始字节 (网关以 base64 传输 blob)
func (n *NFT) GetAsset(ctx context.Context) ([]byte, error) {
	var asset []byte
	err := n.agent.call(ctx, n.id, &asset, "getAsset")
	return asset, err
}

// TransferOwnership 将所有权转移给 newOwner, 成功时返回 StatusSuccess
func (n *NFT) TransferOwnership(ctx context.Context, newOwner principal.Principal) (string, error) {
	var status string
	err := n.agent.call(ctx, n.id, &status, "transferOwnership", newOwner)
	return status, err
}
