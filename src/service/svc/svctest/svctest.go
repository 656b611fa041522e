// Package svctest 提供内存版的 canister 与 KV, 用于 service 与 api 层测试
package svctest

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/service/item"
	"github.com/PhilipDev237/opend/src/service/session"
	"github.com/PhilipDev237/opend/src/service/svc"
)

var (
	OpenD = principal.MustParse("r7inp-6aaaa-aaaaa-aaabq-cai")
	Alice = principal.MustParse("rkp4c-7iaaa-aaaaa-aaaca-cai")
	Bob   = principal.MustParse("rno2w-sqaaa-aaaaa-aaacq-cai")
	Item1 = principal.MustParse("ryjl3-tyaaa-aaaaa-aaaba-cai")
	Item2 = principal.MustParse("renrk-eyaaa-aaaaa-aaada-cai")

	PNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
)

type listing struct {
	owner principal.Principal
	price decimal.Decimal
}

// Chain 内存中的 NFT, 市场与代币状态
// Status 中的方法返回指定的状态文本, Errs 中的方法返回指定错误
type Chain struct {
	mu       sync.Mutex
	names    map[principal.Principal]string
	owners   map[principal.Principal]principal.Principal
	listings map[principal.Principal]listing
	balances map[principal.Principal]decimal.Decimal
	order    []principal.Principal

	Status map[string]string
	Errs   map[string]error
	calls  map[string]int
}

func NewChain() *Chain {
	return &Chain{
		names:    map[principal.Principal]string{},
		owners:   map[principal.Principal]principal.Principal{},
		listings: map[principal.Principal]listing{},
		balances: map[principal.Principal]decimal.Decimal{},
		Status:   map[string]string{},
		Errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

// Mint 创建一个 NFT
func (c *Chain) Mint(id principal.Principal, name string, owner principal.Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[id] = name
	c.owners[id] = owner
	c.order = append(c.order, id)
}

// List 直接登记挂单并把所有权交给市场
func (c *Chain) List(id principal.Principal, price int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings[id] = listing{owner: c.owners[id], price: decimal.NewFromInt(price)}
	c.owners[id] = OpenD
}

func (c *Chain) Fund(who principal.Principal, amount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[who] = decimal.NewFromInt(amount)
}

func (c *Chain) Owner(id principal.Principal) principal.Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owners[id]
}

func (c *Chain) Listed(id principal.Principal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.listings[id]
	return ok
}

func (c *Chain) Balance(who principal.Principal) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[who]
}

// Calls 返回 method 被调用的次数
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// inject 记录调用并返回注入的错误或状态, 调用方需持有锁
func (c *Chain) inject(method string) (status string, injected bool, err error) {
	c.calls[method]++
	if err, ok := c.Errs[method]; ok {
		return "", true, err
	}
	if status, ok := c.Status[method]; ok {
		return status, true, nil
	}
	return "", false, nil
}

// Actors 实现 svc.Actors
func (c *Chain) Actors() svc.Actors {
	return &actors{chain: c}
}

type actors struct {
	chain *Chain
}

func (a *actors) NFT(caller, id principal.Principal) item.NFTActor {
	return &nft{chain: a.chain, caller: caller, id: id}
}

func (a *actors) Market(caller principal.Principal) svc.Marketplace {
	return &market{chain: a.chain, caller: caller}
}

func (a *actors) Token(caller principal.Principal) item.TokenActor {
	return &token{chain: a.chain, caller: caller}
}

type nft struct {
	chain  *Chain
	caller principal.Principal
	id     principal.Principal
}

func (n *nft) GetName(ctx context.Context) (string, error) {
	n.chain.mu.Lock()
	defer n.chain.mu.Unlock()
	if _, ok, err := n.chain.inject("getName"); ok && err != nil {
		return "", err
	}
	return n.chain.names[n.id], nil
}

func (n *nft) GetOwner(ctx context.Context) (principal.Principal, error) {
	n.chain.mu.Lock()
	defer n.chain.mu.Unlock()
	return n.chain.owners[n.id], nil
}

func (n *nft) GetAsset(ctx context.Context) ([]byte, error) {
	return PNG, nil
}

func (n *nft) TransferOwnership(ctx context.Context, newOwner principal.Principal) (string, error) {
	n.chain.mu.Lock()
	defer n.chain.mu.Unlock()
	if status, ok, err := n.chain.inject("transferOwnership"); ok {
		return status, err
	}
	if n.chain.owners[n.id] != n.caller {
		return "Error: Not initated by NFT Owner.", nil
	}
	n.chain.owners[n.id] = newOwner
	return actor.StatusSuccess, nil
}

type market struct {
	chain  *Chain
	caller principal.Principal
}

func (m *market) IsListed(ctx context.Context, id principal.Principal) (bool, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	_, ok := m.chain.listings[id]
	return ok, nil
}

func (m *market) GetOriginalOwner(ctx context.Context, id principal.Principal) (principal.Principal, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	if l, ok := m.chain.listings[id]; ok {
		return l.owner, nil
	}
	return principal.Management, nil
}

func (m *market) GetNFTPrice(ctx context.Context, id principal.Principal) (decimal.Decimal, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	return m.chain.listings[id].price, nil
}

func (m *market) ListItem(ctx context.Context, id principal.Principal, price decimal.Decimal) (string, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	if status, ok, err := m.chain.inject("listItem"); ok {
		return status, err
	}
	if m.chain.owners[id] != m.caller {
		return "You don't own the NFT.", nil
	}
	m.chain.listings[id] = listing{owner: m.caller, price: price}
	return actor.StatusSuccess, nil
}

func (m *market) GetOpendCanisterID(ctx context.Context) (principal.Principal, error) {
	return OpenD, nil
}

func (m *market) CompletePurchase(ctx context.Context, id, seller, buyer principal.Principal) (string, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	if status, ok, err := m.chain.inject("completePurchase"); ok {
		return status, err
	}
	if m.chain.owners[id] != OpenD {
		return "Error: Not initated by NFT Owner.", nil
	}
	m.chain.owners[id] = buyer
	delete(m.chain.listings, id)
	return actor.StatusSuccess, nil
}

// GetOwnedNFTs 挂单中的 NFT 仍算作卖家持有
func (m *market) GetOwnedNFTs(ctx context.Context, user principal.Principal) ([]principal.Principal, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	var ids []principal.Principal
	for _, id := range m.chain.order {
		if m.chain.owners[id] == user || m.chain.listings[id].owner == user {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *market) GetListedNFTs(ctx context.Context) ([]principal.Principal, error) {
	m.chain.mu.Lock()
	defer m.chain.mu.Unlock()
	if _, ok, err := m.chain.inject("getListedNFTs"); ok && err != nil {
		return nil, err
	}
	var ids []principal.Principal
	for _, id := range m.chain.order {
		if _, ok := m.chain.listings[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type token struct {
	chain  *Chain
	caller principal.Principal
}

func (t *token) BalanceOf(ctx context.Context, who principal.Principal) (decimal.Decimal, error) {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	return t.chain.balances[who], nil
}

func (t *token) Transfer(ctx context.Context, to principal.Principal, amount decimal.Decimal) (string, error) {
	t.chain.mu.Lock()
	defer t.chain.mu.Unlock()
	if status, ok, err := t.chain.inject("transfer"); ok {
		return status, err
	}
	if t.chain.balances[t.caller].LessThan(amount) {
		return "Insufficient Funds", nil
	}
	t.chain.balances[t.caller] = t.chain.balances[t.caller].Sub(amount)
	t.chain.balances[to] = t.chain.balances[to].Add(amount)
	return actor.StatusSuccess, nil
}

// KV 内存版 session.KV, 忽略过期时间
// BeforeLock 在下一次 SetnxEx 之前执行一次
type KV struct {
	mu   sync.Mutex
	data map[string]string

	BeforeLock func()
}

func NewKV() *KV {
	return &KV{data: map[string]string{}}
}

func (k *KV) Get(key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.data[key], nil
}

func (k *KV) Setex(key, value string, seconds int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = value
	return nil
}

func (k *KV) SetnxEx(key, value string, seconds int) (bool, error) {
	k.mu.Lock()
	hook := k.BeforeLock
	k.BeforeLock = nil
	k.mu.Unlock()
	if hook != nil {
		hook()
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.data[key]; ok {
		return false, nil
	}
	k.data[key] = value
	return true, nil
}

func (k *KV) Del(keys ...string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, key := range keys {
		if _, ok := k.data[key]; ok {
			delete(k.data, key)
			n++
		}
	}
	return n, nil
}

// Eval 只支持释放锁脚本: value 等于 args[0] 时删除 key
func (k *KV) Eval(script, key string, args ...any) (any, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(args) == 1 && k.data[key] == args[0] {
		delete(k.data, key)
		return int64(1), nil
	}
	return int64(0), nil
}

// Keys 按字典序返回当前所有 key
func (k *KV) Keys() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys := make([]string, 0, len(k.data))
	for key := range k.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NewServerCtx 以内存 canister 与 KV 组装 ServerCtx
func NewServerCtx(chain *Chain, kv *KV, opts ...svc.CtxOption) *svc.ServerCtx {
	opts = append([]svc.CtxOption{
		svc.WithActors(chain.Actors()),
		svc.WithSessions(session.New(kv, 0, 0)),
	}, opts...)
	return svc.NewServerCtx(opts...)
}
