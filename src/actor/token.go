package actor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/PhilipDev237/opend/src/common/principal"
)

// Token 代币 canister 的 actor, 调用者即转出方
type Token struct {
	agent *Agent
	id    principal.Principal
}

func (a *Agent) Token(id principal.Principal) *Token {
	return &Token{agent: a, id: id}
}

func (t *Token) Transfer(ctx context.Context, to principal.Principal, amount decimal.Decimal) (string, error) {
	var status string
	err := t.agent.call(ctx, t.id, &status, "transfer", to, amount)
	return status, err
}

// BalanceOf 查询 who 的代币余额
func (t *Token) BalanceOf(ctx context.Context, who principal.Principal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := t.agent.call(ctx, t.id, &balance, "balanceOf", who)
	return balance, err
}
