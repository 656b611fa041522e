package item

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipDev237/opend/src/common/principal"
)

var (
	itemID  = principal.MustParse("ryjl3-tyaaa-aaaaa-aaaba-cai")
	opendID = principal.MustParse("r7inp-6aaaa-aaaaa-aaabq-cai")
	aliceID = principal.MustParse("rkp4c-7iaaa-aaaaa-aaaca-cai")
	bobID   = principal.MustParse("rno2w-sqaaa-aaaaa-aaacq-cai")

	pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
)

type fakeNFT struct {
	mu             sync.Mutex
	name           string
	owner          principal.Principal
	asset          []byte
	transferStatus string
	transferErr    error
	transferredTo  principal.Principal
	calls          []string
}

func (f *fakeNFT) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeNFT) GetName(ctx context.Context) (string, error) {
	f.record("getName")
	return f.name, nil
}

func (f *fakeNFT) GetOwner(ctx context.Context) (principal.Principal, error) {
	f.record("getOwner")
	return f.owner, nil
}

func (f *fakeNFT) GetAsset(ctx context.Context) ([]byte, error) {
	f.record("getAsset")
	return f.asset, nil
}

func (f *fakeNFT) TransferOwnership(ctx context.Context, newOwner principal.Principal) (string, error) {
	f.record("transferOwnership")
	f.transferredTo = newOwner
	return f.transferStatus, f.transferErr
}

type fakeMarket struct {
	mu             sync.Mutex
	listed         bool
	originalOwner  principal.Principal
	price          decimal.Decimal
	listStatus     string
	listErr        error
	purchaseStatus string
	listedPrice    decimal.Decimal
	purchase       []principal.Principal
	calls          []string
}

func (f *fakeMarket) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeMarket) IsListed(ctx context.Context, item principal.Principal) (bool, error) {
	f.record("isListed")
	return f.listed, nil
}

func (f *fakeMarket) GetOriginalOwner(ctx context.Context, item principal.Principal) (principal.Principal, error) {
	f.record("getOriginalOwner")
	return f.originalOwner, nil
}

func (f *fakeMarket) GetNFTPrice(ctx context.Context, item principal.Principal) (decimal.Decimal, error) {
	f.record("getNFTPrice")
	return f.price, nil
}

func (f *fakeMarket) ListItem(ctx context.Context, item principal.Principal, price decimal.Decimal) (string, error) {
	f.record("listItem")
	f.listedPrice = price
	return f.listStatus, f.listErr
}

func (f *fakeMarket) GetOpendCanisterID(ctx context.Context) (principal.Principal, error) {
	f.record("getOpendCanisterID")
	return opendID, nil
}

func (f *fakeMarket) CompletePurchase(ctx context.Context, item, seller, buyer principal.Principal) (string, error) {
	f.record("completePurchase")
	f.purchase = []principal.Principal{item, seller, buyer}
	return f.purchaseStatus, nil
}

type fakeToken struct {
	status  string
	balance decimal.Decimal
	to      principal.Principal
	amount  decimal.Decimal
	called  bool
}

func (f *fakeToken) BalanceOf(ctx context.Context, who principal.Principal) (decimal.Decimal, error) {
	return f.balance, nil
}

func (f *fakeToken) Transfer(ctx context.Context, to principal.Principal, amount decimal.Decimal) (string, error) {
	f.called = true
	f.to = to
	f.amount = amount
	return f.status, nil
}

func newFakes() (*fakeNFT, *fakeMarket, *fakeToken) {
	nft := &fakeNFT{name: "CryptoDunks #123", owner: aliceID, asset: pngHeader, transferStatus: "Success"}
	market := &fakeMarket{
		originalOwner:  aliceID,
		price:          decimal.NewFromInt(25),
		listStatus:     "Success",
		purchaseStatus: "Success",
	}
	return nft, market, &fakeToken{status: "Success", balance: decimal.NewFromInt(1000)}
}

func loaded(t *testing.T, role Role, caller principal.Principal, nft *fakeNFT, market *fakeMarket, token *fakeToken) *Item {
	it := New(itemID, role, caller, nft, market, token)
	require.NoError(t, it.Load(context.Background()))
	return it
}

func TestLoadCollectionListed(t *testing.T) {
	nft, market, token := newFakes()
	market.listed = true

	card := loaded(t, RoleCollection, aliceID, nft, market, token).Card()
	assert.Equal(t, "CryptoDunks #123", card.Name)
	assert.Equal(t, OwnerMarketplace, card.Owner)
	assert.Equal(t, StatusListed, card.SellStatus)
	assert.True(t, card.Blurred)
	assert.Equal(t, ControlNone, card.Control)
	assert.True(t, card.Loaded)
	assert.True(t, card.Visible)
	assert.Nil(t, card.Price)
}

func TestLoadCollectionUnlisted(t *testing.T) {
	nft, market, token := newFakes()

	card := loaded(t, RoleCollection, aliceID, nft, market, token).Card()
	assert.Equal(t, ControlSell, card.Control)
	assert.Equal(t, aliceID.Text(), card.Owner)
	assert.Equal(t, "", card.SellStatus)
	assert.False(t, card.Blurred)
	assert.Equal(t, []string{"isListed"}, market.calls)
}

func TestLoadDiscover(t *testing.T) {
	nft, market, token := newFakes()
	nft.owner = opendID

	card := loaded(t, RoleDiscover, bobID, nft, market, token).Card()
	assert.Equal(t, ControlBuy, card.Control)
	require.NotNil(t, card.Price)
	assert.True(t, card.Price.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, opendID.Text(), card.Owner)
}

func TestLoadDiscoverOwnItem(t *testing.T) {
	nft, market, token := newFakes()

	card := loaded(t, RoleDiscover, aliceID, nft, market, token).Card()
	assert.Equal(t, ControlNone, card.Control)
	require.NotNil(t, card.Price)
}

func TestLoadUnknownRole(t *testing.T) {
	nft, market, token := newFakes()

	card := loaded(t, Role("gallery"), aliceID, nft, market, token).Card()
	assert.Equal(t, ControlNone, card.Control)
	assert.Empty(t, market.calls)
}

type failingNFT struct{ fakeNFT }

func (f *failingNFT) GetAsset(ctx context.Context) ([]byte, error) {
	return nil, errors.New("gateway timeout")
}

func TestLoadFailureKeepsCard(t *testing.T) {
	_, market, token := newFakes()
	nft := &failingNFT{fakeNFT{name: "x", owner: aliceID}}

	it := New(itemID, RoleCollection, aliceID, nft, market, token)
	err := it.Load(context.Background())
	require.Error(t, err)

	card := it.Card()
	assert.False(t, card.Loaded)
	assert.Equal(t, "", card.Name)
	assert.True(t, card.Visible)
}

func TestSellThenConfirm(t *testing.T) {
	nft, market, token := newFakes()
	it := loaded(t, RoleCollection, aliceID, nft, market, token)

	require.NoError(t, it.Sell())
	card := it.Card()
	assert.True(t, card.PriceInputShown)
	assert.Equal(t, ControlConfirm, card.Control)

	require.NoError(t, it.SetPriceInput("40"))
	receipt, err := it.Confirm(context.Background())
	require.NoError(t, err)

	card = it.Card()
	assert.Equal(t, StatusListed, card.SellStatus)
	assert.Equal(t, OwnerMarketplace, card.Owner)
	assert.Equal(t, ControlNone, card.Control)
	assert.False(t, card.PriceInputShown)
	assert.False(t, card.Loading)
	assert.True(t, card.Blurred)

	assert.True(t, market.listedPrice.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, opendID, nft.transferredTo)
	assert.Equal(t, aliceID, receipt.Seller)
	assert.True(t, receipt.Price.Equal(decimal.NewFromInt(40)))
}

func TestConfirmInvalidPrice(t *testing.T) {
	nft, market, token := newFakes()
	it := loaded(t, RoleCollection, aliceID, nft, market, token)
	require.NoError(t, it.Sell())

	for _, input := range []string{"", "abc", "-1", "0", "2.5"} {
		require.NoError(t, it.SetPriceInput(input))
		_, err := it.Confirm(context.Background())
		assert.True(t, errors.Is(err, ErrInvalidPrice), input)
	}
	assert.NotContains(t, market.calls, "listItem")
	assert.Equal(t, ControlConfirm, it.Card().Control)
}

func TestConfirmListRejected(t *testing.T) {
	nft, market, token := newFakes()
	market.listStatus = "You don't own the NFT."
	it := loaded(t, RoleCollection, aliceID, nft, market, token)
	require.NoError(t, it.Sell())
	require.NoError(t, it.SetPriceInput("10"))
	before := it.Card()

	_, err := it.Confirm(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotSuccess))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "listItem", statusErr.Op)

	assert.Equal(t, before, it.Card())
	assert.NotContains(t, nft.calls, "transferOwnership")
}

func TestConfirmTransferRejected(t *testing.T) {
	nft, market, token := newFakes()
	nft.transferStatus = "Error: Not initiated by NFT Owner."
	it := loaded(t, RoleCollection, aliceID, nft, market, token)
	require.NoError(t, it.Sell())
	require.NoError(t, it.SetPriceInput("10"))
	before := it.Card()

	_, err := it.Confirm(context.Background())
	assert.True(t, errors.Is(err, ErrNotSuccess))
	assert.Equal(t, before, it.Card())
	assert.Equal(t, "", it.Card().SellStatus)
}

func TestConfirmTransportError(t *testing.T) {
	nft, market, token := newFakes()
	market.listErr = errors.New("connection reset")
	it := loaded(t, RoleCollection, aliceID, nft, market, token)
	require.NoError(t, it.Sell())
	require.NoError(t, it.SetPriceInput("10"))
	before := it.Card()

	_, err := it.Confirm(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotSuccess))
	assert.Equal(t, before, it.Card())
}

func TestConfirmCanceledAfterListing(t *testing.T) {
	nft, market, token := newFakes()
	it := loaded(t, RoleCollection, aliceID, nft, market, token)
	require.NoError(t, it.Sell())
	require.NoError(t, it.SetPriceInput("10"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := it.Confirm(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotContains(t, nft.calls, "transferOwnership")
	assert.Equal(t, ControlConfirm, it.Card().Control)
}

func TestActionsRequireControl(t *testing.T) {
	nft, market, token := newFakes()
	market.listed = true
	it := loaded(t, RoleCollection, aliceID, nft, market, token)

	assert.True(t, errors.Is(it.Sell(), ErrUnexpectedControl))
	assert.True(t, errors.Is(it.SetPriceInput("1"), ErrUnexpectedControl))
	_, err := it.Confirm(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedControl))
	_, err = it.Buy(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedControl))
}

func TestBuy(t *testing.T) {
	nft, market, token := newFakes()
	it := loaded(t, RoleDiscover, bobID, nft, market, token)

	receipt, err := it.Buy(context.Background())
	require.NoError(t, err)

	card := it.Card()
	assert.False(t, card.Visible)
	assert.False(t, card.Loading)

	assert.Equal(t, aliceID, token.to)
	assert.True(t, token.amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, []principal.Principal{itemID, aliceID, bobID}, market.purchase)
	assert.Equal(t, bobID, receipt.Buyer)
	assert.Equal(t, aliceID, receipt.Seller)
}

func TestBuyTransferRejected(t *testing.T) {
	nft, market, token := newFakes()
	token.status = "Insufficient Funds"
	it := loaded(t, RoleDiscover, bobID, nft, market, token)
	before := it.Card()

	_, err := it.Buy(context.Background())
	assert.True(t, errors.Is(err, ErrNotSuccess))
	assert.Equal(t, before, it.Card())
	assert.True(t, it.Card().Visible)
	assert.NotContains(t, market.calls, "completePurchase")
}

func TestBuyInsufficientBalance(t *testing.T) {
	nft, market, token := newFakes()
	token.balance = decimal.NewFromInt(24)
	it := loaded(t, RoleDiscover, bobID, nft, market, token)
	before := it.Card()

	_, err := it.Buy(context.Background())
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, token.called)
	assert.Equal(t, before, it.Card())
	assert.NotContains(t, market.calls, "completePurchase")
}

func TestBuyCompletionRejected(t *testing.T) {
	nft, market, token := newFakes()
	market.purchaseStatus = "Error"
	it := loaded(t, RoleDiscover, bobID, nft, market, token)
	before := it.Card()

	_, err := it.Buy(context.Background())
	assert.True(t, errors.Is(err, ErrNotSuccess))
	assert.True(t, token.called)
	assert.Equal(t, before, it.Card())
}

func TestRestore(t *testing.T) {
	nft, market, token := newFakes()
	price := decimal.NewFromInt(9)
	saved := Card{ID: itemID, Role: RoleDiscover, Caller: bobID, Control: ControlBuy, Price: &price, Visible: true, Loaded: true}

	it := Restore(saved, nft, market, token)
	price = decimal.NewFromInt(1)
	assert.True(t, it.Card().Price.Equal(decimal.NewFromInt(9)))

	_, err := it.Buy(context.Background())
	require.NoError(t, err)
	assert.False(t, it.Card().Visible)
}

func TestImage(t *testing.T) {
	card := Card{Image: pngHeader}
	assert.Equal(t, "image/png", card.ImageContentType())
	assert.Contains(t, card.ImageDataURL(), "data:image/png;base64,")

	empty := Card{}
	assert.Equal(t, "", empty.ImageDataURL())
	assert.Equal(t, "image/png", empty.ImageContentType())
}
