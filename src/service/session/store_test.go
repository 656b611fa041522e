package session

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/service/item"
)

var (
	itemID  = principal.MustParse("ryjl3-tyaaa-aaaaa-aaaba-cai")
	aliceID = principal.MustParse("rkp4c-7iaaa-aaaaa-aaaca-cai")
	bobID   = principal.MustParse("rno2w-sqaaa-aaaaa-aaacq-cai")
)

type memKV struct {
	mu    sync.Mutex
	data  map[string]string
	ttl   map[string]int
	evals []string
	err   error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttl: map[string]int{}}
}

func (m *memKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], m.err
}

func (m *memKV) Setex(key, value string, seconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttl[key] = seconds
	return nil
}

func (m *memKV) SetnxEx(key, value string, seconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	m.ttl[key] = seconds
	return true, nil
}

func (m *memKV) Del(keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return n, m.err
}

// Eval 按释放锁脚本的语义执行: value 等于 args[0] 时删除 key
func (m *memKV) Eval(script, key string, args ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.evals = append(m.evals, script)
	if len(args) == 1 && m.data[key] == args[0] {
		delete(m.data, key)
		return int64(1), nil
	}
	return int64(0), nil
}

func TestSaveLoad(t *testing.T) {
	kv := newMemKV()
	s := New(kv, 10*time.Minute, 0)

	card, err := s.Load(aliceID, itemID)
	require.NoError(t, err)
	assert.Nil(t, card)

	price := decimal.NewFromInt(12)
	saved := item.Card{
		ID: itemID, Role: item.RoleCollection, Caller: aliceID,
		Name: "Dunk", Owner: aliceID.Text(), Image: []byte{1, 2, 3},
		Price: &price, Control: item.ControlConfirm, PriceInputShown: true, PriceInput: "12",
		Visible: true, Loaded: true,
	}
	require.NoError(t, s.Save(saved))
	assert.Equal(t, 600, kv.ttl[cardKey(aliceID, itemID)])

	card, err = s.Load(aliceID, itemID)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, item.ControlConfirm, card.Control)
	assert.Equal(t, "12", card.PriceInput)
	assert.True(t, card.Price.Equal(price))
	assert.Nil(t, card.Image)

	// 不同调用者的会话互不影响
	other, err := s.Load(bobID, itemID)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, s.Delete(aliceID, itemID))
	card, err = s.Load(aliceID, itemID)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestLoadCorrupt(t *testing.T) {
	kv := newMemKV()
	kv.data[cardKey(aliceID, itemID)] = "{not json"
	_, err := New(kv, 0, 0).Load(aliceID, itemID)
	assert.Error(t, err)
}

func TestKVError(t *testing.T) {
	kv := newMemKV()
	kv.err = errors.New("redis down")
	s := New(kv, 0, 0)

	_, err := s.Load(aliceID, itemID)
	assert.Error(t, err)
	assert.Error(t, s.Save(item.Card{ID: itemID, Caller: aliceID}))
	_, err = s.Lock(itemID)
	assert.Error(t, err)
}

func TestLock(t *testing.T) {
	kv := newMemKV()
	s := New(kv, 0, 5*time.Second)

	release, err := s.Lock(itemID)
	require.NoError(t, err)
	assert.Equal(t, 5, kv.ttl[lockKey(itemID)])

	_, err = s.Lock(itemID)
	assert.True(t, errors.Is(err, ErrLocked))

	release()
	release2, err := s.Lock(itemID)
	require.NoError(t, err)

	// 旧的释放函数不能释放别人持有的锁
	release()
	_, err = s.Lock(itemID)
	assert.True(t, errors.Is(err, ErrLocked))
	release2()
}

func TestUnlockKeepsLockTakenAfterExpiry(t *testing.T) {
	kv := newMemKV()
	s := New(kv, 0, 0)

	release, err := s.Lock(itemID)
	require.NoError(t, err)

	// 锁过期后被另一个请求获取
	kv.mu.Lock()
	kv.data[lockKey(itemID)] = "other-token"
	kv.mu.Unlock()

	release()
	assert.Equal(t, "other-token", kv.data[lockKey(itemID)])
	require.Len(t, kv.evals, 1)
	assert.Equal(t, releaseLockScript, kv.evals[0])
	assert.Contains(t, kv.evals[0], `redis.call("DEL", KEYS[1])`)
}
