package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/service/item"
)

const (
	cacheCardKey     = "cache:opend:card:%s:%s"
	cacheCardLockKey = "cache:opend:card:lock:%s"

	DefaultTTL     = 30 * time.Minute
	DefaultLockTTL = 30 * time.Second

	// 仅当 value 仍为本次持有的 token 时删除
	releaseLockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`
)

// ErrLocked 同一 item 已有 confirm / buy 在执行
var ErrLocked = errors.New("item is locked by another action")

// KV 会话依赖的 KV 操作, go-zero kv.Store 满足该接口
type KV interface {
	Get(key string) (string, error)
	Setex(key, value string, seconds int) error
	SetnxEx(key, value string, seconds int) (bool, error)
	Del(keys ...string) (int, error)
	Eval(script, key string, args ...any) (any, error)
}

// Store 按 (调用者, item) 保存卡片状态, 使 Sell 与 Confirm 两次请求共享同一张卡片
// 图片不写入 KV
type Store struct {
	kv      KV
	ttl     time.Duration
	lockTTL time.Duration
}

func New(kv KV, ttl, lockTTL time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Store{kv: kv, ttl: ttl, lockTTL: lockTTL}
}

func cardKey(caller, id principal.Principal) string {
	return fmt.Sprintf(cacheCardKey, strings.ToLower(caller.Text()), strings.ToLower(id.Text()))
}

func lockKey(id principal.Principal) string {
	return fmt.Sprintf(cacheCardLockKey, strings.ToLower(id.Text()))
}

// Load 读取卡片, 不存在时返回 nil
func (s *Store) Load(caller, id principal.Principal) (*item.Card, error) {
	raw, err := s.kv.Get(cardKey(caller, id))
	if err != nil {
		return nil, errors.Wrap(err, "failed on get card session")
	}
	if raw == "" {
		return nil, nil
	}

	var card item.Card
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return nil, errors.Wrap(err, "failed on unmarshal card session")
	}
	return &card, nil
}

// Save 写入卡片并刷新过期时间
func (s *Store) Save(card item.Card) error {
	raw, err := json.Marshal(&card)
	if err != nil {
		return errors.Wrap(err, "failed on marshal card session")
	}
	if err := s.kv.Setex(cardKey(card.Caller, card.ID), string(raw), seconds(s.ttl)); err != nil {
		return errors.Wrap(err, "failed on save card session")
	}
	return nil
}

func (s *Store) Delete(caller, id principal.Principal) error {
	if _, err := s.kv.Del(cardKey(caller, id)); err != nil {
		return errors.Wrap(err, "failed on delete card session")
	}
	return nil
}

// Lock 获取 item 级别的防重入锁, 返回释放函数
// 锁带过期时间, 进程异常退出时也会自动释放
func (s *Store) Lock(id principal.Principal) (func(), error) {
	key := lockKey(id)
	token := uuid.NewString()

	ok, err := s.kv.SetnxEx(key, token, seconds(s.lockTTL))
	if err != nil {
		return nil, errors.Wrap(err, "failed on acquire item lock")
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// 比较与删除在同一个脚本中完成, 过期后被他人获取的锁保持不变
		_, _ = s.kv.Eval(releaseLockScript, key, token)
	}, nil
}

func seconds(d time.Duration) int {
	if s := int(d / time.Second); s > 0 {
		return s
	}
	return 1
}
