package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/INFURA/go-ethlibs/jsonrpc"
	"github.com/INFURA/go-ethlibs/node"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/common/metrics"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/utils"
	"github.com/PhilipDev237/opend/src/common/xzap"
)

// StatusSuccess canister 更新调用成功时返回的文本
const StatusSuccess = "Success"

const (
	defaultHost        = "http://localhost:8080"
	defaultCallTimeout = 30 * time.Second

	statusAttempts = 5
	statusInterval = 2 * time.Second
)

var (
	ErrGatewayUnavailable = errors.New("canister gateway unavailable")
	ErrCallRejected       = errors.New("canister call rejected")
)

// Config canister gateway 配置
type Config struct {
	Host         string `toml:"host" mapstructure:"host" json:"host"`
	FetchRootKey bool   `toml:"fetch_root_key" mapstructure:"fetch_root_key" json:"fetch_root_key"` // 仅本地 replica 使用
	CallTimeout  int    `toml:"call_timeout" mapstructure:"call_timeout" json:"call_timeout"`       // 秒
}

// Agent 通过 JSON-RPC 网关访问 canister
// 每个 canister 对应一个 endpoint: <host>/api/v2/canister/<id>/rpc
// 调用者身份 (sender) 通过 query 参数传给网关, 由网关代为签名
type Agent struct {
	host    string
	timeout time.Duration
	sender  principal.Principal
	pool    *clientPool
}

type clientPool struct {
	mu      sync.Mutex
	clients map[string]node.Client
}

// NewAgent 创建 Agent, 不会发起网络请求
func NewAgent(c Config) *Agent {
	host := strings.TrimRight(c.Host, "/")
	if host == "" {
		host = defaultHost
	}
	timeout := time.Duration(c.CallTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	return &Agent{
		host:    host,
		timeout: timeout,
		pool:    &clientPool{clients: make(map[string]node.Client)},
	}
}

// As 返回以 sender 身份发起调用的 Agent, 与原 Agent 共享连接
func (a *Agent) As(sender principal.Principal) *Agent {
	cp := *a
	cp.sender = sender
	return &cp
}

// Sender 当前调用者身份, 为空表示匿名
func (a *Agent) Sender() principal.Principal {
	return a.sender
}

// Start 探测网关状态, 按需拉取 root key
// root key 只在本地 replica 上用于确认网关可以校验证书, 不在本服务内保存
// 网关可能晚于本服务启动, 因此探测会重试
func (a *Agent) Start(ctx context.Context, fetchRootKey bool) error {
	var status GatewayStatus
	err := utils.Retry(ctx, statusAttempts, statusInterval, func() error {
		return a.callEndpoint(ctx, a.statusURL(), &status, "status")
	})
	if err != nil {
		return errors.Wrap(ErrGatewayUnavailable, err.Error())
	}
	xzap.WithContext(ctx).Info("canister gateway ready",
		zap.String("host", a.host), zap.String("replica_health", status.ReplicaHealthStatus))

	if !fetchRootKey {
		return nil
	}

	var rootKey []byte
	if err := a.callEndpoint(ctx, a.statusURL(), &rootKey, "fetch_root_key"); err != nil {
		return errors.Wrap(err, "failed on fetch root key")
	}
	xzap.WithContext(ctx).Warn("root key fetched from gateway, do not use outside local deployment",
		zap.Int("root_key_len", len(rootKey)))
	return nil
}

// GatewayStatus 网关 status 方法的返回
type GatewayStatus struct {
	ReplicaHealthStatus string `json:"replica_health_status"`
	ImplVersion         string `json:"impl_version"`
}

func (a *Agent) statusURL() string {
	return a.host + "/api/v2/status"
}

func (a *Agent) canisterURL(id principal.Principal) string {
	if a.sender == "" {
		return fmt.Sprintf("%s/api/v2/canister/%s/rpc", a.host, id)
	}
	return fmt.Sprintf("%s/api/v2/canister/%s/rpc?sender=%s", a.host, id, url.QueryEscape(a.sender.Text()))
}

// call 调用指定 canister 的方法, 结果反序列化到 result
func (a *Agent) call(ctx context.Context, canisterID principal.Principal, result interface{}, method string, args ...interface{}) error {
	return a.callEndpoint(ctx, a.canisterURL(canisterID), result, method, args...)
}

func (a *Agent) callEndpoint(ctx context.Context, rawURL string, result interface{}, method string, args ...interface{}) (err error) {
	if result != nil && reflect.TypeOf(result).Kind() != reflect.Ptr {
		return fmt.Errorf("call result parameter must be pointer or nil interface: %v", result)
	}

	start := time.Now()
	defer func() {
		metrics.RecordActorCall(method, err, time.Since(start))
	}()

	client, err := a.client(rawURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	request := jsonrpc.Request{
		ID:     jsonrpc.ID{Num: 1},
		Method: method,
		Params: jsonrpc.MustParams(args...),
	}

	response, err := client.Request(ctx, &request)
	if err != nil {
		return errors.Wrapf(err, "failed on call %s", method)
	}
	if response.Error != nil {
		return errors.Wrapf(ErrCallRejected, "%s: %s", method, string(*response.Error))
	}
	if result == nil {
		return nil
	}
	if err = json.Unmarshal(response.Result, result); err != nil {
		return errors.Wrapf(err, "failed on decode %s result", method)
	}
	return nil
}

// client 按 endpoint 复用 node.Client
// client 生命周期跟随 Agent, 不绑定单次请求的 context
func (a *Agent) client(rawURL string) (node.Client, error) {
	a.pool.mu.Lock()
	defer a.pool.mu.Unlock()
	if c, ok := a.pool.clients[rawURL]; ok {
		return c, nil
	}

	c, err := node.NewClient(context.Background(), rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on dial %s", rawURL)
	}
	a.pool.clients[rawURL] = c
	return c, nil
}
