package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/stores/gdb"
	"github.com/PhilipDev237/opend/src/common/stores/xkv"
	"github.com/PhilipDev237/opend/src/common/xzap"
)

const (
	envPrefix = "OPEND"

	// DefaultTokenCanister 本地部署时 token canister 的默认 id
	DefaultTokenCanister = "rrkah-fqaaa-aaaaa-aaaaq-cai"
)

// Config 应用程序的全局配置
type Config struct {
	Api        `toml:"api" mapstructure:"api" json:"api"`
	ProjectCfg *ProjectCfg   `toml:"project_cfg" mapstructure:"project_cfg" json:"project_cfg"`
	Log        xzap.LogConf  `toml:"log" mapstructure:"log" json:"log"`
	Kv         *KvConf       `toml:"kv" mapstructure:"kv" json:"kv"`
	DB         gdb.Config    `toml:"db" mapstructure:"db" json:"db"`
	Agent      actor.Config  `toml:"agent" mapstructure:"agent" json:"agent"`
	Canister   CanisterCfg   `toml:"canister" mapstructure:"canister" json:"canister"`
	Identity   IdentityCfg   `toml:"identity" mapstructure:"identity" json:"identity"`
	Session    SessionCfg    `toml:"session" mapstructure:"session" json:"session"`
	Gallery    GalleryCfg    `toml:"gallery" mapstructure:"gallery" json:"gallery"`
	Monitor    *MonitorCfg   `toml:"monitor" mapstructure:"monitor" json:"monitor"`
}

// Api HTTP 服务配置
type Api struct {
	Port      string  `toml:"port" mapstructure:"port" json:"port"`
	RateLimit float64 `toml:"rate_limit" mapstructure:"rate_limit" json:"rate_limit"` // 每个调用者每秒允许的写操作数, 0 表示不限制
	RateBurst int     `toml:"rate_burst" mapstructure:"rate_burst" json:"rate_burst"`
}

type ProjectCfg struct {
	Name string `toml:"name" mapstructure:"name" json:"name"`
}

// KvConf Key-Value 存储配置
type KvConf struct {
	Redis []*xkv.Redis `toml:"redis" mapstructure:"redis" json:"redis"`
}

// CanisterCfg 市场与代币 canister id
type CanisterCfg struct {
	OpenD string `toml:"opend" mapstructure:"opend" json:"opend"`
	Token string `toml:"token" mapstructure:"token" json:"token"`
}

// IdentityCfg 请求未携带 X-Principal 时使用的调用者, 为空则要求必须携带
type IdentityCfg struct {
	DefaultPrincipal string `toml:"default_principal" mapstructure:"default_principal" json:"default_principal"`
}

// SessionCfg 卡片会话配置, 单位秒
type SessionCfg struct {
	TTL     int `toml:"ttl" mapstructure:"ttl" json:"ttl"`
	LockTTL int `toml:"lock_ttl" mapstructure:"lock_ttl" json:"lock_ttl"`
}

// GalleryCfg 列表页并发加载卡片的数量
type GalleryCfg struct {
	Concurrency int `toml:"concurrency" mapstructure:"concurrency" json:"concurrency"`
}

// MonitorCfg 监控配置
type MonitorCfg struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"`
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`
}

// UnmarshalConfig 加载并解析指定路径的配置文件
// 环境变量可覆盖配置, 如 OPEND_API_PORT, OPEND_CANISTER_OPEND
func UnmarshalConfig(configFilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFilePath)
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed on read config")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed on unmarshal config")
	}
	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Api.Port == "" {
		c.Api.Port = ":9000"
	}
	if c.Canister.Token == "" {
		c.Canister.Token = DefaultTokenCanister
	}
	if c.Gallery.Concurrency <= 0 {
		c.Gallery.Concurrency = 8
	}
	if c.ProjectCfg == nil {
		c.ProjectCfg = &ProjectCfg{Name: "opend"}
	}
}

// Validate 校验 canister id 与默认身份
func (c *Config) Validate() error {
	if _, err := principal.Parse(c.Canister.OpenD); err != nil {
		return errors.Wrap(err, "invalid canister.opend")
	}
	if _, err := principal.Parse(c.Canister.Token); err != nil {
		return errors.Wrap(err, "invalid canister.token")
	}
	if c.Identity.DefaultPrincipal != "" {
		if _, err := principal.Parse(c.Identity.DefaultPrincipal); err != nil {
			return errors.Wrap(err, "invalid identity.default_principal")
		}
	}
	if c.Kv == nil || len(c.Kv.Redis) == 0 {
		return errors.New("kv.redis is required for card sessions")
	}
	return nil
}

func (c *Config) OpenDCanister() principal.Principal {
	return principal.Principal(c.Canister.OpenD)
}

func (c *Config) TokenCanister() principal.Principal {
	return principal.Principal(c.Canister.Token)
}

func (c *Config) DefaultCaller() principal.Principal {
	return principal.Principal(c.Identity.DefaultPrincipal)
}
