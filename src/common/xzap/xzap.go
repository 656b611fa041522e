package xzap

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ModeConsole = "console"
	ModeFile    = "file"

	defaultLogName = "opend.log"
)

// LogConf 日志配置
type LogConf struct {
	ServiceName string `toml:"service_name" mapstructure:"service_name" json:"service_name"`
	Mode        string `toml:"mode" mapstructure:"mode" json:"mode"`    // console / file
	Path        string `toml:"path" mapstructure:"path" json:"path"`    // 日志目录, 仅 file 模式
	Level       string `toml:"level" mapstructure:"level" json:"level"` // debug / info / warn / error
	Compress    bool   `toml:"compress" mapstructure:"compress" json:"compress"`
	KeepDays    int    `toml:"keep_days" mapstructure:"keep_days" json:"keep_days"`
	MaxSize     int    `toml:"max_size" mapstructure:"max_size" json:"max_size"` // MB
	MaxBackups  int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`
}

type traceIDKey struct{}

var logger = zap.NewNop()

// SetUp 根据配置初始化全局 logger
// console 模式输出到 stdout, file 模式由 lumberjack 负责按大小切割与过期清理
func SetUp(c LogConf) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
			return nil, errors.Wrap(err, "failed on parse log level")
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var ws zapcore.WriteSyncer
	switch c.Mode {
	case "", ModeConsole:
		ws = zapcore.AddSync(os.Stdout)
	case ModeFile:
		if err := os.MkdirAll(c.Path, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed on create log dir")
		}
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(c.Path, defaultLogName),
			MaxSize:    c.MaxSize,
			MaxAge:     c.KeepDays,
			MaxBackups: c.MaxBackups,
			Compress:   c.Compress,
			LocalTime:  true,
		})
	default:
		return nil, errors.Errorf("unknown log mode %q", c.Mode)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, level)
	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if c.ServiceName != "" {
		l = l.With(zap.String("service", c.ServiceName))
	}

	logger = l
	zap.ReplaceGlobals(l)
	return l, nil
}

// NewContext 在 context 中记录请求的 trace id
func NewContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID 读取 context 中的 trace id
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// WithContext 返回携带 trace id 的 logger
func WithContext(ctx context.Context) *zap.Logger {
	if id := TraceID(ctx); id != "" {
		return logger.With(zap.String("trace_id", id))
	}
	return logger
}
