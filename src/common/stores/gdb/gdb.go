package gdb

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config MySQL 连接配置
type Config struct {
	User            string `toml:"user" mapstructure:"user" json:"user"`
	Password        string `toml:"password" mapstructure:"password" json:"password"`
	Host            string `toml:"host" mapstructure:"host" json:"host"`
	Port            int    `toml:"port" mapstructure:"port" json:"port"`
	Database        string `toml:"database" mapstructure:"database" json:"database"`
	MaxIdleConns    int    `toml:"max_idle_conns" mapstructure:"max_idle_conns" json:"max_idle_conns"`
	MaxOpenConns    int    `toml:"max_open_conns" mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxConnLifetime int    `toml:"max_conn_max_lifetime" mapstructure:"max_conn_max_lifetime" json:"max_conn_max_lifetime"` // 秒
	LogLevel        string `toml:"log_level" mapstructure:"log_level" json:"log_level"`
}

// DSN 生成 go-sql-driver 格式的连接串
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Enabled 未配置 host 时不连接数据库
func (c *Config) Enabled() bool {
	return c != nil && c.Host != ""
}

// NewDB 创建 GORM 连接并设置连接池
func NewDB(c *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(c.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(c.LogLevel)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed on get sql db")
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.MaxConnLifetime) * time.Second)
	}

	return db, nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
