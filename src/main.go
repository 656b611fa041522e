package main

import (
	"github.com/PhilipDev237/opend/src/cmd"
)

// main 是程序的入口函数
// go run ./src api --conf ./config/config.toml 启动 HTTP 服务
func main() {
	cmd.Execute()
}
