package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/config.toml"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "opend",
	Short: "OpenD NFT marketplace api.",
	Long:  "OpenD NFT marketplace api: item cards, listing and purchase over canister gateway.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 支持 ~/ 开头的配置路径
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return err
		}
		cfgFile = path
		return nil
	},
}

// Execute 解析命令行参数并执行对应的子命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "conf", defaultConfigPath, "conf file path")
}
