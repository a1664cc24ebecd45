package cmd

import (
	"os"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "photo-share",
	Short: "Photo sharing backend: albums, share links and cloud analysis",
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (eg: /etc/photo-share/.env)")
	err := viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		return
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig() *config.Config {
	config.InitConfig()
	cfg := config.Get()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return cfg
}
