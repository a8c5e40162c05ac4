package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/sujaykar/echovault/pkg/configs"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "inspect the effective configuration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
	}

	// 打印最终被采用的配置文件，确认多路径搜索命中了哪一个.
	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file actually in use",
		Run: func(cmd *cobra.Command, args []string) {
			v := configs.GetViper()
			if v == nil || v.ConfigFileUsed() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file loaded, running on defaults and env")

				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.ConfigFileUsed())
		},
	}

	// 打印默认值、文件与环境变量合并后的配置.
	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the merged configuration as JSON",
		Aliases: []string{"dump"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			b, err := sonic.MarshalIndent(configs.GetConfig(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerConfigCommands 挂载 config 子命令.
func registerConfigCommands() {
	configCmd.AddCommand(configPathCmd, configShowCmd)

	rootCmd.AddCommand(configCmd)
}
