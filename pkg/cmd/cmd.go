// Package cmd 实现 echovault 二进制的命令行界面.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "echovault",
		Short: "EchoVault 回声存储服务，负责文件上传与记录登记",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print verbose debug output")

	registerServeCommands()
	registerConfigCommands()
	registerBackendCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
