package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sujaykar/echovault/pkg/internal/storage/db"
	"github.com/sujaykar/echovault/pkg/internal/storage/kv"
	"github.com/sujaykar/echovault/pkg/internal/storage/mq"
)

// backendsCmd 列出编译进当前二进制的存储后端，配置里的 type 字段只能取这些值.
var backendsCmd = &cobra.Command{
	Use:     "backends",
	Short:   "list storage backends built into this binary",
	Aliases: []string{"drivers"},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "db:")
		for _, t := range db.GetRegisteredDBTypes() {
			fmt.Fprintln(out, "  "+string(t))
		}

		fmt.Fprintln(out, "kv:")
		for _, t := range kv.GetRegisteredKVTypes() {
			fmt.Fprintln(out, "  "+string(t))
		}

		fmt.Fprintln(out, "mq:")
		for _, t := range mq.GetRegisteredMQTypes() {
			fmt.Fprintln(out, "  "+string(t))
		}
	},
}

// registerBackendCommands 挂载后端枚举命令.
func registerBackendCommands() {
	rootCmd.AddCommand(backendsCmd)
}
