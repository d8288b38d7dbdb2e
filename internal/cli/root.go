package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json"
	Verbose    bool
}

// ValidFormats 允许的输出格式
var ValidFormats = []string{"text", "json"}

// NewRootCommand 创建 needsctl 根命令
// open 负责按全局参数装配运行时（数据库、推导引擎、分发器）
func NewRootCommand(open RuntimeOpener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "needsctl",
		Short: "培训需求运维工具",
		Long:  "培训需求运维工具：全量重建、一次性回填、按用户或岗位分配推导。",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("无效的输出格式 %q，可选 %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "输出格式 (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "输出调试日志")

	cmd.AddCommand(NewRebuildCommand(opts, open))
	cmd.AddCommand(NewBackfillCommand(opts, open))
	cmd.AddCommand(NewDeriveCommand(opts, open))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
