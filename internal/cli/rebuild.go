package cli

import (
	"github.com/spf13/cobra"
)

// NewRebuildCommand 创建 rebuild-needs 命令
// 对全部有效岗位分配重新推导；单项失败列入报告，不影响退出码
func NewRebuildCommand(rootOpts *RootOptions, open RuntimeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-needs",
		Short: "全量重建岗位培训需求",
		Long: `对全部有效岗位分配重新执行培训需求推导。

操作幂等：已存在的未关闭需求与已完成的培训均会跳过。
没有筛选参数，也没有试运行模式。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openOrExit(cmd.Context(), rootOpts, open)
			if err != nil {
				return err
			}
			defer rt.Close()

			report := rt.Dispatcher.RebuildAll(cmd.Context())
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(report.String(), report)
		},
	}
}
