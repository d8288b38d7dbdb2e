package cli

import (
	"github.com/spf13/cobra"
)

// NewBackfillCommand 创建 backfill 命令（一次性回填，已执行过则跳过）
func NewBackfillCommand(rootOpts *RootOptions, open RuntimeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "执行一次性培训需求回填",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openOrExit(cmd.Context(), rootOpts, open)
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.Dispatcher.Initialize(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "回填失败", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if report == nil {
				return out.Success("已回填过，跳过\n", map[string]bool{"skipped": true})
			}
			return out.Success(report.String(), report)
		},
	}
}
