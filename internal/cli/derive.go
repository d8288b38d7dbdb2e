package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hr-lms/backend/internal/service"
)

type deriveOptions struct {
	userID       string
	assignmentID string
}

// NewDeriveCommand 创建 derive 命令：为单个用户或岗位分配立即推导
func NewDeriveCommand(rootOpts *RootOptions, open RuntimeOpener) *cobra.Command {
	opts := &deriveOptions{}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "为单个用户或岗位分配推导培训需求",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.userID == "") == (opts.assignmentID == "") {
				return NewExitError(ExitCommandError, "必须且只能指定 --user 或 --assignment 之一")
			}

			rt, err := openOrExit(cmd.Context(), rootOpts, open)
			if err != nil {
				return err
			}
			defer rt.Close()

			var res *service.DerivationResult
			if opts.userID != "" {
				res, err = rt.Engine.DeriveForUser(cmd.Context(), opts.userID, service.TriggerOperator)
			} else {
				res, err = rt.Engine.DeriveForAssignment(cmd.Context(), opts.assignmentID, service.TriggerOperator)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "推导失败", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(renderDerivation(res), toDerivationView(res))
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "", "用户ID")
	cmd.Flags().StringVar(&opts.assignmentID, "assignment", "", "岗位分配ID")

	return cmd
}

func renderDerivation(res *service.DerivationResult) string {
	var b strings.Builder
	if res.UserID == "" {
		b.WriteString("岗位分配不存在，未执行推导\n")
		return b.String()
	}
	fmt.Fprintf(&b, "用户 %s：新建培训需求 %d 条\n", res.UserID, res.Created)
	for _, it := range res.Items {
		fmt.Fprintf(&b, "  - training=%s outcome=%s", it.TrainingID, it.Outcome)
		if it.Err != nil {
			fmt.Fprintf(&b, " error=%v", it.Err)
		}
		b.WriteString("\n")
	}
	return b.String()
}

type derivationItemView struct {
	TrainingID string `json:"training_id"`
	RoleID     string `json:"role_id,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
}

type derivationView struct {
	UserID  string               `json:"user_id"`
	Created int                  `json:"created"`
	Items   []derivationItemView `json:"items"`
}

func toDerivationView(res *service.DerivationResult) derivationView {
	v := derivationView{UserID: res.UserID, Created: res.Created, Items: make([]derivationItemView, 0, len(res.Items))}
	for _, it := range res.Items {
		item := derivationItemView{TrainingID: it.TrainingID, RoleID: it.RoleID, Outcome: string(it.Outcome)}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		v.Items = append(v.Items, item)
	}
	return v
}
