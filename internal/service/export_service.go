package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoNeeds      = errors.New("没有符合条件的培训需求")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// exportBatchSize 导出时分批读取的每批条数
const exportBatchSize = 500

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出培训需求为 Excel (.xlsx)，筛选条件与需求列表一致（默认隐藏已完成）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportNeeds(ctx context.Context, req *dto.NeedListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: time.Now, logger: logger}
}

var needSourceLabels = map[string]string{
	model.NeedSourceRole:   "岗位要求",
	model.NeedSourceManual: "手工登记",
	model.NeedSourceOther:  "其他",
}

var needStatusLabels = map[string]string{
	model.NeedStatusPending:   "待处理",
	model.NeedStatusApproved:  "已批准",
	model.NeedStatusRejected:  "已驳回",
	model.NeedStatusPlanned:   "已计划",
	model.NeedStatusDone:      "已完成",
	model.NeedStatusCancelled: "已取消",
}

// ═══════════════════════════════════════════════════════════
// ExportNeeds 导出培训需求为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet “培训需求”，首行标题，次行表头，每条需求一行

func (s *exportService) ExportNeeds(ctx context.Context, req *dto.NeedListRequest) (*bytes.Buffer, string, error) {
	filter := repository.NeedFilter{
		UserID:        req.UserID,
		TrainingID:    req.TrainingID,
		Source:        req.Source,
		IsOpen:        req.IsOpen,
		Keyword:       req.Keyword,
		HideCompleted: req.ShouldHideCompleted(),
	}

	// 1. 分批读取
	var needs []model.TrainingNeed
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.repo.Need.List(ctx, filter, offset, exportBatchSize)
		if err != nil {
			s.logger.Error("查询培训需求失败", zap.Error(err))
			return nil, "", err
		}
		needs = append(needs, batch...)
		if len(batch) < exportBatchSize || int64(len(needs)) >= total {
			break
		}
	}
	if len(needs) == 0 {
		return nil, "", ErrExportNoNeeds
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "培训需求"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"用户ID", "培训", "培训编码", "来源", "状态", "优先级", "来源岗位", "备注", "截止日期", "是否未关闭", "创建时间"}
	widths := []float64{38, 28, 14, 10, 10, 8, 20, 32, 12, 10, 20}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	generatedAt := s.now()
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("培训需求清单（%s 导出，共 %d 条）", generatedAt.Format("2006-01-02 15:04"), len(needs)))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range needs {
		n := &needs[i]
		values := []interface{}{
			n.UserID,
			"",
			"",
			labelOr(needSourceLabels, n.Source),
			labelOr(needStatusLabels, n.Status),
			n.Priority,
			"",
			n.Note,
			"",
			yesNo(n.IsOpen),
			n.CreatedAt.Format("2006-01-02 15:04"),
		}
		if n.Training != nil {
			values[1] = n.Training.Title
			if n.Training.Code != nil {
				values[2] = *n.Training.Code
			}
		}
		if n.JobRole != nil {
			values[6] = n.JobRole.Name
		}
		if n.DueDate != nil {
			values[8] = n.DueDate.Format(dateLayout)
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		row++
	}

	// 3. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("培训需求_%s.xlsx", generatedAt.Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func labelOr(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
