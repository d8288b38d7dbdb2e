package service

import (
	"context"

	"hr-lms/backend/internal/repository"
)

// CompletionOracle 判断用户是否已完成某培训
//
// 完成判定是多条参训记录上的析取：任意一条记录满足
// status=completed、is_passed=true 或 completed_at 非空即视为完成。
// 纯查询，无副作用。
type CompletionOracle interface {
	IsCompleted(ctx context.Context, userID, trainingID string) (bool, error)
	// CompletedAmong 批量判定，返回 trainingIDs 中已完成的子集
	CompletedAmong(ctx context.Context, userID string, trainingIDs []string) (map[string]bool, error)
}

type completionOracle struct {
	repo repository.CompletionRepository
}

// NewCompletionOracle 创建 CompletionOracle 实例
func NewCompletionOracle(repo *repository.Repository) CompletionOracle {
	return &completionOracle{repo: repo.Completion}
}

func (o *completionOracle) IsCompleted(ctx context.Context, userID, trainingID string) (bool, error) {
	if userID == "" || trainingID == "" {
		return false, nil
	}
	return o.repo.ExistsCompleted(ctx, userID, trainingID)
}

func (o *completionOracle) CompletedAmong(ctx context.Context, userID string, trainingIDs []string) (map[string]bool, error) {
	if userID == "" || len(trainingIDs) == 0 {
		return map[string]bool{}, nil
	}
	return o.repo.CompletedTrainingIDs(ctx, userID, trainingIDs)
}
