package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrUniqueViolation 唯一约束冲突（仓储层统一翻译后的错误）
var ErrUniqueViolation = errors.New("违反唯一约束")

// PostgreSQL 错误码
const (
	pgCodeUniqueViolation = "23505"
	pgCodeForeignKey      = "23503"
)

// IsUniqueViolation 判断是否为唯一约束冲突（含已翻译的 ErrUniqueViolation）
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation
}

// IsForeignKeyViolation 判断是否为外键约束冲突（引用的岗位/培训已不存在）
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeForeignKey
}

// ConstraintName 返回触发冲突的约束名，非 PostgreSQL 错误时返回空串
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
