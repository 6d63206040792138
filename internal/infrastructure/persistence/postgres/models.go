package postgres

import "bookhatch-api/internal/domain/entity"

// Models 返回需要迁移的全部表模型
func Models() []any {
	return []any{
		&entity.User{},
		&entity.Story{},
		&entity.Chapter{},
		&entity.GenerationJob{},
	}
}
