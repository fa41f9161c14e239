// Package store 提供修改建议的持久化应用
//
// 引擎自身从不读写存储：修复结果中的修改建议由外部持久化服务按
// 分配 ID 应用到规范存储。本包是该协作边界的客户端实现。
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/xiuban/xiuban/internal/config"
	"github.com/xiuban/xiuban/pkg/conflict"
	"github.com/xiuban/xiuban/pkg/logger"
)

// Store 规范分配存储的连接封装
type Store struct {
	db  *sql.DB
	cfg *config.DatabaseConfig
}

// Open 建立数据库连接
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接成功")

	return &Store{db: db, cfg: cfg}, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health 健康检查
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ApplyModifications 在单个事务内应用一组修改建议
// UPDATE 将分配标记为待调整并记录原因，DELETE 直接删除分配记录
// 返回实际生效的行数
func (s *Store) ApplyModifications(ctx context.Context, mods []conflict.Modification) (int, error) {
	if len(mods) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	applied := 0
	for _, mod := range mods {
		var result sql.Result
		switch mod.Op {
		case conflict.OpUpdate:
			result, err = tx.ExecContext(ctx, `
				UPDATE assignments
				SET status = 'pending_adjustment', notes = $2, updated_at = NOW()
				WHERE id = $1`,
				mod.AssignmentID, mod.Reason)
		case conflict.OpDelete:
			result, err = tx.ExecContext(ctx, `
				DELETE FROM assignments WHERE id = $1`,
				mod.AssignmentID)
		default:
			logger.Warn().
				Str("modification_id", mod.ID).
				Str("op", string(mod.Op)).
				Msg("未知修改操作，跳过")
			continue
		}
		if err != nil {
			return applied, fmt.Errorf("应用修改 %s 失败: %w", mod.ID, err)
		}
		if rows, rerr := result.RowsAffected(); rerr == nil {
			applied += int(rows)
		}
	}

	if err := tx.Commit(); err != nil {
		return applied, fmt.Errorf("提交事务失败: %w", err)
	}

	logger.Info().
		Int("modifications", len(mods)).
		Int("applied", applied).
		Msg("修改建议已应用")

	return applied, nil
}
