package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/pkg/common"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// 食材狀態；自動匯入的資料在上游被標記為 inactive
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// SQLiteSource 從 ingredient 資料表讀取目錄
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite 開啟資料庫並建立資料表
func OpenSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &SQLiteSource{db: db}, nil
}

// Entries 讀取所有非 inactive 的食材
func (s *SQLiteSource) Entries(ctx context.Context) ([]pantry.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT food_id, name, is_basic_ingredient FROM ingredient WHERE status != ? ORDER BY food_id`,
		StatusInactive,
	)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	entries := []pantry.Entry{}
	for rows.Next() {
		var (
			e      pantry.Entry
			staple int
		)
		if err := rows.Scan(&e.ID, &e.Name, &staple); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		e.IsStaple = staple != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return entries, nil
}

// Import 批次寫入或更新食材，IMP- 前綴的資料標記為 inactive
func (s *SQLiteSource) Import(ctx context.Context, entries []pantry.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ingredient (food_id, name, is_basic_ingredient, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(food_id) DO UPDATE SET
			name = excluded.name,
			is_basic_ingredient = excluded.is_basic_ingredient,
			status = excluded.status`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		status := StatusActive
		if e.IsImported() {
			status = StatusInactive
		}
		staple := 0
		if e.IsStaple {
			staple = 1
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, staple, status); err != nil {
			return n, fmt.Errorf("upsert %s: %w", e.ID, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	common.LogInfo("Catalog imported", zap.Int("count", n))
	return n, nil
}

// SetStatus 更新食材狀態
func (s *SQLiteSource) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE ingredient SET status = ? WHERE food_id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.Wrap(common.ErrNotFound, fmt.Errorf("ingredient %s", id))
	}
	return nil
}

// Ping 檢查連線
func (s *SQLiteSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉資料庫
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
