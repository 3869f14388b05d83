package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/job"
)

// Ensure SQLStore implements job.Store
var _ job.Store = (*SQLStore)(nil)

// SQLStore 基于 database/sql 的任务存储，任务整体以 JSON 保存
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore 创建存储并初始化表结构，driver 为 postgres 或 sqlite
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generation_jobs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_jobs_created_at ON generation_jobs (created_at)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// rebind 把 ? 占位符转换为 postgres 的 $n
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLStore) Create(ctx context.Context, j *job.Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO generation_jobs (id, status, data, created_at) VALUES (?, ?, ?, ?)`),
		j.ID, string(j.Status), string(data), j.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert job failed: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*job.Job, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT data FROM generation_jobs WHERE id = ?`), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, job.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *SQLStore) List(ctx context.Context, status job.Status) ([]*job.Job, error) {
	query := `SELECT data FROM generation_jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		j, err := decode(data)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id string, fn func(j *job.Job) error) (*job.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	query := `SELECT data FROM generation_jobs WHERE id = ?`
	if s.driver == "postgres" {
		query += ` FOR UPDATE`
	}
	var data string
	if err := tx.QueryRowContext(ctx, s.rebind(query), id).Scan(&data); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, job.ErrNotFound
		}
		return nil, err
	}

	j, err := decode(data)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := fn(j); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return nil, err
	}

	out, err := json.Marshal(j)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE generation_jobs SET status = ?, data = ? WHERE id = ?`),
		string(j.Status), string(out), id); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return j, nil
}

func decode(data string) (*job.Job, error) {
	var j job.Job
	if err := json.Unmarshal([]byte(removeNullBytes(data)), &j); err != nil {
		return nil, fmt.Errorf("decode job failed: %w", err)
	}
	return &j, nil
}

// removeNullBytes PostgreSQL 文本字段不支持 NULL 字节
func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
