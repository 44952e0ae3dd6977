package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lineutil/internal/model"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// RunSummary 运行历史摘要（列表视图，不含结果载荷）
type RunSummary struct {
	ID              string `json:"id"`
	CreatedAt       string `json:"createdAt"`
	Method          string `json:"method"`
	Years           []int  `json:"years"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// SaveRun 保存一次计算运行，返回运行 ID
func (s *Store) SaveRun(method string, result *model.PlanResult) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	yearsJSON, err := json.Marshal(result.Metadata.InputYears)
	if err != nil {
		return "", fmt.Errorf("failed to marshal years: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO runs (id, method, years_json, execution_time_ms, result_json)
		VALUES (?, ?, ?, ?, ?)
	`, id, method, string(yearsJSON), result.Metadata.ExecutionTimeMs, string(resultJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// ListRuns 按时间倒序列出运行历史
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, created_at, method, years_json, execution_time_ms
		FROM runs ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	result := []RunSummary{}
	for rows.Next() {
		var run RunSummary
		var yearsJSON string
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Method, &yearsJSON, &run.ExecutionTimeMs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(yearsJSON), &run.Years); err != nil {
			return nil, fmt.Errorf("failed to unmarshal years: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return result, nil
}

// GetRun 按 ID 取回完整计算结果
func (s *Store) GetRun(id string) (*model.PlanResult, error) {
	var resultJSON string
	err := s.db.QueryRow(`SELECT result_json FROM runs WHERE id = ?`, id).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var result model.PlanResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// DeleteRun 删除运行记录
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}
