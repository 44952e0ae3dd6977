package store

import (
	"errors"
	"sync"

	"lineutil/internal/model"
)

// ImportInfo 最近一次导入的元信息
type ImportInfo struct {
	Filename        string `json:"filename"`
	ImportedAt      string `json:"importedAt"`
	Lines           int    `json:"lines"`
	Models          int    `json:"models"`
	Volumes         int    `json:"volumes"`
	Compatibilities int    `json:"compatibilities"`
}

// MemoryStore 内存数据存储：当前规划输入与最近一次计算结果
type MemoryStore struct {
	plan       *model.PlanInput
	result     *model.PlanResult
	importInfo *ImportInfo
	mu         sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetPlan 获取当前规划输入
func (s *MemoryStore) GetPlan() (*model.PlanInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.plan == nil {
		return nil, errors.New("尚未导入产能数据")
	}
	return s.plan, nil
}

// HasPlan 是否已有规划输入
func (s *MemoryStore) HasPlan() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan != nil
}

// SetPlan 设置规划输入，同时清空上一次的计算结果
func (s *MemoryStore) SetPlan(plan *model.PlanInput, info *ImportInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = plan
	s.importInfo = info
	s.result = nil
}

// UpdateChangeover 更新换型配置
func (s *MemoryStore) UpdateChangeover(cfg *model.ChangeoverConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return errors.New("尚未导入产能数据")
	}
	s.plan.Changeover = cfg
	s.result = nil
	return nil
}

// UpdateSelectedYears 更新参与计算的年份
func (s *MemoryStore) UpdateSelectedYears(years []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return errors.New("尚未导入产能数据")
	}
	s.plan.SelectedYears = years
	s.result = nil
	return nil
}

// GetLastResult 获取最近一次计算结果
func (s *MemoryStore) GetLastResult() (*model.PlanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, errors.New("尚未执行计算")
	}
	return s.result, nil
}

// SetLastResult 保存计算结果
func (s *MemoryStore) SetLastResult(result *model.PlanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// GetImportInfo 获取最近一次导入的元信息
func (s *MemoryStore) GetImportInfo() *ImportInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.importInfo
}

// Clear 清空全部数据
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
	s.result = nil
	s.importInfo = nil
}
