package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"lineutil/internal/model"
)

// SavePlan 全量替换规划输入。
// 导入即快照：旧数据整体清除，单事务保证不出现半新半旧状态。
func (s *Store) SavePlan(plan *model.PlanInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"lines", "models", "volumes", "compatibilities", "plan_settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	lineStmt, err := tx.Prepare(`
		INSERT INTO lines (id, name, area, kind, time_available_daily, changeover_enabled, changeover_explicit)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer lineStmt.Close()
	for _, line := range plan.Lines {
		if _, err := lineStmt.Exec(line.ID, line.Name, line.Area, string(line.Kind),
			line.TimeAvailableDaily, line.ChangeoverEnabled, line.ChangeoverExplicit); err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}
	}

	modelStmt, err := tx.Prepare(`
		INSERT INTO models (id, name, customer, program, family)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer modelStmt.Close()
	for _, m := range plan.Models {
		if _, err := modelStmt.Exec(m.ID, m.Name, m.Customer, m.Program, m.Family); err != nil {
			return fmt.Errorf("failed to insert model: %w", err)
		}
	}

	volumeStmt, err := tx.Prepare(`
		INSERT INTO volumes (model_id, model_name, year, volume, ops_days)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer volumeStmt.Close()
	for _, v := range plan.Volumes {
		if _, err := volumeStmt.Exec(v.ModelID, v.ModelName, v.Year, v.Volume, v.OpsDays); err != nil {
			return fmt.Errorf("failed to insert volume: %w", err)
		}
	}

	compatStmt, err := tx.Prepare(`
		INSERT INTO compatibilities (line_id, line_name, model_id, model_name, cycle_time, efficiency, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer compatStmt.Close()
	for _, c := range plan.Compatibilities {
		if _, err := compatStmt.Exec(c.LineID, c.LineName, c.ModelID, c.ModelName,
			c.CycleTime, c.Efficiency, c.Priority); err != nil {
			return fmt.Errorf("failed to insert compatibility: %w", err)
		}
	}

	changeoverJSON, yearsJSON, err := marshalSettings(plan)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO plan_settings (id, changeover_json, selected_years_json) VALUES (1, ?, ?)
	`, changeoverJSON, yearsJSON); err != nil {
		return fmt.Errorf("failed to save plan settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadPlan 加载规划输入。库为空时返回 (nil, nil)。
func (s *Store) LoadPlan() (*model.PlanInput, error) {
	plan := &model.PlanInput{}

	rows, err := s.db.Query(`
		SELECT id, name, area, kind, time_available_daily, changeover_enabled, changeover_explicit
		FROM lines ORDER BY area, name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line model.Line
		var kind string
		if err := rows.Scan(&line.ID, &line.Name, &line.Area, &kind,
			&line.TimeAvailableDaily, &line.ChangeoverEnabled, &line.ChangeoverExplicit); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		line.Kind = model.LineKind(kind)
		plan.Lines = append(plan.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lines: %w", err)
	}

	modelRows, err := s.db.Query(`SELECT id, name, customer, program, family FROM models ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer modelRows.Close()
	for modelRows.Next() {
		var m model.Model
		var customer, program, family sql.NullString
		if err := modelRows.Scan(&m.ID, &m.Name, &customer, &program, &family); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		m.Customer = customer.String
		m.Program = program.String
		m.Family = family.String
		plan.Models = append(plan.Models, m)
	}
	if err := modelRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate models: %w", err)
	}

	volumeRows, err := s.db.Query(`
		SELECT model_id, model_name, year, volume, ops_days FROM volumes ORDER BY year, model_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query volumes: %w", err)
	}
	defer volumeRows.Close()
	for volumeRows.Next() {
		var v model.Volume
		var name sql.NullString
		if err := volumeRows.Scan(&v.ModelID, &name, &v.Year, &v.Volume, &v.OpsDays); err != nil {
			return nil, fmt.Errorf("failed to scan volume: %w", err)
		}
		v.ModelName = name.String
		plan.Volumes = append(plan.Volumes, v)
	}
	if err := volumeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate volumes: %w", err)
	}

	compatRows, err := s.db.Query(`
		SELECT line_id, line_name, model_id, model_name, cycle_time, efficiency, priority
		FROM compatibilities ORDER BY line_id, model_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query compatibilities: %w", err)
	}
	defer compatRows.Close()
	for compatRows.Next() {
		var c model.Compatibility
		var lineName, modelName sql.NullString
		if err := compatRows.Scan(&c.LineID, &lineName, &c.ModelID, &modelName,
			&c.CycleTime, &c.Efficiency, &c.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan compatibility: %w", err)
		}
		c.LineName = lineName.String
		c.ModelName = modelName.String
		plan.Compatibilities = append(plan.Compatibilities, c)
	}
	if err := compatRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compatibilities: %w", err)
	}

	if err := s.loadSettings(plan); err != nil {
		return nil, err
	}

	if len(plan.Lines) == 0 && len(plan.Models) == 0 && len(plan.Volumes) == 0 {
		return nil, nil
	}
	return plan, nil
}

// SaveSettings 单独更新换型配置与选中年份
func (s *Store) SaveSettings(plan *model.PlanInput) error {
	changeoverJSON, yearsJSON, err := marshalSettings(plan)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO plan_settings (id, changeover_json, selected_years_json)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			changeover_json = excluded.changeover_json,
			selected_years_json = excluded.selected_years_json,
			updated_at = CURRENT_TIMESTAMP
	`, changeoverJSON, yearsJSON)
	if err != nil {
		return fmt.Errorf("failed to save plan settings: %w", err)
	}
	return nil
}

func marshalSettings(plan *model.PlanInput) (changeoverJSON, yearsJSON any, err error) {
	changeoverJSON = nil
	if plan.Changeover != nil {
		data, err := json.Marshal(plan.Changeover)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal changeover config: %w", err)
		}
		changeoverJSON = string(data)
	}
	data, err := json.Marshal(plan.SelectedYears)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal selected years: %w", err)
	}
	return changeoverJSON, string(data), nil
}

func (s *Store) loadSettings(plan *model.PlanInput) error {
	var changeoverJSON, yearsJSON sql.NullString
	err := s.db.QueryRow(`
		SELECT changeover_json, selected_years_json FROM plan_settings WHERE id = 1
	`).Scan(&changeoverJSON, &yearsJSON)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query plan settings: %w", err)
	}

	if changeoverJSON.Valid && changeoverJSON.String != "" {
		var cfg model.ChangeoverConfig
		if err := json.Unmarshal([]byte(changeoverJSON.String), &cfg); err != nil {
			return fmt.Errorf("failed to unmarshal changeover config: %w", err)
		}
		plan.Changeover = &cfg
	}
	if yearsJSON.Valid && yearsJSON.String != "" {
		if err := json.Unmarshal([]byte(yearsJSON.String), &plan.SelectedYears); err != nil {
			return fmt.Errorf("failed to unmarshal selected years: %w", err)
		}
	}
	return nil
}
