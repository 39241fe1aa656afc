package worker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScheduleFile is the YAML document listing periodic digests.
type ScheduleFile struct {
	Schedules []ScheduleEntry `yaml:"schedules"`
}

// ScheduleEntry is one periodic digest. Nil fields take the configured
// defaults; an explicit empty account_ids list forces self mode.
type ScheduleEntry struct {
	Name          string   `yaml:"name"`
	Cron          string   `yaml:"cron"`
	LookbackDays  *int     `yaml:"lookback_days"`
	AccountIDs    []string `yaml:"account_ids"`
	CommentLength *int     `yaml:"comment_length"`
	ConnectionID  string   `yaml:"connection_id"`
}

// LoadSchedules reads and validates a schedule file.
func LoadSchedules(path string) (*ScheduleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}
	return ParseSchedules(data)
}

// ParseSchedules decodes and validates schedule YAML.
func ParseSchedules(data []byte) (*ScheduleFile, error) {
	var file ScheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks names are present and unique and every entry has a cron
// expression.
func (f *ScheduleFile) Validate() error {
	seen := make(map[string]struct{}, len(f.Schedules))
	for i, entry := range f.Schedules {
		if entry.Name == "" {
			return fmt.Errorf("schedule %d: name is required", i)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("schedule %q: duplicate name", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		if entry.Cron == "" {
			return fmt.Errorf("schedule %q: cron is required", entry.Name)
		}
		if entry.LookbackDays != nil && *entry.LookbackDays <= 0 {
			return fmt.Errorf("schedule %q: lookback_days must be positive", entry.Name)
		}
		if entry.CommentLength != nil && *entry.CommentLength < 0 {
			return fmt.Errorf("schedule %q: comment_length must not be negative", entry.Name)
		}
	}
	return nil
}
