package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pipeline run states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PipelineRun records one execution of the dataset build, its outcome,
// and the validation report produced at the end.
type PipelineRun struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	Status     string         `gorm:"size:20;index" json:"status"`
	TeamID     int            `json:"team_id"`
	RowCount   int            `json:"row_count"`
	Error      string         `json:"error,omitempty"`
	Report     datatypes.JSON `gorm:"type:jsonb" json:"report"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
