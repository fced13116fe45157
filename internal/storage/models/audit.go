package models

import (
	"time"
)

// AuditLog records one API operation against the service: a build trigger or
// a status poll, who asked for it, and how it ended.
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	APIKey    string    `json:"api_key"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	Operation string    `json:"operation"` // "trigger" or "status"
	JobName   string    `json:"job_name"`
	Params    string    `json:"params"`
	Result    string    `json:"result"`
	Error     string    `json:"error,omitempty"`
}
