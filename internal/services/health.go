package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// HealthStatus is reported by the health endpoint
type HealthStatus struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	ResponseTime int64  `json:"response_time_ms"`
	RelayGroup   string `json:"relay_group,omitempty"`
	RelayMembers int    `json:"relay_members"`
	LastError    string `json:"last_error,omitempty"`
}

// MemberCounter reports how many connections a relay group holds
type MemberCounter interface {
	Name() string
	Count() int
}

// HealthService checks the database and reports relay occupancy
type HealthService struct {
	db    *sqlx.DB
	group MemberCounter
}

// NewHealthService creates a health service. group may be nil.
func NewHealthService(db *sqlx.DB, group MemberCounter) *HealthService {
	return &HealthService{db: db, group: group}
}

// Check pings the database within ctx
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "healthy", Database: "up"}

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "down"
		status.LastError = err.Error()
	}
	status.ResponseTime = time.Since(start).Milliseconds()

	if s.group != nil {
		status.RelayGroup = s.group.Name()
		status.RelayMembers = s.group.Count()
	}
	return status
}
