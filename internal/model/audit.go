package model

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only record of a state-changing request,
// stored in `audit_logs`. Writes are best effort and never block or
// fail the request that produced them.
type AuditLog struct {
	ID         uint64          // audit_logs.id
	UserID     *string         // audit_logs.user_id (nullable, anon requests)
	Action     string          // audit_logs.action (e.g. CREATE_LISTING)
	Resource   string          // audit_logs.resource (e.g. listing)
	ResourceID *string         // audit_logs.resource_id (nullable)
	Metadata   json.RawMessage // audit_logs.metadata (sanitized request/response)
	IPAddress  *string         // audit_logs.ip_address
	UserAgent  *string         // audit_logs.user_agent
	CreatedAt  time.Time       // audit_logs.created_at
}
