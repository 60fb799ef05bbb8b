package repository

import (
	"context"
	"database/sql"

	"github.com/mwangik/farm-produce-market/internal/model"
)

// AuditRepo appends audit rows. Callers treat failures as
// best-effort: an audit write error is logged and swallowed, never
// surfaced to the client.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert appends one audit record.
func (r *AuditRepo) Insert(ctx context.Context, rec model.AuditLog) error {
	var meta any
	if len(rec.Metadata) > 0 {
		meta = []byte(rec.Metadata)
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO audit_logs (user_id, action, resource, resource_id, metadata, ip_address, user_agent)
		 VALUES (?,?,?,?,?,?,?)`,
		rec.UserID, rec.Action, rec.Resource, rec.ResourceID, meta, rec.IPAddress, rec.UserAgent)
	return err
}
