package database

import (
	"context"

	"oms-customers/internal/metrics"
	"oms-customers/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const auditSavepoint = "audit_log"

// AuditLogger appends entries to the audit log. It never returns an error:
// failures are logged and reported as false.
type AuditLogger struct {
	log *logrus.Logger
}

func NewAuditLogger(log *logrus.Logger) *AuditLogger {
	return &AuditLogger{log: log}
}

// LogTx writes entry on tx behind a savepoint, so a failed insert is undone
// without poisoning the surrounding transaction.
func (a *AuditLogger) LogTx(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) bool {
	tx = tx.WithContext(ctx)

	if err := tx.SavePoint(auditSavepoint).Error; err != nil {
		a.failed(entry, err)
		return false
	}

	if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
		a.failed(entry, err)
		if rbErr := tx.RollbackTo(auditSavepoint).Error; rbErr != nil {
			a.log.WithError(rbErr).Error("audit: rollback to savepoint failed")
		}
		return false
	}
	return true
}

func (a *AuditLogger) failed(entry *models.AuditLog, err error) {
	metrics.AuditWriteFailures.Inc()
	a.log.WithError(err).WithFields(logrus.Fields{
		"user_id":   entry.UserID,
		"action":    entry.Action,
		"entity":    entry.Entity,
		"entity_id": entry.EntityID,
	}).Error("failed to write audit log entry")
}
