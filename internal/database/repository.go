package database

import (
	"time"

	"github.com/activewin/activewin/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for failure logs
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateFailure inserts a new failure log into the database
func (r *Repository) CreateFailure(failure *models.FailureLog) error {
	if failure.Timestamp.IsZero() {
		failure.Timestamp = time.Now()
	}
	result := r.db.Create(failure)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert failure log")
	}
	return nil
}

// RecentFailures returns up to limit failures, newest first
func (r *Repository) RecentFailures(limit int) ([]*models.FailureLog, error) {
	var failures []*models.FailureLog
	query := r.db.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&failures); result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query failure logs")
	}
	return failures, nil
}

// CountFailuresSince counts failures recorded at or after since
func (r *Repository) CountFailuresSince(since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.FailureLog{}).Where("timestamp >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count failure logs")
	}
	return count, nil
}

// DeleteFailuresBefore soft-deletes failures older than before
func (r *Repository) DeleteFailuresBefore(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.FailureLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old failure logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all failure logs from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM failure_logs")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear failure logs")
	}
	return nil
}
