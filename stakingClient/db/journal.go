package db

import (
	"time"

	"github.com/pkg/errors"

	"github.com/pushchain/token-quest-client/stakingClient/store"
)

// DefaultHistoryLimit bounds ListSubmissions when no limit is given.
const DefaultHistoryLimit = 20

// RecordPending inserts sub as pending and sets its ID.
func (d *DB) RecordPending(sub *store.Submission) error {
	if sub == nil {
		return errors.New("submission is nil")
	}
	if sub.Status == "" {
		sub.Status = store.StatusPending
	}
	if err := d.client.Create(sub).Error; err != nil {
		return errors.Wrapf(err, "failed to record %s submission", sub.Operation)
	}
	return nil
}

// MarkConfirmed stores the signature of a confirmed submission.
func (d *DB) MarkConfirmed(id uint, signature string) error {
	res := d.client.Model(&store.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    store.StatusConfirmed,
			"signature": signature,
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to mark submission %d confirmed", id)
	}
	if res.RowsAffected == 0 {
		return errors.Errorf("submission %d not found", id)
	}
	return nil
}

// MarkFailed stores the failure of a submission. signature may be empty when
// the transaction never reached the cluster.
func (d *DB) MarkFailed(id uint, signature string, programCode *int64, errMsg string) error {
	res := d.client.Model(&store.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       store.StatusFailed,
			"signature":    signature,
			"program_code": programCode,
			"error_msg":    errMsg,
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to mark submission %d failed", id)
	}
	if res.RowsAffected == 0 {
		return errors.Errorf("submission %d not found", id)
	}
	return nil
}

// ListSubmissions returns the most recent submissions, newest first.
// A non-positive limit uses DefaultHistoryLimit.
func (d *DB) ListSubmissions(limit int) ([]store.Submission, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var subs []store.Submission
	if err := d.client.Order("id DESC").Limit(limit).Find(&subs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list submissions")
	}
	return subs, nil
}

// DeleteSubmissionsOlderThan removes finished submissions last updated before
// now minus retention. Pending rows are kept since their outcome is unknown.
func (d *DB) DeleteSubmissionsOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := d.client.Unscoped().
		Where("status <> ? AND updated_at < ?", store.StatusPending, cutoff).
		Delete(&store.Submission{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to delete old submissions")
	}

	if res.RowsAffected > 0 {
		// Best effort: shrink the WAL after a bulk delete.
		_ = d.client.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
	}
	return res.RowsAffected, nil
}
