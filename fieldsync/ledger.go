package fieldsync

import (
	"time"

	"groundwork/persistence"

	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

// Recently resolved outcomes are kept in memory so that the common retry case
// (a field client resubmitting right after a timeout) skips the ledger read.
var outcomeCache = cache.New(10*time.Minute, 1*time.Minute)

var (
	CheckIdempotencyFunc    = CheckIdempotency
	ActionPersistCreateFunc = actionPersistCreate
)

// CheckIdempotency returns the recorded outcome of a previously applied
// action id. Once an outcome is recorded, every later check returns it
// unmodified: callers must never re-run side effects for a duplicate.
func CheckIdempotency(actionId string) (*ActionRecord, bool, error) {
	if value, found := outcomeCache.Get(actionId); found {
		return value.(*ActionRecord), true, nil
	}

	var record ActionRecord
	err := persistence.ActiveDataSourceManager.GormDB().
		Where(&ActionRecord{ActionID: actionId}).First(&record).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	outcomeCache.SetDefault(actionId, &record)
	return &record, true, nil
}

func actionPersistCreate(record *ActionRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

// recordOutcome inserts the ledger row. The action id is the primary key, so
// two truly concurrent submissions of the same id collapse to one row: the
// loser gets a duplicate-key error, surfaced as retryable.
func recordOutcome(record *ActionRecord, db *gorm.DB) error {
	if err := ActionPersistCreateFunc(record, db); err != nil {
		return err
	}
	outcomeCache.SetDefault(record.ActionID, record)
	return nil
}
