package audit

import (
	"encoding/json"
	"sort"

	"groundwork/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	auditIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AuditPersistCreateFunc = auditPersistCreate
	LogAuditFunc           = LogAudit
)

func auditPersistCreate(record *AuditLogRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

// LogAudit derives the change summary and persists the log entry through the
// given db handle. When the handle is a transaction the entry commits or rolls
// back with the primary mutation.
func LogAudit(e Entry, db *gorm.DB) (*AuditLogRecord, error) {
	e.Changes.Action = e.Action
	if e.Action == ActionUpdate && e.Changes.Before != nil && e.Changes.After != nil {
		e.Changes.ChangedFields = ComputeChangedFields(e.Changes.Before, e.Changes.After)
	}

	record := AuditLogRecord{
		ID:        idgen.NextID(auditIdWorker),
		Entry:     e,
		Timestamp: types.CurrentTimestamp(),
	}
	if err := AuditPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}

// LogAuditBestEffort out-of-band observability writes: failures are logged
// locally and never escalated to the caller.
func LogAuditBestEffort(e Entry, db *gorm.DB) {
	if _, err := LogAuditFunc(e, db); err != nil {
		logrus.WithField("entityType", e.EntityType).WithField("entityId", e.EntityId).
			Warnf("audit log write failed: %v", err)
	}
}

// ComputeChangedFields keys whose JSON-stringified values differ between the
// two images. Comparison is order-sensitive for nested arrays and objects.
func ComputeChangedFields(before, after map[string]interface{}) []string {
	keys := map[string]bool{}
	for k := range before {
		keys[k] = true
	}
	for k := range after {
		keys[k] = true
	}

	changed := []string{}
	for k := range keys {
		beforeJson, _ := json.Marshal(before[k])
		afterJson, _ := json.Marshal(after[k])
		if string(beforeJson) != string(afterJson) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

// Image the audit view of an entity: its JSON object form.
func Image(entity interface{}) map[string]interface{} {
	jsonBytes, err := json.Marshal(entity)
	if err != nil {
		return nil
	}
	image := map[string]interface{}{}
	if err := json.Unmarshal(jsonBytes, &image); err != nil {
		return nil
	}
	return image
}
