package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

const (
	CategoryField    = "FIELD"
	CategorySecurity = "SECURITY"
	CategoryPayroll  = "PAYROLL"
)

type Entry struct {
	EntityType string   `json:"entityType"`
	EntityId   types.ID `json:"entityId"`
	Category   string   `json:"category"`
	Action     string   `json:"action"`

	ActorId   types.ID `json:"actorId"`
	ActorRole string   `json:"actorRole"`

	ProjectID types.ID `json:"projectId"`
	OrgID     types.ID `json:"orgId"`

	Changes ChangeSummary `json:"changes" sql:"type:TEXT"`
}

// AuditLogRecord is immutable once written, never updated or deleted.
type AuditLogRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Entry

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *AuditLogRecord) TableName() string {
	return "audit_logs"
}

type ChangeSummary struct {
	Action string `json:"action"`

	Before map[string]interface{} `json:"before,omitempty"`
	After  map[string]interface{} `json:"after,omitempty"`

	// ChangedFields is derived for UPDATE actions only.
	ChangedFields []string `json:"changedFields,omitempty"`
}

func (t ChangeSummary) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *ChangeSummary) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
