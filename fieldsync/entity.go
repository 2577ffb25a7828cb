package fieldsync

import (
	"encoding/json"

	"github.com/fundwit/go-commons/types"
)

type ActionType string

const (
	ActionCreateMaterialRequest ActionType = "CREATE_MATERIAL_REQUEST"
	ActionUpdateMaterialRequest ActionType = "UPDATE_MATERIAL_REQUEST"
	ActionDeleteMaterialRequest ActionType = "DELETE_MATERIAL_REQUEST"
	ActionManualAttendance      ActionType = "MANUAL_ATTENDANCE"
)

type SyncStatus string

const (
	SyncStatusApplied   SyncStatus = "APPLIED"
	SyncStatusRejected  SyncStatus = "REJECTED"
	SyncStatusDuplicate SyncStatus = "DUPLICATE"
)

// ActionRecord is the idempotency ledger row. The client-generated action id
// is the primary key: an id is applied at most once, replays are answered
// from this record without re-executing side effects. Immutable once written.
type ActionRecord struct {
	ActionID string `json:"actionId" gorm:"primary_key" sql:"type:VARCHAR(64) NOT NULL"`

	ActionType ActionType `json:"actionType"`
	ProjectID  types.ID   `json:"projectId" gorm:"index"`

	ActorId   types.ID `json:"actorId"`
	ActorRole string   `json:"actorRole"`

	Payload string `json:"payload" sql:"type:TEXT"`

	Outcome     SyncStatus `json:"outcome"`
	ErrorReason string     `json:"errorReason"`
	EntityID    types.ID   `json:"entityId"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *ActionRecord) TableName() string {
	return "field_action_records"
}

type ActionSubmission struct {
	ClientActionID string     `json:"clientActionId" binding:"required,lte=64"`
	ActionType     ActionType `json:"actionType" binding:"required"`
	ProjectID      types.ID   `json:"projectId" binding:"required"`

	Payload json.RawMessage `json:"payload" binding:"required"`
}

type ActionResult struct {
	Success    bool       `json:"success"`
	EntityID   types.ID   `json:"entityId,omitempty"`
	SyncStatus SyncStatus `json:"syncStatus"`
	Error      string     `json:"error,omitempty"`
}
