package wage

import (
	"github.com/fundwit/go-commons/types"
)

// WageRate is keyed uniquely by (project, skill, category). A missing rate is
// a hard failure at computation time, never a zero fallback.
type WageRate struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID types.ID `json:"projectId" gorm:"unique_index:rate_key_unique"`
	SkillType string   `json:"skillType" gorm:"unique_index:rate_key_unique"`
	Category  string   `json:"category" gorm:"unique_index:rate_key_unique"`

	HourlyRate float64 `json:"hourlyRate"`

	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

func (r *WageRate) TableName() string {
	return "wage_rates"
}

// LabourRequest asks for N workers of a category on a project.
type LabourRequest struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID types.ID `json:"projectId" gorm:"index"`
	Category  string   `json:"category"`

	RequestedCount int `json:"requestedCount"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *LabourRequest) TableName() string {
	return "labour_requests"
}

const (
	ParticipantStatusPending  = "PENDING"
	ParticipantStatusApproved = "APPROVED"
	ParticipantStatusRejected = "REJECTED"
)

type LabourRequestParticipant struct {
	RequestID types.ID `json:"requestId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	LabourID  types.ID `json:"labourId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Status string `json:"status"`
}

func (r *LabourRequestParticipant) TableName() string {
	return "labour_request_participants"
}

type Settlement struct {
	AttendanceID types.ID `json:"attendanceId"`
	LabourID     types.ID `json:"labourId"`
	ProjectID    types.ID `json:"projectId"`
	Date         string   `json:"date"`

	WorkedHours float64 `json:"workedHours"`
	HourlyRate  float64 `json:"hourlyRate"`
	TotalAmount float64 `json:"totalAmount"`

	ReadyForPayment bool `json:"readyForPayment"`

	SkillType string `json:"skillType"`
	Category  string `json:"category"`

	Message string `json:"message,omitempty"`
}

type CapacityCheck struct {
	RequestID types.ID `json:"requestId"`
	ProjectID types.ID `json:"projectId"`
	Category  string   `json:"category"`

	RequestedCount int `json:"requestedCount"`
	ApprovedCount  int `json:"approvedCount"`
	PendingCount   int `json:"pendingCount"`

	// Allowed is advisory only: this check does not reserve a slot.
	Allowed bool `json:"allowed"`

	ParticipationStatus string `json:"participationStatus,omitempty"`
}
