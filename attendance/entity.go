package attendance

import (
	"github.com/fundwit/go-commons/types"
)

const (
	ApprovalStatusPending  = "PENDING"
	ApprovalStatusApproved = "APPROVED"
	ApprovalStatusRejected = "REJECTED"
)

type AttendanceRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	LabourID  types.ID `json:"labourId" gorm:"index:labour_date_idx"`
	ProjectID types.ID `json:"projectId" gorm:"index"`

	// Date is the attendance day, local "YYYY-MM-DD".
	Date string `json:"date" gorm:"index:labour_date_idx"`

	CheckinTime types.Timestamp `json:"checkinTime" sql:"type:DATETIME(6)"`
	// CheckoutTime zero means the record is not finalized yet.
	CheckoutTime types.Timestamp `json:"checkoutTime" sql:"type:DATETIME(6)"`

	Manual bool `json:"manual"`
	// ApprovalStatus applies to manual records only, empty for automatic ones.
	ApprovalStatus string `json:"approvalStatus"`

	SkillType string `json:"skillType"`
	Category  string `json:"category"`

	CheckinLatitude  float64 `json:"checkinLatitude"`
	CheckinLongitude float64 `json:"checkinLongitude"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *AttendanceRecord) TableName() string {
	return "attendance_records"
}

type AttendanceSession struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	AttendanceID types.ID `json:"attendanceId" gorm:"index"`

	BeginTime types.Timestamp `json:"beginTime" sql:"type:DATETIME(6) NOT NULL"`
	// EndTime zero means the session is still open.
	EndTime types.Timestamp `json:"endTime" sql:"type:DATETIME(6)"`
}

func (r *AttendanceSession) TableName() string {
	return "attendance_sessions"
}
