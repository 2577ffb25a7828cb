package attendance

import (
	"groundwork/audit"
	"groundwork/bizerror"
	"groundwork/domain"
	"groundwork/idgen"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	attendanceIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ApproveManualAttendanceFunc = ApproveManualAttendance
	RejectManualAttendanceFunc  = RejectManualAttendance
)

type SessionSpan struct {
	BeginTime types.Timestamp `json:"beginTime" binding:"required"`
	EndTime   types.Timestamp `json:"endTime"`
}

type ManualAttendanceCreation struct {
	LabourID types.ID `json:"labourId" binding:"required"`
	Date     string   `json:"date" binding:"required"`

	CheckinTime  types.Timestamp `json:"checkinTime" binding:"required"`
	CheckoutTime types.Timestamp `json:"checkoutTime"`

	Sessions []SessionSpan `json:"sessions"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateManualAttendance runs inside the applier transaction. The record is
// created PENDING: it is not payable until a manager approves it.
func CreateManualAttendance(c ManualAttendanceCreation, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	var labour domain.Labour
	if err := tx.Where(&domain.Labour{ID: c.LabourID}).First(&labour).Error; err != nil {
		return 0, err
	}

	record := AttendanceRecord{
		ID:        idgen.NextID(attendanceIdWorker),
		LabourID:  c.LabourID,
		ProjectID: projectId,
		Date:      c.Date,

		CheckinTime:  c.CheckinTime,
		CheckoutTime: c.CheckoutTime,

		Manual:         true,
		ApprovalStatus: ApprovalStatusPending,

		SkillType: labour.SkillType,
		Category:  labour.Category,

		CheckinLatitude:  c.Latitude,
		CheckinLongitude: c.Longitude,

		CreateTime: types.CurrentTimestamp(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}

	for _, span := range c.Sessions {
		s := AttendanceSession{
			ID:           idgen.NextID(attendanceIdWorker),
			AttendanceID: record.ID,
			BeginTime:    span.BeginTime,
			EndTime:      span.EndTime,
		}
		if err := tx.Create(&s).Error; err != nil {
			return 0, err
		}
	}

	_, err := audit.LogAuditFunc(audit.Entry{
		EntityType: "AttendanceRecord", EntityId: record.ID,
		Category: audit.CategoryField, Action: audit.ActionCreate,
		ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
		ProjectID: projectId,
		Changes:   audit.ChangeSummary{After: audit.Image(&record)},
	}, tx)
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

func ApproveManualAttendance(id types.ID, sec *session.Context) (*AttendanceRecord, error) {
	return resolveManualAttendance(id, ApprovalStatusApproved, audit.ActionApprove, sec)
}

func RejectManualAttendance(id types.ID, sec *session.Context) (*AttendanceRecord, error) {
	return resolveManualAttendance(id, ApprovalStatusRejected, audit.ActionReject, sec)
}

func resolveManualAttendance(id types.ID, status, action string, sec *session.Context) (*AttendanceRecord, error) {
	var updated AttendanceRecord
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		var origin AttendanceRecord
		if err := tx.Where(&AttendanceRecord{ID: id}).First(&origin).Error; err != nil {
			return err
		}
		if sec == nil || !sec.Perms.HasRole(domain.ProjectRoleManager+"_"+origin.ProjectID.String()) {
			return bizerror.ErrForbidden
		}
		if !origin.Manual || origin.ApprovalStatus != ApprovalStatusPending {
			return bizerror.ErrApprovalStateInvalid
		}

		if err := tx.Model(&AttendanceRecord{}).Where(&AttendanceRecord{ID: id}).
			Update("approval_status", status).Error; err != nil {
			return err
		}

		updated = origin
		updated.ApprovalStatus = status

		_, err := audit.LogAuditFunc(audit.Entry{
			EntityType: "AttendanceRecord", EntityId: id,
			Category: audit.CategoryField, Action: action,
			ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
			ProjectID: origin.ProjectID,
			Changes: audit.ChangeSummary{
				Before: map[string]interface{}{"approvalStatus": origin.ApprovalStatus},
				After:  map[string]interface{}{"approvalStatus": status},
			},
		}, tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}
	return &updated, nil
}
