package wage

import (
	"math"
	"time"

	"groundwork/attendance"
	"groundwork/bizerror"
	"groundwork/domain"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// MaxDailyWork hard ceiling on a single day's payable span, counted from
// check-in. Guards against clock skew inflating pay.
const MaxDailyWork = 16 * time.Hour

var (
	ComputeWageFunc           = ComputeWage
	CheckCategoryCapacityFunc = CheckCategoryCapacity

	NowFunc = time.Now
)

// ComputeWage derives payable hours and amount for one attendance record.
func ComputeWage(attendanceId types.ID, sec *session.Context) (*Settlement, error) {
	db := persistence.ActiveDataSourceManager.GormDB()

	var record attendance.AttendanceRecord
	if err := db.Where(&attendance.AttendanceRecord{ID: attendanceId}).First(&record).Error; err != nil {
		return nil, err
	}
	if sec == nil || !sec.Perms.HasProjectViewPerm(record.ProjectID) {
		return nil, bizerror.ErrForbidden
	}

	settlement := Settlement{
		AttendanceID: record.ID,
		LabourID:     record.LabourID,
		ProjectID:    record.ProjectID,
		Date:         record.Date,
		SkillType:    record.SkillType,
		Category:     record.Category,
	}

	// Manual records are not payable until approved. Not an error: the
	// settlement is simply zero and not ready.
	if record.Manual && record.ApprovalStatus != attendance.ApprovalStatusApproved {
		settlement.Message = "manual attendance is not approved"
		return &settlement, nil
	}

	var project domain.Project
	if err := db.Where(&domain.Project{ID: record.ProjectID}).First(&project).Error; err != nil {
		return nil, err
	}

	hours, finalized, err := computeWorkedHours(&record, &project, db)
	if err != nil {
		return nil, err
	}
	if hours < 0 {
		hours = 0
	}

	var rate WageRate
	err = db.Where(&WageRate{ProjectID: record.ProjectID, SkillType: record.SkillType, Category: record.Category}).
		First(&rate).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, &bizerror.ErrRateNotConfigured{
				ProjectID: record.ProjectID.String(), SkillType: record.SkillType, Category: record.Category}
		}
		return nil, err
	}

	settlement.WorkedHours = round2(hours)
	settlement.HourlyRate = rate.HourlyRate
	settlement.TotalAmount = round2(settlement.WorkedHours * rate.HourlyRate)
	settlement.ReadyForPayment = finalized
	return &settlement, nil
}

// computeWorkedHours payable hours after capping, plus whether checkout is finalized.
func computeWorkedHours(record *attendance.AttendanceRecord, project *domain.Project, db *gorm.DB) (float64, bool, error) {
	checkin := record.CheckinTime.Time()
	effectiveCheckout := effectiveCheckoutTime(record, project)

	if !record.CheckoutTime.Time().IsZero() {
		return effectiveCheckout.Sub(checkin).Hours(), true, nil
	}

	// no final checkout: sum per-session durations, each end clamped to the
	// effective checkout, an open session's end clamped to now as well
	sessions := []attendance.AttendanceSession{}
	if err := db.Where("attendance_id = ?", record.ID).Find(&sessions).Error; err != nil {
		return 0, false, err
	}

	total := 0.0
	for _, s := range sessions {
		end := s.EndTime.Time()
		if end.IsZero() {
			end = NowFunc()
		}
		if end.After(effectiveCheckout) {
			end = effectiveCheckout
		}
		span := end.Sub(s.BeginTime.Time()).Hours()
		if span > 0 {
			total += span
		}
	}
	return total, false, nil
}

// effectiveCheckoutTime min(actual checkout, project's configured checkout on
// the attendance date, check-in + MaxDailyWork).
func effectiveCheckoutTime(record *attendance.AttendanceRecord, project *domain.Project) time.Time {
	effective := record.CheckinTime.Time().Add(MaxDailyWork)

	if windowEnd, ok := clockOnDate(record.Date, project.CheckoutTime); ok && windowEnd.Before(effective) {
		effective = windowEnd
	}

	actual := record.CheckoutTime.Time()
	if !actual.IsZero() && actual.Before(effective) {
		effective = actual
	}
	return effective
}

// clockOnDate combines an attendance date "2006-01-02" with a wall clock
// "15:04". Malformed configuration yields no constraint.
func clockOnDate(date, clock string) (time.Time, bool) {
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CheckCategoryCapacity advisory read of the labour request capacity for a
// category: it does not reserve a slot.
func CheckCategoryCapacity(projectId types.ID, category string, labourId types.ID, sec *session.Context) (*CapacityCheck, error) {
	if sec == nil || !sec.Perms.HasProjectViewPerm(projectId) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB()

	var request LabourRequest
	err := db.Where(&LabourRequest{ProjectID: projectId, Category: category}).
		Order("create_time DESC").First(&request).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrCapacityNotRequested
		}
		return nil, err
	}

	check := CapacityCheck{
		RequestID: request.ID, ProjectID: projectId, Category: category,
		RequestedCount: request.RequestedCount,
	}

	participants := []LabourRequestParticipant{}
	if err := db.Where("request_id = ?", request.ID).Find(&participants).Error; err != nil {
		return nil, err
	}
	for _, p := range participants {
		switch p.Status {
		case ParticipantStatusApproved:
			check.ApprovedCount++
		case ParticipantStatusPending:
			check.PendingCount++
		}
		if p.LabourID == labourId {
			check.ParticipationStatus = p.Status
		}
	}

	check.Allowed = check.ApprovedCount < check.RequestedCount
	return &check, nil
}
