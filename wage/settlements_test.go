package wage_test

import (
	"testing"
	"time"

	"groundwork/attendance"
	"groundwork/audit"
	"groundwork/bizerror"
	"groundwork/domain"
	"groundwork/persistence"
	"groundwork/testinfra"
	"groundwork/wage"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("groundwork")
	*testDatabase = db
	Expect(db.DS.GormDB().AutoMigrate(&domain.Project{}, &attendance.AttendanceRecord{},
		&attendance.AttendanceSession{}, &wage.WageRate{}, &wage.LabourRequest{},
		&wage.LabourRequestParticipant{}, &audit.AuditLogRecord{}).Error).To(BeNil())

	persistence.ActiveDataSourceManager = db.DS

	wage.ComputeWageFunc = wage.ComputeWage
	wage.CheckCategoryCapacityFunc = wage.CheckCategoryCapacity
	wage.UpsertWageRateFunc = wage.UpsertWageRate
	wage.NowFunc = time.Now
	audit.LogAuditFunc = audit.LogAudit
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func buildProject(db *gorm.DB, id types.ID, checkoutTime string) {
	Expect(db.Create(&domain.Project{
		ID: id, Name: "project " + id.String(), OrgID: 1,
		CheckinTime: "06:00", CheckoutTime: checkoutTime,
		CreateTime: types.CurrentTimestamp(),
	}).Error).To(BeNil())
}

func clock(hour, minute int) types.Timestamp {
	return types.TimestampOfDate(2025, 3, 10, hour, minute, 0, 0, time.Local)
}

func TestComputeWage(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should cap hours by the project work window", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 100, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		// checked in 06:00, checked out 23:00: the 18:00 window end wins
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(6, 0), CheckoutTime: clock(23, 0),
			SkillType: "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(Equal(12.0))
		Expect(settlement.HourlyRate).To(Equal(100.0))
		Expect(settlement.TotalAmount).To(Equal(1200.0))
		Expect(settlement.ReadyForPayment).To(BeTrue())
		Expect(settlement.SkillType).To(Equal("mason"))
	})

	t.Run("should cap hours by the daily ceiling when the window is later", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "23:30")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 100, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(6, 0), CheckoutTime: clock(23, 0),
			SkillType: "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(Equal(16.0))
		Expect(settlement.TotalAmount).To(Equal(1600.0))
	})

	t.Run("should use the actual checkout when it is the earliest", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 150, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0), CheckoutTime: clock(16, 30),
			SkillType: "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(Equal(8.5))
		Expect(settlement.TotalAmount).To(Equal(1275.0))
	})

	t.Run("should sum sessions when checkout is not finalized", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 200, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0),
			SkillType:   "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceSession{ID: 1, AttendanceID: 1000,
			BeginTime: clock(8, 0), EndTime: clock(10, 0)}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceSession{ID: 2, AttendanceID: 1000,
			BeginTime: clock(11, 0), EndTime: clock(13, 0)}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceSession{ID: 3, AttendanceID: 1000,
			BeginTime: clock(16, 0)}).Error).To(BeNil())

		wage.NowFunc = func() time.Time {
			return clock(17, 0).Time()
		}

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(Equal(5.0))
		Expect(settlement.TotalAmount).To(Equal(1000.0))
		Expect(settlement.ReadyForPayment).To(BeFalse())
	})

	t.Run("should clamp session ends to the work window", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 100, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0),
			SkillType:   "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())
		// ends after the window, clamped to 18:00
		Expect(db.Create(&attendance.AttendanceSession{ID: 1, AttendanceID: 1000,
			BeginTime: clock(17, 0), EndTime: clock(19, 30)}).Error).To(BeNil())
		// entirely after the window, contributes nothing
		Expect(db.Create(&attendance.AttendanceSession{ID: 2, AttendanceID: 1000,
			BeginTime: clock(19, 0), EndTime: clock(20, 0)}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(Equal(1.0))
	})

	t.Run("should surface a failed sessions read instead of a zero settlement", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 100, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0),
			SkillType:   "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		db.DropTable(&attendance.AttendanceSession{})

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(settlement).To(BeNil())
		Expect(err).ToNot(BeNil())
	})

	t.Run("should hold unapproved manual records at zero", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		// no project and no rate rows: a pending manual record needs neither
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0), CheckoutTime: clock(17, 0),
			Manual: true, ApprovalStatus: attendance.ApprovalStatusPending,
			SkillType: "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(BeZero())
		Expect(settlement.TotalAmount).To(BeZero())
		Expect(settlement.ReadyForPayment).To(BeFalse())
		Expect(settlement.Message).To(Equal("manual attendance is not approved"))
	})

	t.Run("should pay approved manual records like automatic ones", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&wage.WageRate{ID: 1, ProjectID: 100, SkillType: "mason", Category: "skilled",
			HourlyRate: 100, UpdateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0), CheckoutTime: clock(17, 0),
			Manual: true, ApprovalStatus: attendance.ApprovalStatusApproved,
			SkillType: "mason", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(settlement.WorkedHours).To(Equal(9.0))
		Expect(settlement.ReadyForPayment).To(BeTrue())
	})

	t.Run("should fail hard when no wage rate is configured", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		buildProject(db, 100, "18:00")
		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0), CheckoutTime: clock(17, 0),
			SkillType: "welder", Category: "skilled", CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(settlement).To(BeNil())
		rateErr, ok := err.(*bizerror.ErrRateNotConfigured)
		Expect(ok).To(BeTrue())
		Expect(rateErr.SkillType).To(Equal("welder"))
	})

	t.Run("should answer not found for unknown records", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		settlement, err := wage.ComputeWage(404404, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(settlement).To(BeNil())
		Expect(gorm.IsRecordNotFoundError(err)).To(BeTrue())
	})

	t.Run("should refuse callers without a view on the project", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		Expect(db.Create(&attendance.AttendanceRecord{
			ID: 1000, LabourID: 500, ProjectID: 100, Date: "2025-03-10",
			CheckinTime: clock(8, 0), CreateTime: types.CurrentTimestamp(),
		}).Error).To(BeNil())

		settlement, err := wage.ComputeWage(1000, testinfra.BuildSecCtx(10, "manager_999"))
		Expect(settlement).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestCheckCategoryCapacity(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should refuse when approvals already meet the requested count", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		Expect(db.Create(&wage.LabourRequest{ID: 900, ProjectID: 100, Category: "electrician",
			RequestedCount: 2, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&wage.LabourRequestParticipant{RequestID: 900, LabourID: 1,
			Status: wage.ParticipantStatusApproved}).Error).To(BeNil())
		Expect(db.Create(&wage.LabourRequestParticipant{RequestID: 900, LabourID: 2,
			Status: wage.ParticipantStatusApproved}).Error).To(BeNil())
		Expect(db.Create(&wage.LabourRequestParticipant{RequestID: 900, LabourID: 3,
			Status: wage.ParticipantStatusPending}).Error).To(BeNil())

		check, err := wage.CheckCategoryCapacity(100, "electrician", 3, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(*check).To(Equal(wage.CapacityCheck{
			RequestID: 900, ProjectID: 100, Category: "electrician",
			RequestedCount: 2, ApprovedCount: 2, PendingCount: 1,
			Allowed: false, ParticipationStatus: wage.ParticipantStatusPending,
		}))
	})

	t.Run("should allow while approved count is below the requested count", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		Expect(db.Create(&wage.LabourRequest{ID: 900, ProjectID: 100, Category: "electrician",
			RequestedCount: 3, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&wage.LabourRequestParticipant{RequestID: 900, LabourID: 1,
			Status: wage.ParticipantStatusApproved}).Error).To(BeNil())

		check, err := wage.CheckCategoryCapacity(100, "electrician", 7, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(check.Allowed).To(BeTrue())
		Expect(check.ApprovedCount).To(Equal(1))
		Expect(check.ParticipationStatus).To(BeEmpty())
	})

	t.Run("should count against the latest request only", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		Expect(db.Create(&wage.LabourRequest{ID: 900, ProjectID: 100, Category: "electrician",
			RequestedCount: 1,
			CreateTime:     types.TimestampOfDate(2025, 3, 1, 9, 0, 0, 0, time.Local)}).Error).To(BeNil())
		Expect(db.Create(&wage.LabourRequestParticipant{RequestID: 900, LabourID: 1,
			Status: wage.ParticipantStatusApproved}).Error).To(BeNil())
		Expect(db.Create(&wage.LabourRequest{ID: 901, ProjectID: 100, Category: "electrician",
			RequestedCount: 5,
			CreateTime:     types.TimestampOfDate(2025, 3, 8, 9, 0, 0, 0, time.Local)}).Error).To(BeNil())

		check, err := wage.CheckCategoryCapacity(100, "electrician", 1, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(err).To(BeNil())
		Expect(check.RequestID).To(Equal(types.ID(901)))
		Expect(check.RequestedCount).To(Equal(5))
		Expect(check.ApprovedCount).To(BeZero())
		Expect(check.Allowed).To(BeTrue())
	})

	t.Run("should fail when the category was never requested", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		check, err := wage.CheckCategoryCapacity(100, "plumber", 1, testinfra.BuildSecCtx(10, "manager_100"))
		Expect(check).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrCapacityNotRequested))
	})

	t.Run("should refuse callers without a view on the project", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		check, err := wage.CheckCategoryCapacity(100, "electrician", 1, testinfra.BuildSecCtx(10, "manager_999"))
		Expect(check).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}
