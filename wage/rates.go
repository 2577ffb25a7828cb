package wage

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
	rateIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	UpsertWageRateFunc = UpsertWageRate
)

type WageRateUpserting struct {
	ProjectID types.ID `json:"projectId" binding:"required"`
	SkillType string   `json:"skillType" binding:"required,lte=64"`
	Category  string   `json:"category" binding:"required,lte=64"`

	HourlyRate float64 `json:"hourlyRate" binding:"required,gt=0"`
}

func UpsertWageRate(u WageRateUpserting, sec *session.Context) (*WageRate, error) {
	if sec == nil || !sec.Perms.HasRole(domain.ProjectRoleManager+"_"+u.ProjectID.String()) {
		return nil, bizerror.ErrForbidden
	}

	var result WageRate
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		var origin WageRate
		err := tx.Where(&WageRate{ProjectID: u.ProjectID, SkillType: u.SkillType, Category: u.Category}).
			First(&origin).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return err
		}

		if gorm.IsRecordNotFoundError(err) {
			result = WageRate{
				ID:        idgen.NextID(rateIdWorker),
				ProjectID: u.ProjectID, SkillType: u.SkillType, Category: u.Category,
				HourlyRate: u.HourlyRate,
				UpdateTime: types.CurrentTimestamp(),
			}
			if err := tx.Create(&result).Error; err != nil {
				return err
			}
			_, err := audit.LogAuditFunc(audit.Entry{
				EntityType: "WageRate", EntityId: result.ID,
				Category: audit.CategoryPayroll, Action: audit.ActionCreate,
				ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
				ProjectID: u.ProjectID,
				Changes:   audit.ChangeSummary{After: audit.Image(&result)},
			}, tx)
			return err
		}

		result = origin
		result.HourlyRate = u.HourlyRate
		result.UpdateTime = types.CurrentTimestamp()
		if err := tx.Save(&result).Error; err != nil {
			return err
		}
		_, err = audit.LogAuditFunc(audit.Entry{
			EntityType: "WageRate", EntityId: origin.ID,
			Category: audit.CategoryPayroll, Action: audit.ActionUpdate,
			ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
			ProjectID: u.ProjectID,
			Changes:   audit.ChangeSummary{Before: audit.Image(&origin), After: audit.Image(&result)},
		}, tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}
	return &result, nil
}
