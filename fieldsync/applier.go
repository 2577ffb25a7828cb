package fieldsync

import (
	"encoding/json"
	"errors"

	"groundwork/attendance"
	"groundwork/bizerror"
	"groundwork/domain"
	"groundwork/material"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	ApplyActionFunc           = ApplyAction
	CheckActiveMembershipFunc = CheckActiveMembership

	payloadValidator = validator.New()
)

func init() {
	// payload structs carry gin-style binding tags
	payloadValidator.SetTagName("binding")
}

// actionHandler performs one action's mutation inside the applier
// transaction and returns the resulting entity id.
type actionHandler func(payload json.RawMessage, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error)

// Adding an action type is an additive change: a new constant and one entry
// here.
var actionHandlers = map[ActionType]actionHandler{
	ActionCreateMaterialRequest: applyCreateMaterialRequest,
	ActionUpdateMaterialRequest: applyUpdateMaterialRequest,
	ActionDeleteMaterialRequest: applyDeleteMaterialRequest,
	ActionManualAttendance:      applyManualAttendance,
}

var locationSensitiveActions = map[ActionType]bool{
	ActionCreateMaterialRequest: true,
	ActionManualAttendance:      true,
}

// ApplyAction resolves one submitted field action: idempotency short-circuit,
// authorization, geofence gate, mutation + audit in one transaction, then the
// ledger record. Business rejections are recorded so identical retries fail
// fast; infrastructure failures are not recorded and stay safely retryable
// with the same action id.
func ApplyAction(sub *ActionSubmission, sec *session.Context) (*ActionResult, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	existing, found, err := CheckIdempotencyFunc(sub.ClientActionID)
	if err != nil {
		return nil, err
	}
	if found {
		return &ActionResult{
			Success:    existing.Outcome == SyncStatusApplied,
			EntityID:   existing.EntityID,
			SyncStatus: SyncStatusDuplicate,
			Error:      existing.ErrorReason,
		}, nil
	}

	handler, ok := actionHandlers[sub.ActionType]
	if !ok {
		return nil, bizerror.ErrUnknownActionType
	}

	entityId, applyErr := func() (types.ID, error) {
		if err := CheckActiveMembershipFunc(sub.ProjectID, sec.Identity.ID); err != nil {
			return 0, err
		}

		if locationSensitiveActions[sub.ActionType] {
			var coordinate struct {
				Latitude  *float64 `json:"latitude"`
				Longitude *float64 `json:"longitude"`
			}
			if err := json.Unmarshal(sub.Payload, &coordinate); err != nil {
				return 0, &bizerror.ErrBadParam{Cause: err}
			}
			// (0,0) is a valid coordinate, so absence must be explicit
			if coordinate.Latitude == nil || coordinate.Longitude == nil {
				return 0, &bizerror.ErrBadParam{Cause: errors.New("latitude and longitude are required")}
			}
			if _, err := CheckProjectLocationFunc(sub.ProjectID, *coordinate.Latitude, *coordinate.Longitude, sec); err != nil {
				return 0, err
			}
		}

		var id types.ID
		err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
			var err error
			id, err = handler(sub.Payload, sub.ProjectID, sec, tx)
			return err
		})
		return id, err
	}()

	record := ActionRecord{
		ActionID:   sub.ClientActionID,
		ActionType: sub.ActionType,
		ProjectID:  sub.ProjectID,
		ActorId:    sec.Identity.ID,
		ActorRole:  sec.Identity.Role,
		Payload:    string(sub.Payload),
		Timestamp:  types.CurrentTimestamp(),
	}
	db := persistence.ActiveDataSourceManager.GormDB()

	if applyErr == nil {
		record.Outcome = SyncStatusApplied
		record.EntityID = entityId
		if err := recordOutcome(&record, db); err != nil {
			// The mutation is committed but the dedup record is lost:
			// surfaced as retryable rather than silently swallowed.
			return nil, err
		}
		return &ActionResult{Success: true, EntityID: entityId, SyncStatus: SyncStatusApplied}, nil
	}

	if !isBusinessRejection(applyErr) {
		return nil, applyErr
	}

	record.Outcome = SyncStatusRejected
	record.ErrorReason = applyErr.Error()
	if err := recordOutcome(&record, db); err != nil {
		logrus.WithField("actionId", sub.ClientActionID).
			Warnf("failed to record rejected outcome: %v", err)
	}
	return &ActionResult{Success: false, SyncStatus: SyncStatusRejected, Error: applyErr.Error()}, nil
}

// isBusinessRejection separates deterministic rejections, which are recorded
// in the ledger, from transient infrastructure failures, which are not.
func isBusinessRejection(err error) bool {
	if _, ok := err.(bizerror.BizError); ok {
		return true
	}
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return true
	}
	return errors.Is(err, bizerror.ErrForbidden) ||
		errors.Is(err, bizerror.ErrMemberNotActive) ||
		errors.Is(err, bizerror.ErrUnknownActionType) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// CheckActiveMembership the actor must hold an ACTIVE relationship to the
// target project for any mutating field action.
func CheckActiveMembership(projectId, actorId types.ID) error {
	var member domain.ProjectMember
	err := persistence.ActiveDataSourceManager.GormDB().
		Where(&domain.ProjectMember{ProjectId: projectId, MemberId: actorId}).First(&member).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return bizerror.ErrMemberNotActive
		}
		return err
	}
	if member.Status != domain.MemberStatusActive {
		return bizerror.ErrMemberNotActive
	}
	return nil
}

func applyCreateMaterialRequest(payload json.RawMessage, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	creation := material.MaterialRequestCreation{}
	if err := bindPayload(payload, &creation); err != nil {
		return 0, err
	}
	return material.CreateMaterialRequest(creation, projectId, sec, tx)
}

func applyUpdateMaterialRequest(payload json.RawMessage, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	updating := material.MaterialRequestUpdating{}
	if err := bindPayload(payload, &updating); err != nil {
		return 0, err
	}
	return material.UpdateMaterialRequest(updating, projectId, sec, tx)
}

func applyDeleteMaterialRequest(payload json.RawMessage, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	deletion := material.MaterialRequestDeletion{}
	if err := bindPayload(payload, &deletion); err != nil {
		return 0, err
	}
	return material.DeleteMaterialRequest(deletion, projectId, sec, tx)
}

func applyManualAttendance(payload json.RawMessage, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	creation := attendance.ManualAttendanceCreation{}
	if err := bindPayload(payload, &creation); err != nil {
		return 0, err
	}
	return attendance.CreateManualAttendance(creation, projectId, sec, tx)
}

func bindPayload(payload json.RawMessage, target interface{}) error {
	if err := json.Unmarshal(payload, target); err != nil {
		return &bizerror.ErrBadParam{Cause: err}
	}
	if err := payloadValidator.Struct(target); err != nil {
		return &bizerror.ErrBadParam{Cause: err}
	}
	return nil
}
