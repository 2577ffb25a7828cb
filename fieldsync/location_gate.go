package fieldsync

import (
	"errors"

	"groundwork/audit"
	"groundwork/bizerror"
	"groundwork/domain"
	"groundwork/geofence"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var CheckProjectLocationFunc = CheckProjectLocation

// CheckProjectLocation validates a reported coordinate against the project
// geo-boundary. An outside result writes a SECURITY audit entry with the
// coordinate and computed distance, independent of whether the caller
// ultimately proceeds, and returns ErrOutsideGeofence.
func CheckProjectLocation(projectId types.ID, lat, lng float64, sec *session.Context) (*geofence.Result, error) {
	if !geofence.ValidCoordinate(lat, lng) {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("coordinate out of range")}
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	var project domain.Project
	if err := db.Where(&domain.Project{ID: projectId}).First(&project).Error; err != nil {
		return nil, err
	}

	result := geofence.Validate(project.Geo, lat, lng)
	if result.Diagnostic != "" {
		logrus.WithField("projectId", projectId).
			Warnf("geofence check fell open: %s", result.Diagnostic)
	}

	if !result.Inside {
		audit.LogAuditBestEffort(audit.Entry{
			EntityType: "Project", EntityId: projectId,
			Category: audit.CategorySecurity, Action: audit.ActionReject,
			ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
			ProjectID: projectId, OrgID: project.OrgID,
			Changes: audit.ChangeSummary{After: map[string]interface{}{
				"latitude":       lat,
				"longitude":      lng,
				"geofenceType":   result.Kind,
				"distanceMeters": result.DistanceMeters,
			}},
		}, db)
		return &result, &bizerror.ErrOutsideGeofence{GeofenceType: result.Kind, DistanceMeters: result.DistanceMeters}
	}

	return &result, nil
}
