package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	ErrUnknownActionType    = errors.New("unknown action type")
	ErrMemberNotActive      = errors.New("actor is not an active member of project")
	ErrApprovalStateInvalid = errors.New("approval state invalid")
	ErrCapacityNotRequested = errors.New("no labour request for category")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrOutsideGeofence is raised when a location-sensitive action reports a
// coordinate outside the project geo-boundary.
type ErrOutsideGeofence struct {
	GeofenceType   string  `json:"geofenceType"`
	DistanceMeters float64 `json:"distanceMeters"`
}

func (e *ErrOutsideGeofence) Error() string {
	return fmt.Sprintf("outside %s geofence, distance %.1f m", e.GeofenceType, e.DistanceMeters)
}
func (e *ErrOutsideGeofence) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusForbidden, Code: "geofence.outside", Message: e.Error(), Data: e}
}

// ErrRateNotConfigured is a hard failure: wage computation never falls back
// to a default rate.
type ErrRateNotConfigured struct {
	ProjectID string `json:"projectId"`
	SkillType string `json:"skillType"`
	Category  string `json:"category"`
}

func (e *ErrRateNotConfigured) Error() string {
	return fmt.Sprintf("no wage rate configured for project %s, skill %s, category %s",
		e.ProjectID, e.SkillType, e.Category)
}
func (e *ErrRateNotConfigured) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "wage.rate_not_configured", Message: e.Error(), Data: e}
}
