package fieldsync

import (
	"errors"
	"net/http"

	"groundwork/bizerror"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathFieldActions   = "/v1/field-actions"
	PathGeofenceChecks = "/v1/geofence-checks"
)

func RegisterFieldActionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathFieldActions, middleWares...)
	g.POST("", handleSubmitAction)
	g.GET(":id", handleDetailAction)

	c := r.Group(PathGeofenceChecks, middleWares...)
	c.POST("", handleGeofenceCheck)
}

func handleSubmitAction(c *gin.Context) {
	submission := ActionSubmission{}
	if err := c.ShouldBindBodyWith(&submission, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := ApplyActionFunc(&submission, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleDetailAction(c *gin.Context) {
	actionId := c.Param("id")
	if actionId == "" {
		panic(&bizerror.ErrBadParam{Cause: errors.New("action id is required")})
	}

	sec := session.FindSecurityContext(c)
	if sec == nil {
		panic(bizerror.ErrUnauthenticated)
	}

	var record ActionRecord
	if err := persistence.ActiveDataSourceManager.GormDB().
		Where(&ActionRecord{ActionID: actionId}).First(&record).Error; err != nil {
		panic(err)
	}

	if record.ActorId != sec.Identity.ID && !sec.Perms.HasProjectViewPerm(record.ProjectID) {
		panic(bizerror.ErrForbidden)
	}
	c.JSON(http.StatusOK, &record)
}

type GeofenceCheckBody struct {
	ProjectID types.ID `json:"projectId" binding:"required"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// handleGeofenceCheck preflight for field clients: an outside coordinate is a
// regular response here, not an error.
func handleGeofenceCheck(c *gin.Context) {
	body := GeofenceCheckBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	sec := session.FindSecurityContext(c)
	if sec == nil {
		panic(bizerror.ErrUnauthenticated)
	}

	result, err := CheckProjectLocationFunc(body.ProjectID, body.Latitude, body.Longitude, sec)
	if err != nil {
		var outsideErr *bizerror.ErrOutsideGeofence
		if errors.As(err, &outsideErr) {
			c.JSON(http.StatusOK, result)
			return
		}
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
