package attendance

import (
	"errors"
	"net/http"

	"groundwork/bizerror"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathAttendances = "/v1/attendances"

type ApprovalBody struct {
	Approved bool `json:"approved"`
}

func RegisterAttendancesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAttendances, middleWares...)
	g.POST(":id/approval", handleResolveApproval)
}

func handleResolveApproval(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	body := ApprovalBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	var record *AttendanceRecord
	if body.Approved {
		record, err = ApproveManualAttendanceFunc(parsedId, session.FindSecurityContext(c))
	} else {
		record, err = RejectManualAttendanceFunc(parsedId, session.FindSecurityContext(c))
	}
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
