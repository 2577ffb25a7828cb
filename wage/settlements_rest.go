package wage

import (
	"errors"
	"net/http"

	"groundwork/bizerror"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathWageSettlements = "/v1/wage-settlements"
	PathLabourCapacity  = "/v1/labour-capacity"
	PathWageRates       = "/v1/wage-rates"
)

func RegisterWageRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWageSettlements, middleWares...)
	g.GET(":attendanceId", handleComputeWage)

	c := r.Group(PathLabourCapacity, middleWares...)
	c.GET("", handleCheckCapacity)

	w := r.Group(PathWageRates, middleWares...)
	w.PUT("", handleUpsertWageRate)
}

func handleComputeWage(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("attendanceId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid attendance id '" + c.Param("attendanceId") + "'")})
	}

	settlement, err := ComputeWageFunc(parsedId, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, settlement)
}

type capacityQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	Category  string   `form:"category" binding:"required"`
	LabourID  types.ID `form:"labourId"`
}

func handleCheckCapacity(c *gin.Context) {
	query := capacityQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	check, err := CheckCategoryCapacityFunc(query.ProjectID, query.Category, query.LabourID, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, check)
}

func handleUpsertWageRate(c *gin.Context) {
	body := WageRateUpserting{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	rate, err := UpsertWageRateFunc(body, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, rate)
}
