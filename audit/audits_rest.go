package audit

import (
	"net/http"

	"groundwork/bizerror"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathAuditLogs = "/v1/audit-logs"

var QueryAuditLogsFunc = QueryAuditLogs

type AuditLogQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	Category  string   `form:"category"`
	Since     string   `form:"since"`
	Until     string   `form:"until"`

	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

type AuditLogList struct {
	Records []AuditLogRecord `json:"records"`
	Total   int              `json:"total"`
}

func RegisterAuditLogsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAuditLogs, middleWares...)
	g.GET("", handleQueryAuditLogs)
}

func handleQueryAuditLogs(c *gin.Context) {
	query := AuditLogQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := QueryAuditLogsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func QueryAuditLogs(q AuditLogQuery, sec *session.Context) (*AuditLogList, error) {
	if sec == nil || !sec.Perms.HasProjectViewPerm(q.ProjectID) {
		return nil, bizerror.ErrForbidden
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 500 {
		q.PageSize = 50
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	dbQuery := db.Model(&AuditLogRecord{}).Where("project_id = ?", q.ProjectID)
	if q.Category != "" {
		dbQuery = dbQuery.Where("category = ?", q.Category)
	}
	if q.Since != "" {
		dbQuery = dbQuery.Where("timestamp >= ?", q.Since)
	}
	if q.Until != "" {
		dbQuery = dbQuery.Where("timestamp < ?", q.Until)
	}

	total := 0
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	records := []AuditLogRecord{}
	if err := dbQuery.Order("timestamp DESC").Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&records).Error; err != nil {
		return nil, err
	}

	return &AuditLogList{Records: records, Total: total}, nil
}
