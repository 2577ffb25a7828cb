package material

import (
	"errors"
	"strconv"

	"groundwork/audit"
	"groundwork/bizerror"
	"groundwork/idgen"
	"groundwork/persistence"
	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

type MaterialRequest struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID   types.ID `json:"projectId" gorm:"index"`
	RequestedBy types.ID `json:"requestedBy"`

	MaterialName string  `json:"materialName"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Note         string  `json:"note"`

	Status string `json:"status"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

func (r *MaterialRequest) TableName() string {
	return "material_requests"
}

type MaterialRequestCreation struct {
	MaterialName string  `json:"materialName" binding:"required,lte=255"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit" binding:"required,lte=32"`
	Note         string  `json:"note" binding:"lte=1000"`
}

type MaterialRequestUpdating struct {
	RequestID types.ID `json:"requestId" binding:"required"`

	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit" binding:"required,lte=32"`
	Note     string  `json:"note" binding:"lte=1000"`
}

type MaterialRequestDeletion struct {
	RequestID types.ID `json:"requestId" binding:"required"`
}

var (
	requestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryMaterialRequestsFunc = QueryMaterialRequests
)

// CreateMaterialRequest runs inside the applier transaction: the row and its
// audit entry commit together.
func CreateMaterialRequest(c MaterialRequestCreation, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	record := MaterialRequest{
		ID:          idgen.NextID(requestIdWorker),
		ProjectID:   projectId,
		RequestedBy: sec.Identity.ID,

		MaterialName: c.MaterialName,
		Quantity:     c.Quantity,
		Unit:         c.Unit,
		Note:         c.Note,

		Status:     RequestStatusPending,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}

	_, err := audit.LogAuditFunc(audit.Entry{
		EntityType: "MaterialRequest", EntityId: record.ID,
		Category: audit.CategoryField, Action: audit.ActionCreate,
		ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
		ProjectID: projectId,
		Changes:   audit.ChangeSummary{After: audit.Image(&record)},
	}, tx)
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

func UpdateMaterialRequest(u MaterialRequestUpdating, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	var origin MaterialRequest
	if err := tx.Where(&MaterialRequest{ID: u.RequestID, ProjectID: projectId}).First(&origin).Error; err != nil {
		return 0, err
	}

	db := tx.Model(&MaterialRequest{}).Where(&MaterialRequest{ID: u.RequestID}).
		Update(map[string]interface{}{"quantity": u.Quantity, "unit": u.Unit, "note": u.Note,
			"update_time": types.CurrentTimestamp()})
	if err := db.Error; err != nil {
		return 0, err
	}
	if db.RowsAffected != 1 {
		return 0, errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(db.RowsAffected, 10))
	}

	var updated MaterialRequest
	if err := tx.Where(&MaterialRequest{ID: u.RequestID}).First(&updated).Error; err != nil {
		return 0, err
	}

	_, err := audit.LogAuditFunc(audit.Entry{
		EntityType: "MaterialRequest", EntityId: origin.ID,
		Category: audit.CategoryField, Action: audit.ActionUpdate,
		ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
		ProjectID: projectId,
		Changes:   audit.ChangeSummary{Before: audit.Image(&origin), After: audit.Image(&updated)},
	}, tx)
	if err != nil {
		return 0, err
	}
	return origin.ID, nil
}

func DeleteMaterialRequest(d MaterialRequestDeletion, projectId types.ID, sec *session.Context, tx *gorm.DB) (types.ID, error) {
	var origin MaterialRequest
	if err := tx.Where(&MaterialRequest{ID: d.RequestID, ProjectID: projectId}).First(&origin).Error; err != nil {
		return 0, err
	}

	if err := tx.Delete(MaterialRequest{}, "id = ?", d.RequestID).Error; err != nil {
		return 0, err
	}

	_, err := audit.LogAuditFunc(audit.Entry{
		EntityType: "MaterialRequest", EntityId: origin.ID,
		Category: audit.CategoryField, Action: audit.ActionDelete,
		ActorId: sec.Identity.ID, ActorRole: sec.Identity.Role,
		ProjectID: projectId,
		Changes:   audit.ChangeSummary{Before: audit.Image(&origin)},
	}, tx)
	if err != nil {
		return 0, err
	}
	return origin.ID, nil
}

var PathMaterialRequests = "/v1/material-requests"

type MaterialRequestQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	Status    string   `form:"status"`
}

func RegisterMaterialRequestsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathMaterialRequests, middleWares...)
	g.GET("", handleQueryMaterialRequests)
}

func handleQueryMaterialRequests(c *gin.Context) {
	query := MaterialRequestQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryMaterialRequestsFunc(query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(200, records)
}

func QueryMaterialRequests(q MaterialRequestQuery, sec *session.Context) ([]MaterialRequest, error) {
	if sec == nil || !sec.Perms.HasProjectViewPerm(q.ProjectID) {
		return nil, bizerror.ErrForbidden
	}

	records := []MaterialRequest{}
	db := persistence.ActiveDataSourceManager.GormDB().Where("project_id = ?", q.ProjectID)
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if err := db.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
