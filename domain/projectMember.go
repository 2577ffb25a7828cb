package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	MemberStatusActive   = "ACTIVE"
	MemberStatusInactive = "INACTIVE"
)

type ProjectMember struct {
	ProjectId types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId  types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}
