package domain

import (
	"groundwork/geofence"

	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name  string   `json:"name" gorm:"unique_index:name_idx"`
	OrgID types.ID `json:"orgId"`

	// Working window for wage computation, local wall clock "HH:MM".
	CheckinTime  string `json:"checkinTime"`
	CheckoutTime string `json:"checkoutTime"`

	Geo geofence.Geometry `json:"geo" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	Creator    types.ID        `json:"creator"`
}

const ProjectRoleOwner = "owner"
const ProjectRoleManager = "manager"
const ProjectRoleSiteEngineer = "site-engineer"
const ProjectRolePurchaseManager = "purchase-manager"
const ProjectRoleQAEngineer = "qa-engineer"
const ProjectRoleLabour = "labour"
