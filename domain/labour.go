package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Labour struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name      string `json:"name"`
	SkillType string `json:"skillType"`
	Category  string `json:"category"`
}
