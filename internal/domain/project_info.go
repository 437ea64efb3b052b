package domain

import "time"

// ProjectInfo is a singleton row; its fields are denormalized onto every
// concentration sheet.
type ProjectInfo struct {
	ID                     int64     `json:"id" gorm:"primaryKey"`
	ProjectName            string    `json:"project_name" gorm:"type:varchar(255)"`
	ContractorInChargeName string    `json:"contractor_in_charge_name" gorm:"type:varchar(255)"`
	ContractNo             string    `json:"contract_no" gorm:"type:varchar(128)"`
	DeveloperName          string    `json:"developer_name" gorm:"type:varchar(255)"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (ProjectInfo) TableName() string { return "project_info" }

// ApplyTo copies the non-empty fields onto sheet and reports whether anything changed.
func (p *ProjectInfo) ApplyTo(sheet *ConcentrationSheet) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&sheet.ProjectName, p.ProjectName)
	set(&sheet.ContractorInChargeName, p.ContractorInChargeName)
	set(&sheet.ContractNo, p.ContractNo)
	set(&sheet.DeveloperName, p.DeveloperName)
	return changed
}
