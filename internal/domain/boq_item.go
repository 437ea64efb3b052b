package domain

import (
	"time"

	"boqtracker/internal/pkg/money"
)

// BOQItem is one line of the bill of quantities. SectionNumber is the
// business key every other layer joins on.
type BOQItem struct {
	ID            int64   `json:"id" gorm:"primaryKey"`
	SectionNumber string  `json:"section_number" gorm:"type:varchar(64);not null;uniqueIndex:idx_boq_items_section_number"`
	Description   string  `json:"description" gorm:"type:text"`
	Unit          string  `json:"unit" gorm:"type:varchar(32)"`
	Price         float64 `json:"price" gorm:"not null;default:0"`

	OriginalContractQuantity float64 `json:"original_contract_quantity" gorm:"not null;default:0"`
	TotalContractSum         float64 `json:"total_contract_sum" gorm:"not null;default:0"`

	EstimatedQuantity float64 `json:"estimated_quantity" gorm:"not null;default:0"`
	TotalEstimate     float64 `json:"total_estimate" gorm:"not null;default:0"`

	QuantitySubmitted float64 `json:"quantity_submitted" gorm:"not null;default:0"`
	TotalSubmitted    float64 `json:"total_submitted" gorm:"not null;default:0"`

	InternalQuantity float64 `json:"internal_quantity" gorm:"not null;default:0"`
	InternalTotal    float64 `json:"internal_total" gorm:"not null;default:0"`

	ApprovedByManagerQuantity float64 `json:"approved_by_manager_quantity" gorm:"not null;default:0"`
	TotalApprovedByManager    float64 `json:"total_approved_by_manager" gorm:"not null;default:0"`

	ApprovedSignedQuantity float64 `json:"approved_signed_quantity" gorm:"not null;default:0"`
	ApprovedSignedTotal    float64 `json:"approved_signed_total" gorm:"not null;default:0"`

	// Grouping attributes used by the structure/system/subsection summaries.
	Structure  string `json:"structure,omitempty" gorm:"type:varchar(128);index"`
	System     string `json:"system,omitempty" gorm:"type:varchar(128);index"`
	Subsection string `json:"subsection,omitempty" gorm:"type:varchar(128);index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BOQItem) TableName() string { return "boq_items" }

// Rollup is the four quantities the aggregation engine maintains from
// concentration entries.
type Rollup struct {
	Estimated         float64 `json:"estimated"`
	Submitted         float64 `json:"submitted"`
	Internal          float64 `json:"internal"`
	ApprovedByManager float64 `json:"approved_by_manager"`
}

// ApplyRollup writes the quantities and re-derives every total.
func (b *BOQItem) ApplyRollup(r Rollup) {
	b.EstimatedQuantity = r.Estimated
	b.QuantitySubmitted = r.Submitted
	b.InternalQuantity = r.Internal
	b.ApprovedByManagerQuantity = r.ApprovedByManager
	b.RecalculateTotals()
}

// RecalculateTotals keeps every total equal to its quantity × price.
func (b *BOQItem) RecalculateTotals() {
	b.TotalContractSum = money.Total(b.OriginalContractQuantity, b.Price)
	b.TotalEstimate = money.Total(b.EstimatedQuantity, b.Price)
	b.TotalSubmitted = money.Total(b.QuantitySubmitted, b.Price)
	b.InternalTotal = money.Total(b.InternalQuantity, b.Price)
	b.TotalApprovedByManager = money.Total(b.ApprovedByManagerQuantity, b.Price)
	b.ApprovedSignedTotal = money.Total(b.ApprovedSignedQuantity, b.Price)
}
