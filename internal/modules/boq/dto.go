package boq

import "boqtracker/internal/domain"

// CreateRequest carries the contract-side fields of a new item. The rollup
// quantities start at zero and are owned by the aggregation engine.
type CreateRequest struct {
	SectionNumber            string  `json:"section_number" validate:"required,max=64"`
	Description              string  `json:"description"`
	Unit                     string  `json:"unit" validate:"max=32"`
	Price                    float64 `json:"price" validate:"gte=0"`
	OriginalContractQuantity float64 `json:"original_contract_quantity" validate:"gte=0"`
	ApprovedSignedQuantity   float64 `json:"approved_signed_quantity"`

	Structure  string `json:"structure" validate:"max=128"`
	System     string `json:"system" validate:"max=128"`
	Subsection string `json:"subsection" validate:"max=128"`
}

func (r CreateRequest) toItem(section string) *domain.BOQItem {
	item := &domain.BOQItem{
		SectionNumber:            section,
		Description:              r.Description,
		Unit:                     r.Unit,
		Price:                    r.Price,
		OriginalContractQuantity: r.OriginalContractQuantity,
		ApprovedSignedQuantity:   r.ApprovedSignedQuantity,
		Structure:                r.Structure,
		System:                   r.System,
		Subsection:               r.Subsection,
	}
	item.RecalculateTotals()
	return item
}

// UpdateRequest edits an item. The section number is fixed once created
// and the rollup quantities belong to the aggregation engine.
type UpdateRequest struct {
	Description              *string  `json:"description"`
	Unit                     *string  `json:"unit" validate:"omitempty,max=32"`
	Price                    *float64 `json:"price" validate:"omitempty,gte=0"`
	OriginalContractQuantity *float64 `json:"original_contract_quantity" validate:"omitempty,gte=0"`
	ApprovedSignedQuantity   *float64 `json:"approved_signed_quantity"`
	Structure                *string  `json:"structure" validate:"omitempty,max=128"`
	System                   *string  `json:"system" validate:"omitempty,max=128"`
	Subsection               *string  `json:"subsection" validate:"omitempty,max=128"`
}

func (r UpdateRequest) apply(item *domain.BOQItem) {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setNum := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&item.Description, r.Description)
	setStr(&item.Unit, r.Unit)
	setNum(&item.Price, r.Price)
	setNum(&item.OriginalContractQuantity, r.OriginalContractQuantity)
	setNum(&item.ApprovedSignedQuantity, r.ApprovedSignedQuantity)
	setStr(&item.Structure, r.Structure)
	setStr(&item.System, r.System)
	setStr(&item.Subsection, r.Subsection)
	item.RecalculateTotals()
}

type ListRequest struct {
	Structure  string `form:"structure"`
	System     string `form:"system"`
	Subsection string `form:"subsection"`
	Search     string `form:"search"`
}

type RecordOutcome struct {
	Index         int             `json:"index"`
	SectionNumber string          `json:"section_number"`
	Item          *domain.BOQItem `json:"item,omitempty"`
	Error         string          `json:"error,omitempty"`
	Err           error           `json:"-"`
}

type ImportResult struct {
	Records []RecordOutcome `json:"records"`
	Created int             `json:"created"`
	Failed  int             `json:"failed"`
}
