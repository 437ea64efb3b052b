package contractupdate

import "time"

type CreateRequest struct {
	Description string     `json:"description" validate:"max=2000"`
	UpdateDate  *time.Time `json:"update_date"`
}

// QuantityPatch edits one snapshot row. At least one field must be set.
type QuantityPatch struct {
	Quantity *float64 `json:"updated_contract_quantity" validate:"omitempty,gte=0"`
	Sum      *float64 `json:"updated_contract_sum"`
}
