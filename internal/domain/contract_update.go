package domain

import (
	"fmt"
	"time"
)

// ContractQuantityUpdate is an append-only, numbered re-baseline of contract
// quantities. Only its rows may change after creation.
type ContractQuantityUpdate struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UpdateIndex int       `json:"update_index" gorm:"not null;uniqueIndex:idx_contract_updates_index"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	UpdateDate  time.Time `json:"update_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ContractQuantityUpdate) TableName() string { return "contract_quantity_updates" }

// ContractUpdateName is the generated display name for an update index.
func ContractUpdateName(index int) string {
	return fmt.Sprintf("Contract Update %d", index)
}

type BOQItemQuantityUpdate struct {
	ID                      int64     `json:"id" gorm:"primaryKey"`
	BOQItemID               int64     `json:"boq_item_id" gorm:"not null;uniqueIndex:idx_item_quantity_updates_pair,priority:1"`
	ContractUpdateID        int64     `json:"contract_update_id" gorm:"not null;uniqueIndex:idx_item_quantity_updates_pair,priority:2;index"`
	UpdatedContractQuantity float64   `json:"updated_contract_quantity" gorm:"not null;default:0"`
	UpdatedContractSum      float64   `json:"updated_contract_sum" gorm:"not null;default:0"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (BOQItemQuantityUpdate) TableName() string { return "boq_item_quantity_updates" }

// LatestContractQuantity is what every view surfaces as the current
// contract quantity of an item. FromUpdate is false when no update exists
// and the values fall back to the original contract.
type LatestContractQuantity struct {
	BOQItemID        int64   `json:"boq_item_id"`
	Quantity         float64 `json:"quantity"`
	Sum              float64 `json:"sum"`
	FromUpdate       bool    `json:"from_update"`
	ContractUpdateID int64   `json:"contract_update_id,omitempty"`
	UpdateIndex      int     `json:"update_index,omitempty"`
}
