package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"boqtracker/internal/domain"
)

// Store bundles every ledger repository over one gorm handle. A Store built
// inside Transaction shares the transaction across all repositories.
type Store struct {
	db *gorm.DB

	BOQItems             *BOQItemRepository
	ConcentrationSheets  *ConcentrationSheetRepository
	ConcentrationEntries *ConcentrationEntryRepository
	CalculationSheets    *CalculationSheetRepository
	CalculationEntries   *CalculationEntryRepository
	ContractUpdates      *ContractUpdateRepository
	QuantityUpdates      *QuantityUpdateRepository
	ProjectInfo          *ProjectInfoRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:                   db,
		BOQItems:             NewBOQItemRepository(db),
		ConcentrationSheets:  NewConcentrationSheetRepository(db),
		ConcentrationEntries: NewConcentrationEntryRepository(db),
		CalculationSheets:    NewCalculationSheetRepository(db),
		CalculationEntries:   NewCalculationEntryRepository(db),
		ContractUpdates:      NewContractUpdateRepository(db),
		QuantityUpdates:      NewQuantityUpdateRepository(db),
		ProjectInfo:          NewProjectInfoRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in one unit of work. Any error from fn rolls back
// everything fn wrote.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// translate maps driver errors onto the domain taxonomy.
func translate(op, entity string, key any, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(entity, key)
	case isUniqueConstraintError(err):
		return domain.Duplicate(entity, key)
	default:
		return domain.Persistence(op, err)
	}
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
