package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqtracker/internal/domain"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/boq"))
	assert.True(t, IsPostgres("postgresql://localhost/boq"))
	assert.False(t, IsPostgres("boq.db"))
	assert.False(t, IsPostgres("file:test?mode=memory"))
}

func TestMigrateCreatesUniqueSectionNumber(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Connect(dsn, Options{Silent: true, MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}

	require.NoError(t, db.Create(&domain.BOQItem{SectionNumber: "A-100"}).Error)
	err = db.Create(&domain.BOQItem{SectionNumber: "A-100"}).Error
	assert.Error(t, err)
}
