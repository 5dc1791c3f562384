package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/testutil"
)

func TestAutoMigrate_CreatesAllTables(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, table := range []string{
		"world_state", "countries", "castles", "characters", "towns", "forces", "rankings",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, model.AutoMigrate(db))
	require.NoError(t, model.AutoMigrate(db))
}
