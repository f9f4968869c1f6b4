package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPersistentDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := OpenPersistentDB(path)
	require.NoError(t, err)
	defer db.Close()

	ruleNames, subs, err := LoadPersisted(db)
	require.NoError(t, err)
	assert.Empty(t, ruleNames)
	assert.Empty(t, subs)
}

func TestPersistGlobalRule_IsIdempotent(t *testing.T) {
	db, err := OpenPersistentDB(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, PersistGlobalRule(db, "seed-global"))
	require.NoError(t, PersistGlobalRule(db, "seed-global"))

	ruleNames, _, err := LoadPersisted(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed-global"}, ruleNames)
}

func TestPersistGlobalSubstitution_UpsertsLatestValue(t *testing.T) {
	db, err := OpenPersistentDB(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, PersistGlobalSubstitution(db, "flag", "1"))
	require.NoError(t, PersistGlobalSubstitution(db, "flag", "2"))

	_, subs, err := LoadPersisted(db)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"flag": "2"}, subs)
}

func TestLoadPersisted_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := OpenPersistentDB(path)
	require.NoError(t, err)
	require.NoError(t, PersistGlobalRule(db, "seed-global"))
	require.NoError(t, PersistGlobalSubstitution(db, "flag", "1"))
	require.NoError(t, db.Close())

	reopened, err := OpenPersistentDB(path)
	require.NoError(t, err)
	defer reopened.Close()

	ruleNames, subs, err := LoadPersisted(reopened)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed-global"}, ruleNames)
	assert.Equal(t, map[string]string{"flag": "1"}, subs)
}
