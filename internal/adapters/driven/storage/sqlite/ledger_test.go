package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// setupTestLedger creates a ledger in a temporary directory.
func setupTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := NewLedger(filepath.Join(t.TempDir(), "audit.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func readChanges(t *testing.T, l *Ledger) []changeRow {
	t.Helper()

	var rows []changeRow
	require.NoError(t, l.db.Select(&rows, `SELECT id, zoho_id, run_id, before, after, ts FROM changes ORDER BY id`))
	return rows
}

func TestNewLedger_CreatesSchema(t *testing.T) {
	ledger := setupTestLedger(t)

	var count int
	err := ledger.db.Get(&count, `SELECT COUNT(*) FROM changes`)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewLedger_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.sqlite")

	ledger, err := NewLedger(path)
	require.NoError(t, err)
	defer ledger.Close()

	assert.Equal(t, path, ledger.Path())
	assert.FileExists(t, path)
}

func TestNewLedger_RequiresPath(t *testing.T) {
	_, err := NewLedger("")

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestLedger_Append(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()
	ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.FixedZone("NZDT", 13*3600))

	err := ledger.Append(ctx, domain.MutationRecord{
		RunID:     "run-1",
		RemoteID:  "p1",
		Before:    json.RawMessage(`{"recurring_invoice_id":"p1","card":{"card_id":"c1"}}`),
		After:     json.RawMessage(`{"recurring_invoice_id":"p1"}`),
		Timestamp: ts,
	})
	require.NoError(t, err)

	rows := readChanges(t, ledger)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ZohoID)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.JSONEq(t, `{"recurring_invoice_id":"p1","card":{"card_id":"c1"}}`, rows[0].Before.String)
	assert.JSONEq(t, `{"recurring_invoice_id":"p1"}`, rows[0].After.String)
	assert.Equal(t, "2026-10-18T20:30:00Z", rows[0].TS)
}

func TestLedger_AppendIsAppendOnly(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Append(ctx, domain.MutationRecord{RunID: "run-1", RemoteID: "p1"}))
	}

	rows := readChanges(t, ledger)
	require.Len(t, rows, 3)
	assert.Less(t, rows[0].ID, rows[1].ID)
	assert.Less(t, rows[1].ID, rows[2].ID)
	assert.False(t, rows[0].Before.Valid, "empty before-state is stored as NULL")
	assert.NotEmpty(t, rows[0].TS, "zero timestamp defaults to now")
}

func TestLedger_AppendRequiresRemoteID(t *testing.T) {
	ledger := setupTestLedger(t)

	err := ledger.Append(context.Background(), domain.MutationRecord{RunID: "run-1"})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Empty(t, readChanges(t, ledger))
}

func TestLedger_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.sqlite")

	first, err := NewLedger(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(context.Background(), domain.MutationRecord{RunID: "run-1", RemoteID: "p1"}))
	require.NoError(t, first.Close())

	second, err := NewLedger(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Append(context.Background(), domain.MutationRecord{RunID: "run-2", RemoteID: "p2"}))

	rows := readChanges(t, second)
	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, "run-2", rows[1].RunID)
}
