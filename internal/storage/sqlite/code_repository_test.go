package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovatickets/validador/internal/domain"
	"github.com/inovatickets/validador/internal/storage/sqlite"
	"github.com/inovatickets/validador/internal/testutil"
)

func TestCodeRepository_FindCode(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewCodeRepository(db)

	event, sector, code := testutil.SeedSnapshot(t, db)

	other := domain.Event{ID: "ev-2", Name: "Second Night", Date: "2026-09-02"}
	testutil.InsertEvent(t, db, other)
	testutil.InsertSector(t, db, domain.Sector{ID: "sec-2", EventID: other.ID, Name: "Balcony", Active: true})
	// Same scanned value under a different event.
	testutil.InsertCode(t, db, domain.TicketCode{ID: "tc-2", EventID: other.ID, SectorID: "sec-2", Code: code.Code})

	t.Run("matches within the event", func(t *testing.T) {
		got, err := repo.FindCode(ctx, event.ID, code.Code)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, code.ID, got.ID)
		assert.Equal(t, sector.ID, got.SectorID)
		assert.False(t, got.Used)
	})

	t.Run("does not match across events", func(t *testing.T) {
		got, err := repo.FindCode(ctx, other.ID, code.Code)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "tc-2", got.ID)
	})

	t.Run("nil for unknown code", func(t *testing.T) {
		got, err := repo.FindCode(ctx, event.ID, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCodeRepository_MarkCodeUsed(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewCodeRepository(db)

	event, _, code := testutil.SeedSnapshot(t, db)
	usedAt := time.Date(2026, 9, 1, 20, 15, 0, 0, time.UTC)

	t.Run("first caller wins", func(t *testing.T) {
		won, err := repo.MarkCodeUsed(ctx, code.ID, usedAt, "gate-1")
		require.NoError(t, err)
		assert.True(t, won)

		got, err := repo.FindCode(ctx, event.ID, code.Code)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Used)
		require.NotNil(t, got.UsedAt)
		assert.True(t, got.UsedAt.Equal(usedAt))
		assert.Equal(t, "gate-1", got.ValidatedBy)
		assert.False(t, got.Synced, "a local validation must be queued for upload")
	})

	t.Run("second caller loses", func(t *testing.T) {
		won, err := repo.MarkCodeUsed(ctx, code.ID, usedAt.Add(time.Minute), "gate-2")
		require.NoError(t, err)
		assert.False(t, won)

		got, err := repo.FindCode(ctx, event.ID, code.Code)
		require.NoError(t, err)
		assert.Equal(t, "gate-1", got.ValidatedBy, "loser must not overwrite the original validation")
	})

	t.Run("false for unknown id", func(t *testing.T) {
		won, err := repo.MarkCodeUsed(ctx, "missing", usedAt, "gate-1")
		require.NoError(t, err)
		assert.False(t, won)
	})
}

func TestCodeRepository_MarkCodeUsed_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewCodeRepository(db)

	_, _, code := testutil.SeedSnapshot(t, db)

	const scanners = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.MarkCodeUsed(ctx, code.ID, time.Now(), "gate")
			if err != nil {
				t.Errorf("mark used: %v", err)
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent scan may win")
}

func TestCodeRepository_CountValidatedBy(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewCodeRepository(db)

	event, sector, _ := testutil.SeedSnapshot(t, db)
	now := time.Now().UTC()
	for i, operator := range []string{"gate-1", "gate-1", "gate-2"} {
		testutil.InsertCode(t, db, domain.TicketCode{
			ID:          "used-" + string(rune('a'+i)),
			EventID:     event.ID,
			SectorID:    sector.ID,
			Code:        "USED-" + string(rune('A'+i)),
			Used:        true,
			UsedAt:      &now,
			ValidatedBy: operator,
		})
	}

	n, err := repo.CountValidatedBy(ctx, event.ID, "gate-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountValidatedBy(ctx, event.ID, "gate-3")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
