// Package tests contains test cases for models, repository, and business flow packages to avoid circular imports
package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icct-platform/registration-backend/app/services"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	testingutil "github.com/icct-platform/registration-backend/testing"
)

func newIdentifierService(testDB *testingutil.TestDB) services.IdentifierService {
	repo := repository.NewSequenceCounterRepository(testDB.DB, 3000)
	return services.NewIdentifierService(repo, services.IdentifierServiceConfig{
		Prefix:       "ICCT",
		PadWidth:     3,
		MaxRetries:   3,
		RetryBackoff: 10 * time.Millisecond,
	})
}

func TestIdentifierServiceSequentialAllocation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		svc := newIdentifierService(testDB)
		ctx := testingutil.CreateTestContext()

		for i := 1; i <= 3; i++ {
			displayID, value, err := svc.AllocateNext(ctx, models.SequenceTeam)
			require.NoError(t, err)
			assert.Equal(t, int64(i), value)
			assert.Equal(t, fmt.Sprintf("ICCT-%03d", i), displayID)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceConcurrentAllocation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		svc := newIdentifierService(testDB)
		ctx := testingutil.CreateTestContext()

		// Consume the first three sequentially
		for i := 1; i <= 3; i++ {
			_, _, err := svc.AllocateNext(ctx, models.SequenceTeam)
			require.NoError(t, err)
		}

		// Five concurrent allocations must produce exactly ICCT-004..ICCT-008
		const workers = 5
		results := make(chan string, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				displayID, _, err := svc.AllocateNext(ctx, models.SequenceTeam)
				assert.NoError(t, err)
				results <- displayID
			}()
		}
		wg.Wait()
		close(results)

		got := make(map[string]bool, workers)
		for id := range results {
			got[id] = true
		}

		assert.Len(t, got, workers)
		for i := 4; i <= 8; i++ {
			assert.True(t, got[fmt.Sprintf("ICCT-%03d", i)], "missing ICCT-%03d", i)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceUniquenessUnderLoad(t *testing.T) {
	for _, workers := range []int{1, 2, 10, 100} {
		workers := workers
		t.Run(fmt.Sprintf("workers_%d", workers), func(t *testing.T) {
			err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
				svc := newIdentifierService(testDB)
				ctx := testingutil.CreateTestContext()

				values := make(chan int64, workers)
				var wg sync.WaitGroup
				for i := 0; i < workers; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, value, err := svc.AllocateNext(ctx, models.SequenceTeam)
						assert.NoError(t, err)
						values <- value
					}()
				}
				wg.Wait()
				close(values)

				seen := make(map[int64]bool, workers)
				var max int64
				for v := range values {
					assert.False(t, seen[v], "value %d issued twice", v)
					seen[v] = true
					if v > max {
						max = v
					}
				}

				// No gaps: exactly 1..N were issued
				assert.Len(t, seen, workers)
				assert.Equal(t, int64(workers), max)

				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestIdentifierServiceCurrentValue(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		svc := newIdentifierService(testDB)
		ctx := testingutil.CreateTestContext()

		// Unprovisioned counter reads as zero without creating the row
		current, err := svc.CurrentValue(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(0), current)

		_, _, err = svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		_, _, err = svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)

		// Reading must not consume a value
		for i := 0; i < 3; i++ {
			current, err = svc.CurrentValue(ctx, models.SequenceTeam)
			require.NoError(t, err)
			assert.Equal(t, int64(2), current)
		}

		displayID, value, err := svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(3), value)
		assert.Equal(t, "ICCT-003", displayID)

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceNoIncrementOnFailure(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		svc := newIdentifierService(testDB)
		ctx := testingutil.CreateTestContext()

		_, _, err := svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err = svc.AllocateNext(canceled, models.SequenceTeam)
		require.Error(t, err)

		// The failed attempt must not have consumed a value
		current, err := svc.CurrentValue(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(1), current)

		displayID, _, err := svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, "ICCT-002", displayID)

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceSurvivesRestart(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()

		first := newIdentifierService(testDB)
		for i := 1; i <= 4; i++ {
			_, value, err := first.AllocateNext(ctx, models.SequenceTeam)
			require.NoError(t, err)
			assert.Equal(t, int64(i), value)
		}

		// A fresh service over the same database continues where the old
		// one stopped; the counter state lives in the row, not in memory
		second := newIdentifierService(testDB)
		displayID, value, err := second.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(5), value)
		assert.Equal(t, "ICCT-005", displayID)

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceResync(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		svc := newIdentifierService(testDB)
		ctx := testingutil.CreateTestContext()

		require.NoError(t, svc.Resync(ctx, models.SequenceTeam, 50))

		current, err := svc.CurrentValue(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(50), current)

		displayID, value, err := svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(51), value)
		assert.Equal(t, "ICCT-051", displayID)

		// Negative targets are rejected
		err = svc.Resync(ctx, models.SequenceTeam, -1)
		assert.Error(t, err)

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceSequenceIndependence(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		svc := newIdentifierService(testDB)
		ctx := testingutil.CreateTestContext()

		_, teamValue, err := svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(1), teamValue)

		_, otherValue, err := svc.AllocateNext(ctx, "invoice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), otherValue)

		_, teamValue, err = svc.AllocateNext(ctx, models.SequenceTeam)
		require.NoError(t, err)
		assert.Equal(t, int64(2), teamValue)

		otherCurrent, err := svc.CurrentValue(ctx, "invoice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), otherCurrent)

		return nil
	})
	require.NoError(t, err)
}

func TestIdentifierServiceFormatWidening(t *testing.T) {
	repo := repository.NewSequenceCounterRepository(nil, 0)
	svc := services.NewIdentifierService(repo, services.IdentifierServiceConfig{
		Prefix:   "ICCT",
		PadWidth: 3,
	})

	assert.Equal(t, "ICCT-001", svc.Format(1))
	assert.Equal(t, "ICCT-042", svc.Format(42))
	assert.Equal(t, "ICCT-999", svc.Format(999))
	// The pad width is a minimum, not a ceiling
	assert.Equal(t, "ICCT-1000", svc.Format(1000))
	assert.Equal(t, "ICCT-12345", svc.Format(12345))
}

func TestPlayerDisplayID(t *testing.T) {
	assert.Equal(t, "ICCT-042-P01", services.PlayerDisplayID("ICCT-042", 1))
	assert.Equal(t, "ICCT-042-P11", services.PlayerDisplayID("ICCT-042", 11))
	assert.Equal(t, "ICCT-1000-P03", services.PlayerDisplayID("ICCT-1000", 3))
}
