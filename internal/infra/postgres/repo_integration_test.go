//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barretobrock/ff-relay/internal/infra/postgres"
	"github.com/barretobrock/ff-relay/internal/relay"
	"github.com/barretobrock/ff-relay/testutil/testdb"
)

var testDB *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = testdb.NewTestDB(ctx)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close(ctx)
	if code != 0 {
		panic("tests failed")
	}
}

func setupTest(t *testing.T) context.Context {
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))
	return ctx
}

func TestClaimRepository_AdmitOnce(t *testing.T) {
	ctx := setupTest(t)
	repo := postgres.NewClaimRepository(testDB.Pool)

	admitted, err := repo.Admit(ctx, relay.EventCreated, "200")
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = repo.Admit(ctx, relay.EventCreated, "200")
	require.NoError(t, err)
	assert.False(t, admitted, "replay of the same delivery must not be admitted")
}

func TestClaimRepository_KindsAreIndependent(t *testing.T) {
	ctx := setupTest(t)
	repo := postgres.NewClaimRepository(testDB.Pool)

	admitted, err := repo.Admit(ctx, relay.EventCreated, "200")
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = repo.Admit(ctx, relay.EventUpdated, "200")
	require.NoError(t, err)
	assert.True(t, admitted, "update claims are tracked separately from create claims")
}

func TestClaimRepository_ConcurrentAdmit(t *testing.T) {
	ctx := setupTest(t)
	repo := postgres.NewClaimRepository(testDB.Pool)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted, err := repo.Admit(ctx, relay.EventCreated, "777")
			if err != nil {
				errs <- err
				return
			}
			results <- admitted
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	admittedCount := 0
	for admitted := range results {
		if admitted {
			admittedCount++
		}
	}
	assert.Equal(t, 1, admittedCount, "exactly one concurrent delivery wins the claim")
}

func TestLinkRepository_PutGet(t *testing.T) {
	ctx := setupTest(t)
	repo := postgres.NewLinkRepository(testDB.Pool)

	_, found, err := repo.Get(ctx, "200", "601", "rent-p50")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Put(ctx, "200", "601", "rent-p50", "901"))

	derivedID, found, err := repo.Get(ctx, "200", "601", "rent-p50")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "901", derivedID)
}

func TestLinkRepository_KeyedByTag(t *testing.T) {
	ctx := setupTest(t)
	repo := postgres.NewLinkRepository(testDB.Pool)

	require.NoError(t, repo.Put(ctx, "200", "601", "rent-p50", "901"))
	require.NoError(t, repo.Put(ctx, "200", "601", "utilities-p25", "902"))

	derivedID, found, err := repo.Get(ctx, "200", "601", "rent-p50")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "901", derivedID)

	derivedID, found, err = repo.Get(ctx, "200", "601", "utilities-p25")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "902", derivedID)
}

func TestLinkRepository_PutOverwrites(t *testing.T) {
	ctx := setupTest(t)
	repo := postgres.NewLinkRepository(testDB.Pool)

	require.NoError(t, repo.Put(ctx, "200", "601", "rent-p50", "901"))
	require.NoError(t, repo.Put(ctx, "200", "601", "rent-p50", "955"))

	derivedID, found, err := repo.Get(ctx, "200", "601", "rent-p50")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "955", derivedID)
}
