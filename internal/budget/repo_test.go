package budget

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
)

func setupBudgetTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS event_budgets (
  id TEXT PRIMARY KEY,
  party_id TEXT NOT NULL,
  event_id TEXT NOT NULL,
  allocated INTEGER NOT NULL,
  spent INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_event_budgets_party_event
  ON event_budgets (party_id, event_id);`
	require.NoError(t, db.Exec(schema).Error)

	return db
}

func seedBudget(t *testing.T, db *gorm.DB, partyID, eventID uuid.UUID, allocated, spent int64) *models.EventBudget {
	t.Helper()
	budget := &models.EventBudget{
		ID:        uuid.New(),
		PartyID:   partyID,
		EventID:   eventID,
		Allocated: allocated,
		Spent:     spent,
	}
	require.NoError(t, db.Create(budget).Error)
	return budget
}

func TestRepositoryFindMissingReturnsNil(t *testing.T) {
	repo := NewRepository(setupBudgetTestDB(t))

	budget, err := repo.Find(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, budget)
}

func TestRepositoryDebitWithinBalance(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewRepository(db)

	partyID, eventID := uuid.New(), uuid.New()
	seedBudget(t, db, partyID, eventID, 10000, 2000)

	updated, err := repo.Debit(context.Background(), partyID, eventID, 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	budget, err := repo.Find(context.Background(), partyID, eventID)
	require.NoError(t, err)
	require.NotNil(t, budget)
	assert.Equal(t, int64(5000), budget.Spent)
	assert.Equal(t, int64(5000), budget.Remaining())
}

func TestRepositoryDebitRefusesOverspend(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewRepository(db)

	partyID, eventID := uuid.New(), uuid.New()
	seedBudget(t, db, partyID, eventID, 10000, 9500)

	updated, err := repo.Debit(context.Background(), partyID, eventID, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	budget, err := repo.Find(context.Background(), partyID, eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(9500), budget.Spent, "refused debit must not change spent")
}

func TestRepositoryDebitExactRemaining(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewRepository(db)

	partyID, eventID := uuid.New(), uuid.New()
	seedBudget(t, db, partyID, eventID, 10000, 4000)

	updated, err := repo.Debit(context.Background(), partyID, eventID, 6000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	budget, err := repo.Find(context.Background(), partyID, eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), budget.Remaining())
}

func TestRepositoryListByEvent(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewRepository(db)

	eventID := uuid.New()
	seedBudget(t, db, uuid.New(), eventID, 10000, 0)
	seedBudget(t, db, uuid.New(), eventID, 10000, 500)
	seedBudget(t, db, uuid.New(), uuid.New(), 10000, 0)

	budgets, err := repo.ListByEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Len(t, budgets, 2)
}

func TestRepositoryUniquePartyEventPair(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewRepository(db)

	partyID, eventID := uuid.New(), uuid.New()
	seedBudget(t, db, partyID, eventID, 10000, 0)

	err := repo.Create(context.Background(), &models.EventBudget{
		ID:        uuid.New(),
		PartyID:   partyID,
		EventID:   eventID,
		Allocated: 10000,
	})
	require.Error(t, err)
}
