package orderstore

import (
	"context"
	"testing"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func insertProduct(t *testing.T, repo *Repository, name string, price int64) int64 {
	var id int64
	err := repo.db.QueryRow(
		`INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id`, name, price).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestInsertOrder_ReturnsGeneratedID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order, err := repo.InsertOrder(ctx, 2500)
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, int64(2500), order.Total)
	assert.False(t, order.CreatedAt.IsZero())

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, fetched.Total)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrderByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInsertOrderLines_Batch(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	kopiID := insertProduct(t, repo, "Kopi", 1000)
	tehID := insertProduct(t, repo, "Teh", 500)

	order, err := repo.InsertOrder(ctx, 2500)
	require.NoError(t, err)

	lines := []domain.OrderLine{
		{OrderID: order.ID, ProductID: kopiID, Quantity: 2, Price: 1000},
		{OrderID: order.ID, ProductID: tehID, Quantity: 1, Price: 500},
	}
	require.NoError(t, repo.InsertOrderLines(ctx, order.ID, lines))

	n, err := repo.CountOrderLines(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertOrderLines_EmptyBatchIsNoOp(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order, err := repo.InsertOrder(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, repo.InsertOrderLines(ctx, order.ID, nil))

	n, err := repo.CountOrderLines(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOrphanedHeader_HasZeroLines(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// the header insert succeeding while the line insert never happens is a
	// state the schema must allow, not reject
	order, err := repo.InsertOrder(ctx, 1000)
	require.NoError(t, err)

	n, err := repo.CountOrderLines(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListOrders_FilterAndPagination(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := repo.InsertOrder(ctx, int64(1000*(i+1)))
		require.NoError(t, err)
	}

	page1, total, err := repo.ListOrders(ctx, ReportFilter{Page: 1, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page1, 5)

	// newest first
	assert.Greater(t, page1[0].ID, page1[4].ID)

	page2, total, err := repo.ListOrders(ctx, ReportFilter{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, page2, 2)

	// a window in the far past matches nothing
	past, total, err := repo.ListOrders(ctx, ReportFilter{
		From:    time.Now().AddDate(-1, 0, 0),
		To:      time.Now().AddDate(0, 0, -1),
		Page:    1,
		PerPage: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, past)
}

func TestSummarySince(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.InsertOrder(ctx, 1000)
	require.NoError(t, err)
	_, err = repo.InsertOrder(ctx, 1500)
	require.NoError(t, err)

	got, err := repo.SummarySince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, got.OrderCount)
	assert.Equal(t, int64(2500), got.Revenue)

	empty, err := repo.SummarySince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.OrderCount)
	assert.Equal(t, int64(0), empty.Revenue)
}

func TestSoldLinesSince_NormalizesDeletedProductName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	kopiID := insertProduct(t, repo, "Kopi", 1000)
	ghostID := insertProduct(t, repo, "Hantu", 700)

	order, err := repo.InsertOrder(ctx, 2700)
	require.NoError(t, err)
	require.NoError(t, repo.InsertOrderLines(ctx, order.ID, []domain.OrderLine{
		{OrderID: order.ID, ProductID: kopiID, Quantity: 2, Price: 1000},
		{OrderID: order.ID, ProductID: ghostID, Quantity: 1, Price: 700},
	}))

	// deleting the product must not break historical reporting
	_, err = repo.db.Exec(`DELETE FROM products WHERE id = $1`, ghostID)
	require.NoError(t, err)

	lines, err := repo.SoldLinesSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byID := map[int64]domain.SoldLine{}
	for _, l := range lines {
		byID[l.ProductID] = l
	}
	assert.Equal(t, "Kopi", byID[kopiID].ProductName)
	assert.Equal(t, deletedProductLabel, byID[ghostID].ProductName)
	assert.Equal(t, 1, byID[ghostID].Quantity)
}
