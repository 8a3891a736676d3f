package service

import (
	"sync"
	"testing"

	"go-inventory-api/internal/apperror"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assertLedgerConsistent checks the core invariant: the stored product
// quantity equals the new_quantity of the latest ledger row.
func assertLedgerConsistent(t *testing.T, db *gorm.DB, productID uuid.UUID) {
	t.Helper()

	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)

	product, err := productRepo.FindByID(productID)
	require.NoError(t, err)

	latest, err := movementRepo.FindLatestByProduct(productID)
	require.NoError(t, err)

	assert.Equal(t, latest.NewQuantity, product.QuantityInStock,
		"product quantity must match the latest ledger row")
}

func TestRecordMovementStockIn(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-001", 10)

	result, err := ledger.RecordMovement(product.ID, &MovementRequest{
		Type:     model.MovementStockIn,
		Quantity: 5,
	}, adminActor())
	require.NoError(t, err)

	assert.Equal(t, 10, result.PreviousQuantity)
	assert.Equal(t, 15, result.NewQuantity)

	assertLedgerConsistent(t, db, product.ID)
}

func TestRecordMovementStockOut(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-002", 10)

	result, err := ledger.RecordMovement(product.ID, &MovementRequest{
		Type:     model.MovementStockOut,
		Quantity: 4,
	}, adminActor())
	require.NoError(t, err)

	assert.Equal(t, 10, result.PreviousQuantity)
	assert.Equal(t, 6, result.NewQuantity)

	assertLedgerConsistent(t, db, product.ID)
}

func TestRecordMovementInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-003", 5)

	_, err := ledger.RecordMovement(product.ID, &MovementRequest{
		Type:     model.MovementStockOut,
		Quantity: 6,
	}, adminActor())
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	// A rejected movement leaves quantity and ledger untouched.
	productRepo := repository.NewProductRepo(db)
	reloaded, err := productRepo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.QuantityInStock)

	movements, err := repository.NewMovementRepo(db).FindByProduct(product.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "only the INITIAL movement should exist")
}

func TestRecordMovementAdjustmentIsAbsolute(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-004", 50)

	result, err := ledger.RecordMovement(product.ID, &MovementRequest{
		Type:     model.MovementAdjustment,
		Quantity: 7,
		Notes:    "Cycle count correction",
	}, adminActor())
	require.NoError(t, err)

	assert.Equal(t, 50, result.PreviousQuantity)
	assert.Equal(t, 7, result.NewQuantity, "adjustment sets the absolute quantity, not a delta")

	assertLedgerConsistent(t, db, product.ID)
}

func TestRecordMovementInvalidType(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-005", 5)

	_, err := ledger.RecordMovement(product.ID, &MovementRequest{
		Type:     "transfer",
		Quantity: 1,
	}, adminActor())
	assert.ErrorIs(t, err, apperror.ErrInvalidMovementType)
}

func TestRecordMovementNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-006", 5)

	for _, qty := range []int{0, -3} {
		_, err := ledger.RecordMovement(product.ID, &MovementRequest{
			Type:     model.MovementStockIn,
			Quantity: qty,
		}, adminActor())
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
	}
}

func TestRecordMovementProductNotFound(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(t, db)

	_, err := ledger.RecordMovement(uuid.New(), &MovementRequest{
		Type:     model.MovementStockIn,
		Quantity: 1,
	}, adminActor())
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestRecordMovementInactiveProduct(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-007", 5)
	require.NoError(t, catalog.DeleteProduct(product.ID, adminActor()))

	_, err := ledger.RecordMovement(product.ID, &MovementRequest{
		Type:     model.MovementStockIn,
		Quantity: 1,
	}, adminActor())
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestGuardedUpdateDetectsStaleQuantity(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)

	product := createProduct(t, catalog, "WIDGET-008", 20)

	// A write guarded on a quantity that no longer matches must touch
	// zero rows; the ledger turns that into a retryable conflict.
	productRepo := repository.NewProductRepo(db)
	rows, err := productRepo.UpdateQuantityGuarded(db, product.ID, 19, 9, "tester")
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = productRepo.UpdateQuantityGuarded(db, product.ID, 20, 9, "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestConcurrentStockOutOnlyOneSucceeds(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-009", 15)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.RecordMovement(product.ID, &MovementRequest{
				Type:     model.MovementStockOut,
				Quantity: 10,
			}, adminActor())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one of two concurrent stock-outs may succeed")

	reloaded, err := repository.NewProductRepo(db).FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.QuantityInStock)
}

func TestGetMovementsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	catalog := newCatalog(t, db)
	ledger := newLedger(t, db)

	product := createProduct(t, catalog, "WIDGET-010", 0)

	_, err := ledger.RecordMovement(product.ID, &MovementRequest{Type: model.MovementStockIn, Quantity: 10}, adminActor())
	require.NoError(t, err)
	_, err = ledger.RecordMovement(product.ID, &MovementRequest{Type: model.MovementStockOut, Quantity: 3}, adminActor())
	require.NoError(t, err)

	movements, err := ledger.GetMovements(product.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)

	// Newest first: each row's previous must equal the next row's new.
	assert.Equal(t, movements[1].NewQuantity, movements[0].PreviousQuantity)
	assert.Equal(t, 7, movements[0].NewQuantity)
}

func TestGetMovementsUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(t, db)

	_, err := ledger.GetMovements(uuid.New())
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}
