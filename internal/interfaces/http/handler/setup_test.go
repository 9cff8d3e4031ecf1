package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appsettlement "github.com/comercia/backend/internal/application/settlement"
	apptreasury "github.com/comercia/backend/internal/application/treasury"
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/infrastructure/cache"
	"github.com/comercia/backend/internal/infrastructure/persistence"
	"github.com/comercia/backend/internal/infrastructure/persistence/models"
	"github.com/comercia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// mockInventoryService is a testify mock of the inventory collaborator
type mockInventoryService struct {
	mock.Mock
}

func (m *mockInventoryService) RestoreStock(ctx context.Context, variantID uuid.UUID, quantity int, reason string) (int, error) {
	args := m.Called(ctx, variantID, quantity, reason)
	return args.Int(0), args.Error(1)
}

// testEnv wires the whole stack against an in-memory SQLite database
type testEnv struct {
	db        *gorm.DB
	engine    *gin.Engine
	inventory *mockInventoryService
	actor     uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AccountModel{},
		&models.MovementModel{},
		&models.ReceivableModel{},
		&models.PayableModel{},
		&models.PaymentRecordModel{},
		&models.SaleModel{},
	))

	logger := zap.NewNop()
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })
	idemConfig := shared.DefaultIdempotencyConfig()

	treasuryScope := persistence.NewGormTreasuryTransactionScope(db)
	settlementScope := persistence.NewGormSettlementTransactionScope(db)
	accounts := persistence.NewGormAccountRepository(db)
	movements := persistence.NewGormMovementRepository(db)

	ledgerService := apptreasury.NewLedgerService(treasuryScope, accounts, movements, logger)
	transferService := apptreasury.NewTransferService(treasuryScope, idempotency, idemConfig, logger)
	settlementService := appsettlement.NewSettlementService(settlementScope, idempotency, idemConfig, logger)

	inventory := &mockInventoryService{}
	reversalService := appsettlement.NewReversalService(settlementScope, inventory, logger)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewTreasuryHandler(ledgerService, transferService).RegisterRoutes(api)
	NewSettlementHandler(settlementService, reversalService).RegisterRoutes(api)

	return &testEnv{
		db:        db,
		engine:    engine,
		inventory: inventory,
		actor:     uuid.New(),
	}
}

// do sends a JSON request through the engine and returns the recorder
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", e.actor.String())

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response envelope and returns its data as a map
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if resp.Data == nil {
		return nil
	}
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "response data is not an object")
	return data
}

// decodeError unmarshals a response envelope and returns its error info
func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

// createAccount provisions an account through the API and returns its ID
func (e *testEnv) createAccount(t *testing.T, name, kind, methodKey string, openingBalance int64) uuid.UUID {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/accounts", CreateAccountRequest{
		Name:           name,
		Kind:           kind,
		MethodKey:      methodKey,
		OpeningBalance: openingBalance,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)
	id, err := uuid.Parse(data["id"].(string))
	require.NoError(t, err)
	return id
}

// insertSale seeds a sale row directly
func (e *testEnv) insertSale(t *testing.T, status string) uuid.UUID {
	t.Helper()

	saleID := uuid.New()
	require.NoError(t, e.db.Exec(
		"INSERT INTO sales (id, status, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)",
		saleID, status).Error)
	return saleID
}
