package ledgerstore_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	"github.com/fondoapps/fondo_ledger_app/internal/repositories/ledgerstore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock DocumentStore ---
type MockDocumentStore struct {
	mock.Mock
}

var _ portsrepo.DocumentStore = (*MockDocumentStore)(nil)

func (m *MockDocumentStore) GetDocument(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentStore) SaveDocument(ctx context.Context, key string, doc []byte) error {
	args := m.Called(ctx, key, doc)
	return args.Error(0)
}

func (m *MockDocumentStore) DeleteDocument(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- Mock LedgerCache ---
type MockLedgerCache struct {
	mock.Mock
}

var _ portsrepo.LedgerCache = (*MockLedgerCache)(nil)

func (m *MockLedgerCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerCache) Set(ctx context.Context, key string, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockLedgerCache) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type LedgerStoreTestSuite struct {
	suite.Suite
	durable *MockDocumentStore
	cache   *MockLedgerCache
	store   *ledgerstore.Store

	scope domain.ScopeKey
}

func (s *LedgerStoreTestSuite) SetupTest() {
	s.durable = new(MockDocumentStore)
	s.cache = new(MockLedgerCache)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = ledgerstore.New(s.durable, s.cache, logger, 0)

	s.scope = domain.ScopeKey{CompanyID: "company-1", LegacyOwnerID: "owner-9"}
}

func (s *LedgerStoreTestSuite) validDocBytes(companyID string) []byte {
	doc := domain.NewLedgerDocument(companyID)
	doc.AppendMovement(domain.Movement{
		MovementID:  uuid.NewString(),
		AccountID:   domain.AccountFondoGeneral,
		Currency:    domain.CRC,
		Category:    domain.CategoryVentaContado,
		AmountIn:    decimal.NewFromInt(1000),
		ManagerName: "Ana",
		CreatedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	raw, err := json.Marshal(doc)
	require.NoError(s.T(), err)
	return raw
}

func (s *LedgerStoreTestSuite) TestLoadPrefersDurableCurrent() {
	s.durable.On("GetDocument", mock.Anything, "movements_company-1").Return(s.validDocBytes("company-1"), nil).Once()

	doc, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err)
	assert.Len(s.T(), doc.Movements, 1)
	assert.Equal(s.T(), "company-1", doc.CompanyID)

	// Lower-priority locators are never consulted.
	s.durable.AssertNotCalled(s.T(), "GetDocument", mock.Anything, "movements_owner-9")
	s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
}

func (s *LedgerStoreTestSuite) TestLoadFallsThroughMalformedToLegacy() {
	s.durable.On("GetDocument", mock.Anything, "movements_company-1").Return([]byte("{this is not json"), nil).Once()
	s.durable.On("GetDocument", mock.Anything, "movements_owner-9").Return(s.validDocBytes("owner-9"), nil).Once()

	doc, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err)
	assert.Len(s.T(), doc.Movements, 1)
	// Normalization reassigns ownership to the requesting scope.
	assert.Equal(s.T(), "company-1", doc.CompanyID)
}

func (s *LedgerStoreTestSuite) TestLoadFallsThroughToCache() {
	s.durable.On("GetDocument", mock.Anything, "movements_company-1").Return(nil, apperrors.ErrNotFound).Once()
	s.durable.On("GetDocument", mock.Anything, "movements_owner-9").Return(nil, apperrors.ErrNotFound).Once()
	s.cache.On("Get", mock.Anything, "movements_company-1").Return(string(s.validDocBytes("company-1")), nil).Once()

	doc, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err)
	assert.Len(s.T(), doc.Movements, 1)
}

func (s *LedgerStoreTestSuite) TestLoadEmptyWhenNothingFound() {
	s.durable.On("GetDocument", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.cache.On("Get", mock.Anything, mock.Anything).Return("", apperrors.ErrNotFound)

	doc, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err, "a missing document is not an error")
	assert.Empty(s.T(), doc.Movements)
	assert.Equal(s.T(), domain.CurrentSchemaVersion, doc.SchemaVersion)
	assert.Len(s.T(), doc.States, len(domain.AllAccounts)*len(domain.AllCurrencies))
}

func (s *LedgerStoreTestSuite) TestLoadEmptyWhenEverythingMalformed() {
	s.durable.On("GetDocument", mock.Anything, mock.Anything).Return([]byte("garbage"), nil)
	s.cache.On("Get", mock.Anything, mock.Anything).Return("more garbage", nil)

	doc, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err, "corrupt stores must not take the ledger down")
	assert.Empty(s.T(), doc.Movements)
}

func (s *LedgerStoreTestSuite) TestLoadMigratesFlatFormat() {
	flat := []domain.Movement{
		{
			MovementID:  "m-old-1",
			AccountID:   domain.AccountFondoGeneral,
			Currency:    domain.CRC,
			Category:    domain.CategoryVentaContado,
			AmountIn:    decimal.NewFromInt(2000),
			ManagerName: "Ana",
			CreatedAt:   time.Date(2023, 11, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			MovementID:  "m-old-2",
			AccountID:   domain.AccountFondoGeneral,
			Currency:    domain.CRC,
			Category:    domain.CategoryPagoProveedor,
			AmountOut:   decimal.NewFromInt(500),
			ManagerName: "Ana",
			CreatedAt:   time.Date(2023, 11, 5, 10, 0, 0, 0, time.UTC),
		},
	}
	raw, err := json.Marshal(flat)
	require.NoError(s.T(), err)
	s.durable.On("GetDocument", mock.Anything, "movements_company-1").Return(raw, nil).Once()

	doc, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err)

	require.Len(s.T(), doc.Movements, 2)
	assert.Equal(s.T(), domain.CurrentSchemaVersion, doc.SchemaVersion)
	// Pre-sequence movements get sequence numbers in slice order.
	assert.Equal(s.T(), int64(1), doc.Movements[0].Seq)
	assert.Equal(s.T(), int64(2), doc.Movements[1].Seq)
	assert.Equal(s.T(), int64(3), doc.NextSeq)
	assert.Len(s.T(), doc.States, len(domain.AllAccounts)*len(domain.AllCurrencies))
}

func (s *LedgerStoreTestSuite) TestLoadDerivesLockFromClosings() {
	doc := domain.NewLedgerDocument("company-1")
	closedAt := time.Date(2024, 2, 28, 18, 30, 0, 0, time.UTC)
	doc.Closings = append(doc.Closings, domain.ClosingRecord{
		ClosingID:   uuid.NewString(),
		CreatedAt:   closedAt,
		ClosingDate: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		Manager:     "Ana",
	})
	// Simulate an older shape that never persisted lock boundaries.
	for key, st := range doc.States {
		st.LockedUntil = nil
		doc.States[key] = st
	}
	raw, err := json.Marshal(doc)
	require.NoError(s.T(), err)
	s.durable.On("GetDocument", mock.Anything, "movements_company-1").Return(raw, nil).Once()

	loaded, err := s.store.Load(context.Background(), s.scope)
	require.NoError(s.T(), err)

	key := domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: domain.CRC}
	require.NotNil(s.T(), loaded.States[key].LockedUntil)
	assert.True(s.T(), loaded.States[key].LockedUntil.Equal(closedAt))
}

func (s *LedgerStoreTestSuite) TestSaveWritesBothStoresAndCleansLegacy() {
	doc := domain.NewLedgerDocument("company-1")

	s.cache.On("Set", mock.Anything, "movements_company-1", mock.Anything).Return(nil).Once()
	s.cache.On("Remove", mock.Anything, "movements_owner-9").Return(nil).Once()
	s.durable.On("SaveDocument", mock.Anything, "movements_company-1", mock.Anything).Return(nil).Once()
	s.durable.On("DeleteDocument", mock.Anything, "movements_owner-9").Return(nil).Once()

	err := s.store.Save(context.Background(), s.scope, doc)
	require.NoError(s.T(), err)
	s.cache.AssertExpectations(s.T())
	s.durable.AssertExpectations(s.T())
}

func (s *LedgerStoreTestSuite) TestSaveEvictsCacheCopyToLimit() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ledgerstore.New(s.durable, s.cache, logger, 2)

	doc := domain.NewLedgerDocument("company-1")
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		doc.AppendMovement(domain.Movement{
			MovementID:  id,
			AccountID:   domain.AccountFondoGeneral,
			Currency:    domain.CRC,
			Category:    domain.CategoryVentaContado,
			AmountIn:    decimal.NewFromInt(100),
			ManagerName: "Ana",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	var cachedPayload string
	s.cache.On("Set", mock.Anything, "movements_company-1", mock.Anything).Run(func(args mock.Arguments) {
		cachedPayload = args.String(2)
	}).Return(nil).Once()
	s.cache.On("Remove", mock.Anything, mock.Anything).Return(nil)
	s.durable.On("SaveDocument", mock.Anything, "movements_company-1", mock.Anything).Run(func(args mock.Arguments) {
		var full domain.LedgerDocument
		require.NoError(s.T(), json.Unmarshal(args.Get(2).([]byte), &full))
		assert.Len(s.T(), full.Movements, 3, "the durable copy keeps every movement")
	}).Return(nil).Once()
	s.durable.On("DeleteDocument", mock.Anything, mock.Anything).Return(nil)

	err := store.Save(context.Background(), s.scope, doc)
	require.NoError(s.T(), err)

	var cached domain.LedgerDocument
	require.NoError(s.T(), json.Unmarshal([]byte(cachedPayload), &cached))
	require.Len(s.T(), cached.Movements, 2, "the cache copy is capacity limited")
	assert.Equal(s.T(), "mid", cached.Movements[0].MovementID)
	assert.Equal(s.T(), "new", cached.Movements[1].MovementID)
}

func (s *LedgerStoreTestSuite) TestSaveDurableFailureIsPersistenceError() {
	doc := domain.NewLedgerDocument("company-1")

	s.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.cache.On("Remove", mock.Anything, mock.Anything).Return(nil)
	s.durable.On("SaveDocument", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	err := s.store.Save(context.Background(), s.scope, doc)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrPersistence)
}

func (s *LedgerStoreTestSuite) TestSaveWithoutLegacyScopeSkipsCleanup() {
	scope := domain.ScopeKey{CompanyID: "company-1"}
	doc := domain.NewLedgerDocument("company-1")

	s.cache.On("Set", mock.Anything, "movements_company-1", mock.Anything).Return(nil).Once()
	s.durable.On("SaveDocument", mock.Anything, "movements_company-1", mock.Anything).Return(nil).Once()

	err := s.store.Save(context.Background(), scope, doc)
	require.NoError(s.T(), err)
	s.cache.AssertNotCalled(s.T(), "Remove", mock.Anything, mock.Anything)
	s.durable.AssertNotCalled(s.T(), "DeleteDocument", mock.Anything, mock.Anything)
}

func TestLedgerStoreTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerStoreTestSuite))
}
