package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/core/services"
	"github.com/fondoapps/fondo_ledger_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerStoreFacade ---
type MockLedgerStore struct {
	mock.Mock
}

var _ portsrepo.LedgerStoreFacade = (*MockLedgerStore)(nil)

func (m *MockLedgerStore) Load(ctx context.Context, scope domain.ScopeKey) (*domain.LedgerDocument, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerDocument), args.Error(1)
}

func (m *MockLedgerStore) Save(ctx context.Context, scope domain.ScopeKey, doc *domain.LedgerDocument) error {
	args := m.Called(ctx, scope, doc)
	return args.Error(0)
}

// --- Mock UserSvcFacade ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) IsPrincipalAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// --- Suite ---
type MovementServiceTestSuite struct {
	suite.Suite
	mockStore   *MockLedgerStore
	mockUserSvc *MockUserService
	ledgerSvc   *services.LedgerService
	service     portssvc.MovementSvcFacade

	companyID string
	actorID   string
	doc       *domain.LedgerDocument
}

func (s *MovementServiceTestSuite) SetupTest() {
	s.mockStore = new(MockLedgerStore)
	s.mockUserSvc = new(MockUserService)
	s.ledgerSvc = services.NewLedgerService(s.mockStore, "")
	s.service = services.NewMovementService(s.ledgerSvc, s.mockUserSvc, 5)

	s.companyID = uuid.NewString()
	s.actorID = uuid.NewString()
	s.doc = domain.NewLedgerDocument(s.companyID)

	s.mockStore.On("Load", mock.Anything, mock.Anything).Return(s.doc, nil).Once()
	s.mockStore.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (s *MovementServiceTestSuite) seedMovement(category domain.Category, amount int64, createdAt time.Time) domain.Movement {
	input := domain.NewMovementInput{
		AccountID:   domain.AccountFondoGeneral,
		Currency:    domain.CRC,
		Category:    category,
		Amount:      decimal.NewFromInt(amount),
		ManagerName: "Ana",
		CreatedAt:   createdAt,
	}
	m, err := domain.NewMovement(input)
	require.NoError(s.T(), err)
	m.MovementID = uuid.NewString()
	return s.doc.AppendMovement(m)
}

func (s *MovementServiceTestSuite) TestCreateMovementSuccess() {
	req := dto.CreateMovementRequest{
		AccountID:   string(domain.AccountFondoGeneral),
		Currency:    "CRC",
		Category:    string(domain.CategoryVentaContado),
		Amount:      decimal.RequireFromString("1500.90"),
		ManagerName: "Ana",
		InvoiceRef:  "1234",
	}

	created, err := s.service.CreateMovement(context.Background(), s.companyID, req, s.actorID)
	require.NoError(s.T(), err)

	assert.NotEmpty(s.T(), created.MovementID)
	assert.True(s.T(), created.AmountIn.Equal(decimal.NewFromInt(1500)), "amount should truncate to whole units")
	assert.True(s.T(), created.AmountOut.IsZero())
	assert.Equal(s.T(), int64(1), created.Seq)
	assert.False(s.T(), created.CreatedAt.IsZero())

	snapshot, err := s.ledgerSvc.Snapshot(context.Background(), s.companyID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), snapshot.Movements, 1)
	s.mockStore.AssertCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything)
}

func (s *MovementServiceTestSuite) TestCreateMovementRejectsReservedCategory() {
	req := dto.CreateMovementRequest{
		AccountID:   string(domain.AccountFondoGeneral),
		Currency:    "CRC",
		Category:    string(domain.CategoryAjusteCierreIngreso),
		Amount:      decimal.NewFromInt(100),
		ManagerName: "Ana",
	}

	_, err := s.service.CreateMovement(context.Background(), s.companyID, req, s.actorID)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *MovementServiceTestSuite) TestUpdateMovementAccretesAudit() {
	seeded := s.seedMovement(domain.CategoryVentaContado, 1000, time.Now().UTC().Add(-time.Hour))

	notes := "monto corregido"
	amount := decimal.NewFromInt(1200)
	updated, err := s.service.UpdateMovement(context.Background(), s.companyID, seeded.MovementID, dto.UpdateMovementRequest{
		Notes:  &notes,
		Amount: &amount,
	}, s.actorID)
	require.NoError(s.T(), err)

	assert.True(s.T(), updated.IsEdited)
	require.Len(s.T(), updated.EditHistory, 1)
	assert.Equal(s.T(), "1000", updated.EditHistory[0].Before[domain.FieldAmountIn])
	assert.Equal(s.T(), "1200", updated.EditHistory[0].After[domain.FieldAmountIn])
	assert.Equal(s.T(), seeded.CreatedAt, updated.CreatedAt)
}

func (s *MovementServiceTestSuite) TestUpdateMovementRejectsBeyondEditCap() {
	seeded := s.seedMovement(domain.CategoryVentaContado, 1000, time.Now().UTC().Add(-time.Hour))
	idx, ok := s.doc.FindMovement(seeded.MovementID)
	require.True(s.T(), ok)
	for i := 0; i < 5; i++ {
		s.doc.Movements[idx].EditHistory = append(s.doc.Movements[idx].EditHistory, domain.AuditRecord{At: time.Now().UTC()})
	}

	notes := "sexta edicion"
	_, err := s.service.UpdateMovement(context.Background(), s.companyID, seeded.MovementID, dto.UpdateMovementRequest{Notes: &notes}, s.actorID)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrEditLimitExceeded)
}

func (s *MovementServiceTestSuite) TestUpdateMovementRejectsLocked() {
	createdAt := time.Now().UTC().Add(-2 * time.Hour)
	seeded := s.seedMovement(domain.CategoryVentaContado, 1000, createdAt)
	s.doc.AdvanceLock(domain.LedgerKey{Account: domain.AccountFondoGeneral, Currency: domain.CRC}, createdAt.Add(time.Hour))

	notes := "tarde"
	_, err := s.service.UpdateMovement(context.Background(), s.companyID, seeded.MovementID, dto.UpdateMovementRequest{Notes: &notes}, s.actorID)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrMovementLocked)
}

func (s *MovementServiceTestSuite) TestUpdateMovementRejectsAdjustment() {
	adjustment := domain.Movement{
		MovementID:      uuid.NewString(),
		AccountID:       domain.AccountFondoGeneral,
		Currency:        domain.CRC,
		Category:        domain.CategoryAjusteCierreIngreso,
		AmountIn:        decimal.NewFromInt(500),
		ManagerName:     domain.SystemManager,
		CreatedAt:       time.Now().UTC(),
		LinkedClosingID: uuid.NewString(),
	}
	s.doc.AppendMovement(adjustment)

	notes := "no se puede"
	_, err := s.service.UpdateMovement(context.Background(), s.companyID, adjustment.MovementID, dto.UpdateMovementRequest{Notes: &notes}, s.actorID)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrAdjustmentImmutable)
}

func (s *MovementServiceTestSuite) TestUpdateMovementNotFound() {
	notes := "nada"
	_, err := s.service.UpdateMovement(context.Background(), s.companyID, uuid.NewString(), dto.UpdateMovementRequest{Notes: &notes}, s.actorID)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *MovementServiceTestSuite) TestDeleteMovementRequiresPrincipalAdmin() {
	seeded := s.seedMovement(domain.CategoryVentaContado, 1000, time.Now().UTC().Add(-time.Hour))
	s.mockUserSvc.On("IsPrincipalAdmin", mock.Anything, s.actorID).Return(false, nil).Once()

	err := s.service.DeleteMovement(context.Background(), s.companyID, seeded.MovementID, s.actorID)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperrors.ErrForbidden)
	s.mockUserSvc.AssertExpectations(s.T())
}

func (s *MovementServiceTestSuite) TestDeleteMovementAsPrincipalAdmin() {
	seeded := s.seedMovement(domain.CategoryVentaContado, 1000, time.Now().UTC().Add(-time.Hour))
	s.mockUserSvc.On("IsPrincipalAdmin", mock.Anything, s.actorID).Return(true, nil).Once()

	err := s.service.DeleteMovement(context.Background(), s.companyID, seeded.MovementID, s.actorID)
	require.NoError(s.T(), err)

	snapshot, err := s.ledgerSvc.Snapshot(context.Background(), s.companyID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), snapshot.Movements)
}

func (s *MovementServiceTestSuite) TestListMovementsPagination() {
	base := time.Now().UTC().Add(-3 * time.Hour)
	first := s.seedMovement(domain.CategoryVentaContado, 100, base)
	second := s.seedMovement(domain.CategoryPagoProveedor, 200, base.Add(time.Hour))
	third := s.seedMovement(domain.CategoryVentaContado, 300, base.Add(2*time.Hour))

	page, nextToken, err := s.service.ListMovements(context.Background(), s.companyID, dto.ListMovementsFilter{Limit: 2})
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 2)
	require.NotNil(s.T(), nextToken)
	assert.Equal(s.T(), first.MovementID, page[0].MovementID)
	assert.Equal(s.T(), second.MovementID, page[1].MovementID)

	rest, lastToken, err := s.service.ListMovements(context.Background(), s.companyID, dto.ListMovementsFilter{Limit: 2, NextToken: *nextToken})
	require.NoError(s.T(), err)
	require.Len(s.T(), rest, 1)
	assert.Equal(s.T(), third.MovementID, rest[0].MovementID)
	assert.Nil(s.T(), lastToken)
}

func (s *MovementServiceTestSuite) TestListMovementsFiltersByAccountAndCurrency() {
	base := time.Now().UTC().Add(-time.Hour)
	s.seedMovement(domain.CategoryVentaContado, 100, base)
	other := domain.Movement{
		MovementID:  uuid.NewString(),
		AccountID:   domain.AccountBCR,
		Currency:    domain.USD,
		Category:    domain.CategoryVentaContado,
		AmountIn:    decimal.NewFromInt(50),
		ManagerName: "Ana",
		CreatedAt:   base.Add(time.Minute),
	}
	s.doc.AppendMovement(other)

	page, _, err := s.service.ListMovements(context.Background(), s.companyID, dto.ListMovementsFilter{AccountID: "BCR", Currency: "USD"})
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)
	assert.Equal(s.T(), other.MovementID, page[0].MovementID)
}

func TestMovementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MovementServiceTestSuite))
}
