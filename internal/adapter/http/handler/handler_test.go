package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mutual-credit-ledger/internal/adapter/http/dto"
	"mutual-credit-ledger/internal/adapter/http/middleware"
	"mutual-credit-ledger/internal/core/domain"
	"mutual-credit-ledger/internal/core/ports"
	"mutual-credit-ledger/internal/core/ports/mocks"
	"mutual-credit-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response should contain a data object: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockAuth.EXPECT().Register(gomock.Any(), "alice", "password123").Return(&domain.Account{
		ID:        created.Unix(),
		Name:      "alice",
		CreatedAt: created,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		jsonBody(t, dto.RegisterRequest{Name: "alice", Password: "password123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(created.Unix()), data["account_id"])
	assert.Equal(t, "alice", data["name"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Name too short, password too short
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		jsonBody(t, dto.RegisterRequest{Name: "al", Password: "short"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_NameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), "alice", "password123").
		Return(nil, apperror.ErrNameTaken())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		jsonBody(t, dto.RegisterRequest{Name: "alice", Password: "password123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUTH_002", errorCode(t, w))
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "alice", "password123").
		Return("jwt-token", expiry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Name: "alice", Password: "password123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "alice", "wrongpass").
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Name: "alice", Password: "wrongpass"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", errorCode(t, w))
}

func TestChangePassword_RequiresAuthContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/auth/password",
		jsonBody(t, dto.ChangePasswordRequest{OldPassword: "old-pass", NewPassword: "new-pass-123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ChangePassword(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().ChangePassword(gomock.Any(), int64(1000), "old-pass", "new-pass-123").Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, int64(1000))
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/auth/password",
		jsonBody(t, dto.ChangePasswordRequest{OldPassword: "old-pass", NewPassword: "new-pass-123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ChangePassword(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Ledger Handler Tests ---

func newLedgerHandler(t *testing.T) (*LedgerHandler, *mocks.MockLedgerService, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	return NewLedgerHandler(mockLedger, 140), mockLedger, ctrl
}

func TestTransfer_Success(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockLedger.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		PayerID: 1000,
		PayeeID: 2000,
		Amount:  100,
		Message: "firewood",
	}).Return(&domain.Transfer{
		ID: 7, PayerID: 1000, PayeeID: 2000, Amount: 100, Message: "firewood", CreatedAt: now,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, int64(1000))
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		jsonBody(t, dto.TransferRequest{PayeeID: 2000, Amount: 100, Message: "firewood"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, float64(100), data["amount"])
	assert.Equal(t, "firewood", data["message"])
}

func TestTransfer_SendLimitExceeded(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrSendLimitExceeded(313))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, int64(1000))
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		jsonBody(t, dto.TransferRequest{PayeeID: 2000, Amount: 314}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "LGR_003", errorCode(t, w))
	assert.Contains(t, w.Body.String(), "313")
}

func TestTransfer_MissingPayee(t *testing.T) {
	h, _, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, int64(1000))
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		jsonBody(t, map[string]any{"amount": 100}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransfer_MessageTooLong(t *testing.T) {
	h, _, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, int64(1000))
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		jsonBody(t, dto.TransferRequest{PayeeID: 2000, Amount: 100, Message: strings.Repeat("x", 141)}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransfer_RequiresAuthContext(t *testing.T) {
	h, _, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
		jsonBody(t, dto.TransferRequest{PayeeID: 2000, Amount: 100}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAccount_Success(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	account := &domain.Account{
		ID:        1000,
		Name:      "alice",
		Balance:   0,
		Received:  0,
		Sent:      0,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mockLedger.EXPECT().GetAccount(gomock.Any(), int64(1000)).Return(account, nil)
	mockLedger.EXPECT().Policy().Return(domain.DefaultLimitPolicy())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1000"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1000", nil)

	h.GetAccount(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "alice", data["name"])
	// Fresh account: no credit earned yet, full receive headroom.
	assert.Equal(t, float64(0), data["send_limit"])
	assert.Equal(t, float64(2500), data["receive_limit"])
}

func TestGetAccount_InvalidID(t *testing.T) {
	h, _, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/abc", nil)

	h.GetAccount(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccount_NotFound(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	mockLedger.EXPECT().GetAccount(gomock.Any(), int64(404)).
		Return(nil, apperror.ErrAccountNotFound(404))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "404"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/404", nil)

	h.GetAccount(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LGR_005", errorCode(t, w))
}

func TestGetAccountByName_Success(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	account := &domain.Account{
		ID:        1000,
		Name:      "alice",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mockLedger.EXPECT().GetAccountByName(gomock.Any(), "alice").Return(account, nil)
	mockLedger.EXPECT().Policy().Return(domain.DefaultLimitPolicy())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "name", Value: "alice"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/name/alice", nil)

	h.GetAccountByName(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(1000), data["id"])
	assert.Equal(t, "alice", data["name"])
}

func TestGetAccountByName_NotFound(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	mockLedger.EXPECT().GetAccountByName(gomock.Any(), "nobody").
		Return(nil, apperror.ErrAccountNameNotFound("nobody"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "name", Value: "nobody"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/name/nobody", nil)

	h.GetAccountByName(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LGR_005", errorCode(t, w))
}

func TestListAccounts_Success(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	accounts := []domain.Account{
		{ID: 1000, Name: "alice"},
		{ID: 2000, Name: "bob"},
	}
	mockLedger.EXPECT().ListAccounts(gomock.Any()).Return(accounts, nil)
	mockLedger.EXPECT().Policy().Return(domain.DefaultLimitPolicy()).Times(2)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)

	h.ListAccounts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(2), data["total"])
}

func TestListMyTransfers_Success(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	now := time.Now().UTC()
	transfers := []domain.Transfer{
		{ID: 9, PayerID: 1000, PayeeID: 2000, Amount: 30, CreatedAt: now},
		{ID: 4, PayerID: 2000, PayeeID: 1000, Amount: 80, CreatedAt: now.Add(-time.Hour)},
	}
	mockLedger.EXPECT().ListTransfers(gomock.Any(), int64(1000)).Return(transfers, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxAccountID, int64(1000))
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me/transfers", nil)

	h.ListMyTransfers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(2), data["total"])
}

func TestIntegrity_Consistent(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	mockLedger.EXPECT().BalanceSum(gomock.Any()).Return(int64(0), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/ledger/integrity", nil)

	h.Integrity(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(0), data["balance_sum"])
	assert.Equal(t, true, data["consistent"])
}

func TestIntegrity_Corrupt(t *testing.T) {
	h, mockLedger, ctrl := newLedgerHandler(t)
	defer ctrl.Finish()

	mockLedger.EXPECT().BalanceSum(gomock.Any()).Return(int64(-12), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/ledger/integrity", nil)

	h.Integrity(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(-12), data["balance_sum"])
	assert.Equal(t, false, data["consistent"])
}

// --- Health Check Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck(
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis", err: assert.AnError},
	))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

// --- Router Tests ---

func TestSetupRouter_UnauthenticatedTransferRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	router := SetupRouter(RouterDeps{
		AuthSvc:       mocks.NewMockAuthService(ctrl),
		LedgerSvc:     mocks.NewMockLedgerService(ctrl),
		TokenSvc:      tokenSvc,
		MaxMessageLen: 140,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRouter_HealthRouteIsPublic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := SetupRouter(RouterDeps{
		AuthSvc:   mocks.NewMockAuthService(ctrl),
		LedgerSvc: mocks.NewMockLedgerService(ctrl),
		TokenSvc:  mocks.NewMockTokenService(ctrl),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
