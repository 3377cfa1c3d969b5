package handler

import (
	"strconv"
	"time"

	"mutual-credit-ledger/internal/adapter/http/dto"
	"mutual-credit-ledger/internal/adapter/http/middleware"
	"mutual-credit-ledger/internal/core/domain"
	"mutual-credit-ledger/internal/core/ports"
	"mutual-credit-ledger/pkg/apperror"
	"mutual-credit-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles transfer and account endpoints.
type LedgerHandler struct {
	ledgerSvc     ports.LedgerService
	maxMessageLen int
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, maxMessageLen int) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, maxMessageLen: maxMessageLen}
}

// Transfer handles POST /api/v1/transfers. The authenticated account
// is always the payer.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	payerID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if h.maxMessageLen > 0 && len(req.Message) > h.maxMessageLen {
		response.Error(c, apperror.Validation("message too long"))
		return
	}

	transfer, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		PayerID: payerID,
		PayeeID: req.PayeeID,
		Amount:  req.Amount,
		Message: req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransferResponse(transfer))
}

// GetAccount handles GET /api/v1/accounts/:id.
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid account id"))
		return
	}

	account, err := h.ledgerSvc.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toAccountResponse(account))
}

// GetAccountByName handles GET /api/v1/accounts/name/:name.
func (h *LedgerHandler) GetAccountByName(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.Error(c, apperror.Validation("missing account name"))
		return
	}

	account, err := h.ledgerSvc.GetAccountByName(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toAccountResponse(account))
}

// GetMe handles GET /api/v1/accounts/me.
func (h *LedgerHandler) GetMe(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.ledgerSvc.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toAccountResponse(account))
}

// ListAccounts handles GET /api/v1/accounts.
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.ledgerSvc.ListAccounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, h.toAccountResponse(&accounts[i]))
	}

	response.OK(c, dto.AccountListResponse{Items: items, Total: len(items)})
}

// ListMyTransfers handles GET /api/v1/accounts/me/transfers.
func (h *LedgerHandler) ListMyTransfers(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	transfers, err := h.ledgerSvc.ListTransfers(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, toTransferResponse(&transfers[i]))
	}

	response.OK(c, dto.TransferListResponse{Items: items, Total: len(items)})
}

// Integrity handles GET /api/v1/ledger/integrity, reporting the
// pool-wide balance sum.
func (h *LedgerHandler) Integrity(c *gin.Context) {
	sum, err := h.ledgerSvc.BalanceSum(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.IntegrityResponse{
		BalanceSum: sum,
		Consistent: sum == 0,
	})
}

func (h *LedgerHandler) toAccountResponse(a *domain.Account) dto.AccountResponse {
	policy := h.ledgerSvc.Policy()
	return dto.AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Balance:      a.Balance,
		Received:     a.Received,
		Sent:         a.Sent,
		SendLimit:    policy.SendLimit(a),
		ReceiveLimit: policy.ReceiveLimit(a),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

func toTransferResponse(t *domain.Transfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:        t.ID,
		PayerID:   t.PayerID,
		PayeeID:   t.PayeeID,
		Amount:    t.Amount,
		Message:   t.Message,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
