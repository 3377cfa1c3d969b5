package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mutual-credit-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; ok {
		return fmt.Errorf("account id already exists")
	}
	for _, existing := range r.accounts {
		if existing.Name == a.Name {
			return fmt.Errorf("account name already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *inMemoryAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryAccountRepo) ApplyTransfer(ctx context.Context, tx pgx.Tx, payerID, payeeID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payer, ok := r.accounts[payerID]
	if !ok {
		return fmt.Errorf("payer not found")
	}
	payee, ok := r.accounts[payeeID]
	if !ok {
		return fmt.Errorf("payee not found")
	}
	payer.Balance -= amount
	payer.Sent++
	payee.Balance += amount
	payee.Received++
	return nil
}

func (r *inMemoryAccountRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.PasswordHash = hash
	return nil
}

func (r *inMemoryAccountRepo) SumBalances(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, a := range r.accounts {
		sum += a.Balance
	}
	return sum, nil
}

func (r *inMemoryAccountRepo) SumBalancesTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	return r.SumBalances(ctx)
}

// --- In-Memory Transfer Repo ---

type inMemoryTransferRepo struct {
	mu        sync.RWMutex
	seq       int64
	transfers []domain.Transfer
}

func newInMemoryTransferRepo() *inMemoryTransferRepo {
	return &inMemoryTransferRepo{}
}

func (r *inMemoryTransferRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t.ID = r.seq
	t.CreatedAt = time.Now().UTC()
	r.transfers = append(r.transfers, *t)
	return nil
}

func (r *inMemoryTransferRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transfer
	for i := len(r.transfers) - 1; i >= 0; i-- {
		t := r.transfers[i]
		if t.PayerID == accountID || t.PayeeID == accountID {
			result = append(result, t)
		}
	}
	return result, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes units of work with a single mutex so
// that the lock-validate-apply sequence of a transfer is atomic against
// concurrent transfers, matching what row locks give the real store.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a pgx.Tx implementation that only tracks lifetime. Commit
// and Rollback release the transactor mutex exactly once; rollback of
// applied changes is not supported, so tests must not rely on it.
type memTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *memTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
