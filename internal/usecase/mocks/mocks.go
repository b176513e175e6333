package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

// MockTransaction is a no-op transaction that records its outcome.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
	CommitErr  error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc    func(ctx context.Context) (usecase.Transaction, error)
	Transactions []*MockTransaction
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator returns sequential IDs so output is deterministic.
type MockIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *MockIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

// MockLedgerRepository is an in-memory LedgerRepository.
type MockLedgerRepository struct {
	mu       sync.RWMutex
	entries  map[string]*domain.LedgerEntry // by natural key
	balances map[string]decimal.Decimal

	AppendBatchFunc  func(ctx context.Context, tx usecase.Transaction, entries []*domain.LedgerEntry) (int, error)
	ListSinceFunc    func(ctx context.Context, since time.Time) ([]*domain.LedgerEntry, error)
	TotalBalanceFunc func(ctx context.Context) (decimal.Decimal, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		entries:  make(map[string]*domain.LedgerEntry),
		balances: make(map[string]decimal.Decimal),
	}
}

func (m *MockLedgerRepository) AppendBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.LedgerEntry) (int, error) {
	if m.AppendBatchFunc != nil {
		return m.AppendBatchFunc(ctx, tx, entries)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, e := range entries {
		key := e.NaturalKey()
		if existing, ok := m.entries[key]; ok {
			if len(e.RawDescription) > len(existing.RawDescription) {
				existing.RawDescription = e.RawDescription
			}
			continue
		}
		m.entries[key] = e
		inserted++
	}

	return inserted, nil
}

func (m *MockLedgerRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.LedgerEntry, error) {
	if m.ListSinceFunc != nil {
		return m.ListSinceFunc(ctx, since)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if !e.OccurredAt.Before(since) {
			out = append(out, e)
		}
	}

	domain.SortEntries(out)

	return out, nil
}

func (m *MockLedgerRepository) LatestEntryDate(ctx context.Context, accountID string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest time.Time
	for _, e := range m.entries {
		if e.AccountID == accountID && e.OccurredAt.After(latest) {
			latest = e.OccurredAt
		}
	}

	return latest, nil
}

func (m *MockLedgerRepository) EarliestEntryDate(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var earliest time.Time
	for _, e := range m.entries {
		if earliest.IsZero() || e.OccurredAt.Before(earliest) {
			earliest = e.OccurredAt
		}
	}

	return earliest, nil
}

func (m *MockLedgerRepository) SaveBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, observedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balance
	return nil
}

func (m *MockLedgerRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	if m.TotalBalanceFunc != nil {
		return m.TotalBalanceFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, b := range m.balances {
		total = total.Add(b)
	}

	return total, nil
}

// Size returns the number of stored entries.
func (m *MockLedgerRepository) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Seed inserts entries directly, bypassing the append path.
func (m *MockLedgerRepository) Seed(entries ...*domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.NaturalKey()] = e
	}
}

// SeedBalance sets an account balance directly.
func (m *MockLedgerRepository) SeedBalance(accountID string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balance
}

// MockSnapshotRepository is an in-memory SnapshotRepository.
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot // by date string

	CreateFunc func(ctx context.Context, tx usecase.Transaction, snapshot *domain.Snapshot) error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshots: make(map[string]*domain.Snapshot)}
}

func (m *MockSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.Snapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, snapshot)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.AsOfDate.Format("2006-01-02")] = snapshot
	return nil
}

func (m *MockSnapshotRepository) GetByDate(ctx context.Context, asOf time.Time) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.snapshots[asOf.Format("2006-01-02")]; ok {
		return s, nil
	}

	return nil, domain.ErrSnapshotNotFound
}

func (m *MockSnapshotRepository) GetLatest(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *domain.Snapshot
	for _, s := range m.snapshots {
		if latest == nil || s.AsOfDate.After(latest.AsOfDate) {
			latest = s
		}
	}

	if latest == nil {
		return nil, domain.ErrSnapshotNotFound
	}

	return latest, nil
}

func (m *MockSnapshotRepository) ListDates(ctx context.Context, limit, offset int) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dates []time.Time
	for _, s := range m.snapshots {
		dates = append(dates, s.AsOfDate)
	}

	return dates, nil
}

// MockGoalRepository is an in-memory GoalRepository.
type MockGoalRepository struct {
	mu          sync.RWMutex
	goals       map[string]*domain.SavingsGoal
	Suggestions []domain.GoalSuggestion
}

func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{goals: make(map[string]*domain.SavingsGoal)}
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goal.ID] = goal
	return nil
}

func (m *MockGoalRepository) Update(ctx context.Context, goal *domain.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goal.ID]; !ok {
		return domain.ErrGoalNotFound
	}
	m.goals[goal.ID] = goal
	return nil
}

func (m *MockGoalRepository) GetByID(ctx context.Context, id string) (*domain.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if g, ok := m.goals[id]; ok {
		return g, nil
	}

	return nil, domain.ErrGoalNotFound
}

func (m *MockGoalRepository) List(ctx context.Context) ([]*domain.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.SavingsGoal
	for _, g := range m.goals {
		out = append(out, g)
	}

	return out, nil
}

func (m *MockGoalRepository) SaveSuggestions(ctx context.Context, tx usecase.Transaction, asOf time.Time, suggestions []domain.GoalSuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Suggestions = suggestions
	return nil
}

// MockCommitmentRepository is an in-memory CommitmentRepository.
type MockCommitmentRepository struct {
	mu          sync.RWMutex
	commitments map[string]*domain.Commitment
}

func NewMockCommitmentRepository() *MockCommitmentRepository {
	return &MockCommitmentRepository{commitments: make(map[string]*domain.Commitment)}
}

func (m *MockCommitmentRepository) Create(ctx context.Context, commitment *domain.Commitment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitments[commitment.ID] = commitment
	return nil
}

func (m *MockCommitmentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.commitments[id]; !ok {
		return domain.ErrCommitmentNotFound
	}
	delete(m.commitments, id)
	return nil
}

func (m *MockCommitmentRepository) GetByID(ctx context.Context, id string) (*domain.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.commitments[id]; ok {
		return c, nil
	}

	return nil, domain.ErrCommitmentNotFound
}

func (m *MockCommitmentRepository) List(ctx context.Context) ([]*domain.Commitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Commitment
	for _, c := range m.commitments {
		out = append(out, c)
	}

	return out, nil
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockIngestLock is an in-memory IngestLock.
type MockIngestLock struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireFunc func(ctx context.Context, accountID string, ttl time.Duration) (bool, error)
}

func NewMockIngestLock() *MockIngestLock {
	return &MockIngestLock{held: make(map[string]bool)}
}

func (m *MockIngestLock) Acquire(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, accountID, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held[accountID] {
		return false, nil
	}
	m.held[accountID] = true
	return true, nil
}

func (m *MockIngestLock) Release(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, accountID)
	return nil
}

// PassthroughRetrier runs the operation once without retrying.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// MockSource is a scripted TransactionSource.
type MockSource struct {
	SourceName string
	Account    string
	Records    []domain.RawRecord
	Balance    decimal.Decimal
	FetchErr   error
	BalanceErr error

	FetchCalls int
}

func (m *MockSource) Name() string      { return m.SourceName }
func (m *MockSource) AccountID() string { return m.Account }

func (m *MockSource) FetchSince(ctx context.Context, since time.Time) ([]domain.RawRecord, error) {
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Records, nil
}

func (m *MockSource) FetchBalance(ctx context.Context) (decimal.Decimal, error) {
	if m.BalanceErr != nil {
		return decimal.Zero, m.BalanceErr
	}
	return m.Balance, nil
}
