// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/adapter"
	"webharbour/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

// memOrderRepo is a small in-memory implementation used by unit tests. The
// provider-payment-id uniqueness check is guarded by the mutex, mirroring the
// database constraint.
type memOrderRepo struct {
	mu         sync.RWMutex
	store      map[string]*model.Order // by order ID
	byProvider map[string]string       // provider_payment_id -> order ID
	createErr  error                   // used by tests to simulate insert failures
	createFunc func(o *model.Order) (repository.CreateOutcome, error)
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		store:      make(map[string]*model.Order),
		byProvider: make(map[string]string),
	}
}

func (m *memOrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) (repository.CreateOutcome, error) {
	if m.createFunc != nil {
		return m.createFunc(o)
	}
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ProviderPaymentID != "" {
		if _, dup := m.byProvider[o.ProviderPaymentID]; dup {
			return repository.OutcomeAlreadyExists, nil
		}
		m.byProvider[o.ProviderPaymentID] = o.ID
	}
	cp := *o
	m.store[o.ID] = &cp
	return repository.OutcomeCreated, nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByProviderPaymentID(ctx context.Context, tx repository.Tx, providerPaymentID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byProvider[providerPaymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.store[id]
	return &cp, nil
}

func (m *memOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrderRepo) MarkRefunded(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok || o.Status != model.PaymentStatusCompleted {
		return false, nil
	}
	o.Status = model.PaymentStatusRefunded
	return true, nil
}

func (m *memOrderRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, o := range m.store {
		if o.Status == model.PaymentStatusCompleted {
			sum += o.Amount
		}
	}
	return sum, nil
}

type memUserRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.User     // by ID
	purchases map[string]map[string]bool // userID -> set of productIDs
	saveErr   error
	purchErr  error // used to simulate AddPurchase failures
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		store:     make(map[string]*model.User),
		purchases: make(map[string]map[string]bool),
	}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.ID != u.ID && (existing.Email == u.Email || existing.Username == u.Username) {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memUserRepo) UpdateRole(ctx context.Context, tx repository.Tx, id string, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *memUserRepo) AddPurchase(ctx context.Context, tx repository.Tx, userID, productID string) error {
	if m.purchErr != nil {
		return m.purchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.purchases[userID]
	if !ok {
		set = make(map[string]bool)
		m.purchases[userID] = set
	}
	set[productID] = true
	return nil
}

func (m *memUserRepo) HasPurchase(ctx context.Context, tx repository.Tx, userID, productID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.purchases[userID][productID], nil
}

func (m *memUserRepo) ListPurchases(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for id := range m.purchases[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type memProductRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Product
	incrErr error // used to simulate IncrementDownloads failures
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{store: make(map[string]*model.Product)}
}

func (m *memProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) matches(p *model.Product, f repository.ProductFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.DeveloperID != "" && p.DeveloperID != f.DeveloperID {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return true
}

func (m *memProductRepo) List(ctx context.Context, tx repository.Tx, f repository.ProductFilter) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Product
	for _, p := range m.store {
		if m.matches(p, f) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memProductRepo) Count(ctx context.Context, tx repository.Tx, f repository.ProductFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, p := range m.store {
		if m.matches(p, f) {
			cnt++
		}
	}
	return cnt, nil
}

func (m *memProductRepo) ListFeatured(ctx context.Context, tx repository.Tx, limit int) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Product
	for _, p := range m.store {
		if p.Featured && p.Status == model.ProductStatusApproved {
			cp := *p
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memProductRepo) Suggest(ctx context.Context, tx repository.Tx, q string, limit int) ([]*model.Product, error) {
	return m.List(ctx, tx, repository.ProductFilter{
		Status: model.ProductStatusApproved,
		Search: q,
		Limit:  limit,
	})
}

func (m *memProductRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.ProductStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.ProductStatus]int)
	for _, p := range m.store {
		out[p.Status]++
	}
	return out, nil
}

func (m *memProductRepo) IncrementDownloads(ctx context.Context, tx repository.Tx, id string) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Downloads++
	return nil
}

func (m *memProductRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Views++
	return nil
}

func (m *memProductRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.ProductStatus, reason, approvedBy string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.ProductStatusPending {
		return false, nil
	}
	p.Status = status
	p.RejectionReason = reason
	p.ApprovedBy = approvedBy
	now := time.Now()
	p.ApprovedAt = &now
	return true, nil
}

func (m *memProductRepo) UpdateRating(ctx context.Context, tx repository.Tx, id string, r model.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Rating = r
	return nil
}

type memReviewRepo struct {
	mu    sync.RWMutex
	store []*model.Review
}

func newMemReviewRepo() *memReviewRepo { return &memReviewRepo{} }

func (m *memReviewRepo) Create(ctx context.Context, tx repository.Tx, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return domain.ErrAlreadyReviewed
		}
	}
	cp := *r
	m.store = append(m.store, &cp)
	return nil
}

func (m *memReviewRepo) ListByProduct(ctx context.Context, tx repository.Tx, productID string) ([]*model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Review
	for _, r := range m.store {
		if r.ProductID == productID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memReviewRepo) Aggregate(ctx context.Context, tx repository.Tx, productID string) (model.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum, cnt int
	for _, r := range m.store {
		if r.ProductID == productID {
			sum += r.Rating
			cnt++
		}
	}
	if cnt == 0 {
		return model.Rating{}, nil
	}
	return model.Rating{Average: float64(sum) / float64(cnt), Count: cnt}, nil
}

type memCategoryRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{store: make(map[string]*model.Category)}
}

func (m *memCategoryRepo) Save(ctx context.Context, tx repository.Tx, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Slug] = &cp
	return nil
}

func (m *memCategoryRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Category
	for _, c := range m.store {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// passTxManager runs the function without a real transaction; unit tests only
// care about the call sequence.
type passTxManager struct{}

func (passTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// mockGateway lets tests script CreateIntent/VerifyWebhook behavior.
type mockGateway struct {
	createIntentFunc  func(ctx context.Context, amount int64, currency string, meta map[string]string) (adapter.Intent, error)
	verifyWebhookFunc func(payload []byte, signature string) (adapter.PaymentEvent, error)
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) CreateIntent(ctx context.Context, amount int64, currency string, meta map[string]string) (adapter.Intent, error) {
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, amount, currency, meta)
	}
	return adapter.Intent{
		ProviderPaymentID: fmt.Sprintf("pay_test_%d", amount),
		ClientSecret:      "secret_test",
		Amount:            amount,
		Currency:          currency,
	}, nil
}

func (m *mockGateway) VerifyWebhook(payload []byte, signature string) (adapter.PaymentEvent, error) {
	if m.verifyWebhookFunc != nil {
		return m.verifyWebhookFunc(payload, signature)
	}
	return adapter.PaymentEvent{}, domain.ErrInvalidSignature
}
