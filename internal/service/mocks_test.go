package service

import (
	"context"
	"sync"

	"streetbite/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Each mock implements a repository interface with optional function fields.
// A nil field falls back to a harmless default so tests only set what they use.

type mockOrderRepository struct {
	createFn       func(ctx context.Context, order *model.Order) error
	getByIDFn      func(ctx context.Context, id int64) (*model.Order, error)
	listByUserFn   func(ctx context.Context, userID int64) ([]model.Order, error)
	listByVendorFn func(ctx context.Context, vendorID int64) ([]model.Order, error)
	updateStatusFn func(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)

	createCalls       int
	updateStatusCalls int
}

func (m *mockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	order.ID = 1
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.NewNotFound("order", id)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockOrderRepository) ListByVendor(ctx context.Context, vendorID int64) ([]model.Order, error) {
	if m.listByVendorFn != nil {
		return m.listByVendorFn(ctx, vendorID)
	}
	return nil, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	m.updateStatusCalls++
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil, model.NewNotFound("order", id)
}

type mockUserRepository struct {
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	updateEngagementFn func(ctx context.Context, id int64, fn func(u *model.User) error) (*model.User, error)
	topByXPFn          func(ctx context.Context, role model.Role, limit int) ([]model.User, error)
	rankByXPFn         func(ctx context.Context, id int64) (int, error)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.NewNotFound("user", id)
}

func (m *mockUserRepository) UpdateEngagement(ctx context.Context, id int64, fn func(u *model.User) error) (*model.User, error) {
	if m.updateEngagementFn != nil {
		return m.updateEngagementFn(ctx, id, fn)
	}
	return nil, model.NewNotFound("user", id)
}

func (m *mockUserRepository) TopByXP(ctx context.Context, role model.Role, limit int) ([]model.User, error) {
	if m.topByXPFn != nil {
		return m.topByXPFn(ctx, role, limit)
	}
	return []model.User{}, nil
}

func (m *mockUserRepository) RankByXP(ctx context.Context, id int64) (int, error) {
	if m.rankByXPFn != nil {
		return m.rankByXPFn(ctx, id)
	}
	return 0, model.NewNotFound("user", id)
}

// memoryUserRepository keeps users in a map and applies UpdateEngagement
// the way the SQL version does: fn runs on a copy that is stored on success.
type memoryUserRepository struct {
	mockUserRepository
	mu    sync.Mutex
	users map[int64]*model.User
}

func newMemoryUserRepository(users ...model.User) *memoryUserRepository {
	repo := &memoryUserRepository{users: make(map[int64]*model.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (m *memoryUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.NewNotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUserRepository) UpdateEngagement(ctx context.Context, id int64, fn func(u *model.User) error) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.NewNotFound("user", id)
	}
	cp := *u
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.users[id] = &cp
	out := cp
	return &out, nil
}

type mockVendorRepository struct {
	getByIDFn        func(ctx context.Context, id int64) (*model.Vendor, error)
	updateStatusFn   func(ctx context.Context, id int64, status model.VendorStatus) (*model.Vendor, error)
	updateLocationFn func(ctx context.Context, id int64, lat, lon float64, address *string) (*model.Vendor, error)
}

func (m *mockVendorRepository) GetByID(ctx context.Context, id int64) (*model.Vendor, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.NewNotFound("vendor", id)
}

func (m *mockVendorRepository) UpdateStatus(ctx context.Context, id int64, status model.VendorStatus) (*model.Vendor, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil, model.NewNotFound("vendor", id)
}

func (m *mockVendorRepository) UpdateLocation(ctx context.Context, id int64, lat, lon float64, address *string) (*model.Vendor, error) {
	if m.updateLocationFn != nil {
		return m.updateLocationFn(ctx, id, lat, lon, address)
	}
	return nil, model.NewNotFound("vendor", id)
}

type mockMenuItemRepository struct {
	setAvailabilityFn func(ctx context.Context, id int64, available bool) (*model.MenuItem, error)
}

func (m *mockMenuItemRepository) SetAvailability(ctx context.Context, id int64, available bool) (*model.MenuItem, error) {
	if m.setAvailabilityFn != nil {
		return m.setAvailabilityFn(ctx, id, available)
	}
	return nil, model.NewNotFound("menu item", id)
}

type mockDeviceTokenRepository struct {
	upsertFn         func(ctx context.Context, userID int64, token, platform string) error
	getByUserIDFn    func(ctx context.Context, userID int64) ([]model.DeviceToken, error)
	deleteFn         func(ctx context.Context, userID int64, token string) (int64, error)
	deleteManyFn     func(ctx context.Context, tokens []string) (int64, error)
	deleteByUserIDFn func(ctx context.Context, userID int64) (int64, error)

	upsertCalls []upsertCall
}

type upsertCall struct {
	UserID   int64
	Token    string
	Platform string
}

func (m *mockDeviceTokenRepository) Upsert(ctx context.Context, userID int64, token, platform string) error {
	m.upsertCalls = append(m.upsertCalls, upsertCall{UserID: userID, Token: token, Platform: platform})
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, token, platform)
	}
	return nil
}

func (m *mockDeviceTokenRepository) GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockDeviceTokenRepository) Delete(ctx context.Context, userID int64, token string) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, token)
	}
	return 1, nil
}

func (m *mockDeviceTokenRepository) DeleteMany(ctx context.Context, tokens []string) (int64, error) {
	if m.deleteManyFn != nil {
		return m.deleteManyFn(ctx, tokens)
	}
	return int64(len(tokens)), nil
}

func (m *mockDeviceTokenRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return 0, nil
}

// =============================================================================
// MOCK COLLABORATORS
// =============================================================================

// mockPushProvider records every call. It is safe for concurrent use.
type mockPushProvider struct {
	mu sync.Mutex

	sendFn        func(ctx context.Context, msg *model.PushMessage) (string, error)
	multicastFn   func(ctx context.Context, msg *model.PushMessage) (*model.BatchResult, error)
	manageTopicFn func(ctx context.Context, tokens []string, topic string, action TopicAction) (*model.TopicResult, error)

	sent       []*model.PushMessage
	multicasts []*model.PushMessage
	topicCalls int
}

func (m *mockPushProvider) Send(ctx context.Context, msg *model.PushMessage) (string, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return "projects/test/messages/1", nil
}

func (m *mockPushProvider) SendMulticast(ctx context.Context, msg *model.PushMessage) (*model.BatchResult, error) {
	m.mu.Lock()
	m.multicasts = append(m.multicasts, msg)
	m.mu.Unlock()
	if m.multicastFn != nil {
		return m.multicastFn(ctx, msg)
	}
	return &model.BatchResult{SuccessCount: len(msg.Tokens)}, nil
}

func (m *mockPushProvider) ManageTopic(ctx context.Context, tokens []string, topic string, action TopicAction) (*model.TopicResult, error) {
	m.mu.Lock()
	m.topicCalls++
	m.mu.Unlock()
	if m.manageTopicFn != nil {
		return m.manageTopicFn(ctx, tokens, topic, action)
	}
	return &model.TopicResult{SuccessCount: len(tokens)}, nil
}

func (m *mockPushProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent) + len(m.multicasts) + m.topicCalls
}

type notifyCall struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// mockNotifier records SendToOne calls. It is safe for concurrent use.
type mockNotifier struct {
	mu     sync.Mutex
	sendFn func(ctx context.Context, token string) error
	calls  []notifyCall
}

func (m *mockNotifier) SendToOne(ctx context.Context, token, title, body string, data map[string]string) error {
	m.mu.Lock()
	cp := make(map[string]string, len(data))
	for k, v := range data {
		cp[k] = v
	}
	m.calls = append(m.calls, notifyCall{Token: token, Title: title, Body: body, Data: cp})
	m.mu.Unlock()

	if m.sendFn != nil {
		return m.sendFn(ctx, token)
	}
	return nil
}

func (m *mockNotifier) tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Token)
	}
	return out
}

type mockTokenLookup struct {
	tokens map[int64][]string
	err    error
}

func (m *mockTokenLookup) TokensFor(ctx context.Context, userID int64) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tokens[userID], nil
}

type putCall struct {
	Collection string
	DocID      string
	Fields     map[string]any
}

type mockDocumentStore struct {
	mu    sync.Mutex
	err   error
	calls []putCall
}

func (m *mockDocumentStore) Put(ctx context.Context, collection, docID string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, putCall{Collection: collection, DocID: docID, Fields: fields})
	return m.err
}

// mockPruner records pruned tokens. It is safe for concurrent use.
type mockPruner struct {
	mu     sync.Mutex
	pruned [][]string
}

func (m *mockPruner) PruneTokens(ctx context.Context, tokens []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = append(m.pruned, tokens)
}

func (m *mockPruner) tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, batch := range m.pruned {
		out = append(out, batch...)
	}
	return out
}
