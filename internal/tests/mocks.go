package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// ──────────────────────────────────────────────
// IN-MEMORY TRANSACTIONAL STORE
// ──────────────────────────────────────────────

// MemStore is an in-memory implementation of repository.TxManager backed by
// plain maps. Transactions are serialized on one mutex, so concurrent InTx
// callers observe the same isolation the real store provides; a failed fn
// restores the snapshot taken at transaction start.
type MemStore struct {
	mu           sync.Mutex
	buses        map[string]*domain.Bus
	drivers      map[string]*domain.Driver
	bookings     map[string]*domain.Booking
	availability map[string]*domain.AvailableBus

	// Counters for verification
	TxCallCount     int32
	TxCommitCount   int32
	TxRollbackCount int32

	// Error injection
	InTxError error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		buses:        make(map[string]*domain.Bus),
		drivers:      make(map[string]*domain.Driver),
		bookings:     make(map[string]*domain.Booking),
		availability: make(map[string]*domain.AvailableBus),
	}
}

// InTx runs fn against the store under the store-wide mutex.
func (s *MemStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	atomic.AddInt32(&s.TxCallCount, 1)
	if s.InTxError != nil {
		return s.InTxError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(&memTx{store: s}); err != nil {
		s.restore(snapshot)
		atomic.AddInt32(&s.TxRollbackCount, 1)
		return err
	}
	atomic.AddInt32(&s.TxCommitCount, 1)
	return nil
}

type memSnapshot struct {
	buses        map[string]*domain.Bus
	drivers      map[string]*domain.Driver
	bookings     map[string]*domain.Booking
	availability map[string]*domain.AvailableBus
}

func (s *MemStore) clone() memSnapshot {
	snap := memSnapshot{
		buses:        make(map[string]*domain.Bus, len(s.buses)),
		drivers:      make(map[string]*domain.Driver, len(s.drivers)),
		bookings:     make(map[string]*domain.Booking, len(s.bookings)),
		availability: make(map[string]*domain.AvailableBus, len(s.availability)),
	}
	for k, v := range s.buses {
		cp := *v
		snap.buses[k] = &cp
	}
	for k, v := range s.drivers {
		cp := *v
		snap.drivers[k] = &cp
	}
	for k, v := range s.bookings {
		cp := *v
		snap.bookings[k] = &cp
	}
	for k, v := range s.availability {
		cp := *v
		snap.availability[k] = &cp
	}
	return snap
}

func (s *MemStore) restore(snap memSnapshot) {
	s.buses = snap.buses
	s.drivers = snap.drivers
	s.bookings = snap.bookings
	s.availability = snap.availability
}

// Seed helpers, usable outside transactions.

// AddBus adds a bus to the store.
func (s *MemStore) AddBus(bus *domain.Bus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buses[bus.ID] = bus
}

// AddDriver adds a driver to the store.
func (s *MemStore) AddDriver(driver *domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[driver.ID] = driver
}

// AddBooking adds a booking to the store.
func (s *MemStore) AddBooking(booking *domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = booking
}

// AddEntry adds an availability entry to the store.
func (s *MemStore) AddEntry(entry *domain.AvailableBus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability[entry.BusID] = entry
}

// Assertion helpers.

// GetBus returns a bus for test assertions.
func (s *MemStore) GetBus(id string) *domain.Bus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buses[id]; ok {
		cp := *b
		return &cp
	}
	return nil
}

// GetDriver returns a driver for test assertions.
func (s *MemStore) GetDriver(id string) *domain.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drivers[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}

// GetBooking returns a booking for test assertions.
func (s *MemStore) GetBooking(id string) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		cp := *b
		return &cp
	}
	return nil
}

// GetEntry returns an availability entry for test assertions.
func (s *MemStore) GetEntry(busID string) *domain.AvailableBus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.availability[busID]; ok {
		cp := *e
		return &cp
	}
	return nil
}

// CountBookings returns the number of bookings in the ledger.
func (s *MemStore) CountBookings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// BookingsByStatus returns the bookings currently in the given status.
func (s *MemStore) BookingsByStatus(status domain.BookingStatus) []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.Booking
	for _, b := range s.bookings {
		if b.Status == status {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result
}

// memTx adapts the locked store to repository.Tx. Its repositories never
// lock: the transaction already holds the store mutex.
type memTx struct {
	store *MemStore
}

func (t *memTx) Buses() repository.BusRepository {
	return &memBusRepo{store: t.store}
}

func (t *memTx) Drivers() repository.DriverRepository {
	return &memDriverRepo{store: t.store}
}

func (t *memTx) Bookings() repository.BookingRepository {
	return &memBookingRepo{store: t.store}
}

func (t *memTx) Availability() repository.AvailabilityRepository {
	return &memAvailabilityRepo{store: t.store}
}

type memBusRepo struct {
	store *MemStore
}

func (r *memBusRepo) Create(ctx context.Context, bus *domain.Bus) error {
	cp := *bus
	r.store.buses[bus.ID] = &cp
	return nil
}

func (r *memBusRepo) GetByID(ctx context.Context, id string) (*domain.Bus, error) {
	bus, ok := r.store.buses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *bus
	return &cp, nil
}

func (r *memBusRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Bus, error) {
	return r.GetByID(ctx, id)
}

func (r *memBusRepo) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Bus, error) {
	var result []*domain.Bus
	for _, b := range r.store.buses {
		if b.OwnerID == ownerID {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memBusRepo) GetAll(ctx context.Context) ([]*domain.Bus, error) {
	result := make([]*domain.Bus, 0, len(r.store.buses))
	for _, b := range r.store.buses {
		cp := *b
		result = append(result, &cp)
	}
	return result, nil
}

func (r *memBusRepo) SetActive(ctx context.Context, id, driverID, routeID string) error {
	bus, ok := r.store.buses[id]
	if !ok {
		return repository.ErrNotFound
	}
	bus.Active = true
	bus.CurrentDriver = driverID
	bus.CurrentRoute = routeID
	return nil
}

func (r *memBusRepo) ClearActive(ctx context.Context, id string) error {
	bus, ok := r.store.buses[id]
	if !ok {
		return repository.ErrNotFound
	}
	bus.Active = false
	bus.CurrentDriver = ""
	bus.CurrentRoute = ""
	return nil
}

type memDriverRepo struct {
	store *MemStore
}

func (r *memDriverRepo) Create(ctx context.Context, driver *domain.Driver) error {
	cp := *driver
	r.store.drivers[driver.ID] = &cp
	return nil
}

func (r *memDriverRepo) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	driver, ok := r.store.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *driver
	return &cp, nil
}

func (r *memDriverRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	return r.GetByID(ctx, id)
}

func (r *memDriverRepo) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	for _, d := range r.store.drivers {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memDriverRepo) GetByCompany(ctx context.Context, companyID string) ([]*domain.Driver, error) {
	var result []*domain.Driver
	for _, d := range r.store.drivers {
		if d.CompanyID == companyID {
			cp := *d
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memDriverRepo) SetActive(ctx context.Context, id, busID, routeID string) error {
	driver, ok := r.store.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Active = true
	driver.CurrentBus = busID
	driver.CurrentRoute = routeID
	return nil
}

func (r *memDriverRepo) ClearActive(ctx context.Context, id string) error {
	driver, ok := r.store.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Active = false
	driver.CurrentBus = ""
	driver.CurrentRoute = ""
	return nil
}

type memBookingRepo struct {
	store *MemStore
}

func (r *memBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	cp := *booking
	r.store.bookings[booking.ID] = &cp
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *booking
	return &cp, nil
}

func (r *memBookingRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookingRepo) GetByClient(ctx context.Context, clientID string) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range r.store.bookings {
		if b.ClientID == clientID {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memBookingRepo) GetActiveByBus(ctx context.Context, busID string) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range r.store.bookings {
		if b.BusID == busID && !b.Status.Terminal() {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	if _, ok := r.store.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *booking
	r.store.bookings[booking.ID] = &cp
	return nil
}

type memAvailabilityRepo struct {
	store *MemStore
}

func (r *memAvailabilityRepo) Create(ctx context.Context, entry *domain.AvailableBus) error {
	cp := *entry
	r.store.availability[entry.BusID] = &cp
	return nil
}

func (r *memAvailabilityRepo) GetByBusID(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	entry, ok := r.store.availability[busID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *memAvailabilityRepo) GetByBusIDForUpdate(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	return r.GetByBusID(ctx, busID)
}

func (r *memAvailabilityRepo) GetByRoute(ctx context.Context, routeID string) ([]*domain.AvailableBus, error) {
	var result []*domain.AvailableBus
	for _, e := range r.store.availability {
		if e.RouteID == routeID && e.AvailableSeats > 0 {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memAvailabilityRepo) GetByOwner(ctx context.Context, ownerID string) ([]*domain.AvailableBus, error) {
	var result []*domain.AvailableBus
	for _, e := range r.store.availability {
		if e.OwnerID == ownerID {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memAvailabilityRepo) UpdateSeats(ctx context.Context, busID string, availableSeats int) error {
	entry, ok := r.store.availability[busID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.AvailableSeats = availableSeats
	return nil
}

func (r *memAvailabilityRepo) UpdatePassengers(ctx context.Context, busID string, passengersOnBoard int) error {
	entry, ok := r.store.availability[busID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.PassengersOnBoard = passengersOnBoard
	return nil
}

func (r *memAvailabilityRepo) Delete(ctx context.Context, busID string) error {
	if _, ok := r.store.availability[busID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.availability, busID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK ROUTE REPOSITORY
// ──────────────────────────────────────────────

// MockRouteRepository is a mock implementation of RouteRepository.
type MockRouteRepository struct {
	mu     sync.RWMutex
	routes map[string]*domain.Route

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockRouteRepository creates a new mock route repository.
func NewMockRouteRepository() *MockRouteRepository {
	return &MockRouteRepository{
		routes: make(map[string]*domain.Route),
	}
}

// AddRoute adds a route to the mock repository.
func (m *MockRouteRepository) AddRoute(route *domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
}

func (m *MockRouteRepository) Create(ctx context.Context, route *domain.Route) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
	return nil
}

func (m *MockRouteRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	route, ok := m.routes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *route
	return &copy, nil
}

func (m *MockRouteRepository) GetAll(ctx context.Context) ([]*domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Route, 0, len(m.routes))
	for _, r := range m.routes {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PROFILE REPOSITORIES
// ──────────────────────────────────────────────

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client

	// Error injection
	GetError error
}

// NewMockClientRepository creates a new mock client repository.
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

// AddClient adds a client to the mock repository.
func (m *MockClientRepository) AddClient(client *domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
	return nil
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *client
	return &copy, nil
}

// MockOwnerRepository is a mock implementation of OwnerRepository.
type MockOwnerRepository struct {
	mu     sync.RWMutex
	owners map[string]*domain.Owner
}

// NewMockOwnerRepository creates a new mock owner repository.
func NewMockOwnerRepository() *MockOwnerRepository {
	return &MockOwnerRepository{
		owners: make(map[string]*domain.Owner),
	}
}

// AddOwner adds an owner to the mock repository.
func (m *MockOwnerRepository) AddOwner(owner *domain.Owner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner.ID] = owner
}

func (m *MockOwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner.ID] = owner
	return nil
}

func (m *MockOwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *owner
	return &copy, nil
}

// MockDriverProfileRepository is a standalone mock of DriverRepository for
// tests that never open a transaction (identity resolution, registration).
type MockDriverProfileRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
}

// NewMockDriverProfileRepository creates a new mock driver repository.
func NewMockDriverProfileRepository() *MockDriverProfileRepository {
	return &MockDriverProfileRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverProfileRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverProfileRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverProfileRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverProfileRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	return m.GetByID(ctx, id)
}

func (m *MockDriverProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Email == email {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverProfileRepository) GetByCompany(ctx context.Context, companyID string) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Driver
	for _, d := range m.drivers {
		if d.CompanyID == companyID {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverProfileRepository) SetActive(ctx context.Context, id, busID, routeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Active = true
	driver.CurrentBus = busID
	driver.CurrentRoute = routeID
	return nil
}

func (m *MockDriverProfileRepository) ClearActive(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Active = false
	driver.CurrentBus = ""
	driver.CurrentRoute = ""
	return nil
}

// MockAvailabilityRepository is a standalone mock of AvailabilityRepository
// for read-path tests that never open a transaction.
type MockAvailabilityRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.AvailableBus

	// Counters for verification
	GetByRouteCallCount int32
	GetByBusIDCallCount int32

	// Error injection
	GetByRouteError error
}

// NewMockAvailabilityRepository creates a new mock availability repository.
func NewMockAvailabilityRepository() *MockAvailabilityRepository {
	return &MockAvailabilityRepository{
		entries: make(map[string]*domain.AvailableBus),
	}
}

// AddEntry adds an availability entry to the mock repository.
func (m *MockAvailabilityRepository) AddEntry(entry *domain.AvailableBus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.BusID] = entry
}

func (m *MockAvailabilityRepository) Create(ctx context.Context, entry *domain.AvailableBus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.BusID] = entry
	return nil
}

func (m *MockAvailabilityRepository) GetByBusID(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	atomic.AddInt32(&m.GetByBusIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[busID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *entry
	return &copy, nil
}

func (m *MockAvailabilityRepository) GetByBusIDForUpdate(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	return m.GetByBusID(ctx, busID)
}

func (m *MockAvailabilityRepository) GetByRoute(ctx context.Context, routeID string) ([]*domain.AvailableBus, error) {
	atomic.AddInt32(&m.GetByRouteCallCount, 1)
	if m.GetByRouteError != nil {
		return nil, m.GetByRouteError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AvailableBus
	for _, e := range m.entries {
		if e.RouteID == routeID && e.AvailableSeats > 0 {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockAvailabilityRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.AvailableBus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AvailableBus
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockAvailabilityRepository) UpdateSeats(ctx context.Context, busID string, availableSeats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[busID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.AvailableSeats = availableSeats
	return nil
}

func (m *MockAvailabilityRepository) UpdatePassengers(ctx context.Context, busID string, passengersOnBoard int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[busID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.PassengersOnBoard = passengersOnBoard
	return nil
}

func (m *MockAvailabilityRepository) Delete(ctx context.Context, busID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[busID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.entries, busID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireBusLock(ctx context.Context, busID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:bus:" + busID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseBusLock(ctx context.Context, busID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:bus:"+busID)
	return nil
}

// IsLocked checks if a bus is locked (for test assertions).
func (m *MockLockStore) IsLocked(busID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:bus:"+busID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK STREAM STORE
// ──────────────────────────────────────────────

// MockStreamStore is a mock implementation of StreamInterface. Published
// events are recorded and forwarded to any open subscriptions on the same
// route.
type MockStreamStore struct {
	mu        sync.Mutex
	published []redis.AvailabilityEvent
	subs      map[string][]*mockSubscription

	// Counters
	PublishCallCount int32

	// Error injection
	PublishError   error
	SubscribeError error
}

// NewMockStreamStore creates a new mock stream store.
func NewMockStreamStore() *MockStreamStore {
	return &MockStreamStore{
		subs: make(map[string][]*mockSubscription),
	}
}

func (m *MockStreamStore) Publish(ctx context.Context, event redis.AvailabilityEvent) error {
	atomic.AddInt32(&m.PublishCallCount, 1)
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	for _, sub := range m.subs[event.RouteID] {
		if !sub.closed {
			sub.events <- event
		}
	}
	return nil
}

func (m *MockStreamStore) Subscribe(ctx context.Context, routeID string) (redis.AvailabilitySubscription, error) {
	if m.SubscribeError != nil {
		return nil, m.SubscribeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := &mockSubscription{
		store:   m,
		routeID: routeID,
		events:  make(chan redis.AvailabilityEvent, 64),
	}
	m.subs[routeID] = append(m.subs[routeID], sub)
	return sub, nil
}

// PublishedEvents returns the recorded events (for test assertions).
func (m *MockStreamStore) PublishedEvents() []redis.AvailabilityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]redis.AvailabilityEvent, len(m.published))
	copy(result, m.published)
	return result
}

// LastEvent returns the most recently published event, or nil.
func (m *MockStreamStore) LastEvent() *redis.AvailabilityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		return nil
	}
	event := m.published[len(m.published)-1]
	return &event
}

// SubscriberCount returns the number of open subscriptions for a route.
func (m *MockStreamStore) SubscriberCount(routeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, sub := range m.subs[routeID] {
		if !sub.closed {
			count++
		}
	}
	return count
}

type mockSubscription struct {
	store   *MockStreamStore
	routeID string
	events  chan redis.AvailabilityEvent
	closed  bool
	once    sync.Once
}

func (s *mockSubscription) Events() <-chan redis.AvailabilityEvent {
	return s.events
}

func (s *mockSubscription) Close() error {
	s.once.Do(func() {
		s.store.mu.Lock()
		s.closed = true
		s.store.mu.Unlock()
		close(s.events)
	})
	return nil
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu      sync.RWMutex
	entries map[string]*redis.CachedEntry

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		entries: make(map[string]*redis.CachedEntry),
	}
}

func (m *MockCacheStore) GetEntry(ctx context.Context, busID string) (*redis.CachedEntry, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[busID]
	if !ok {
		return nil, nil // Cache miss.
	}
	copy := *entry
	return &copy, nil
}

func (m *MockCacheStore) SetEntry(ctx context.Context, entry *redis.CachedEntry) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.BusID] = entry
	return nil
}

func (m *MockCacheStore) SetEntriesBatch(ctx context.Context, entries []*redis.CachedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		m.entries[entry.BusID] = entry
	}
	return nil
}

func (m *MockCacheStore) InvalidateEntry(ctx context.Context, busID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, busID)
	return nil
}

// HasEntry checks if a bus entry is cached (for test assertions).
func (m *MockCacheStore) HasEntry(busID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[busID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of
// NotificationRepository. Entries are kept in append order.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *notification
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) GetByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].RecipientID == recipientID {
			copy := *m.notifications[i]
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountFor returns the number of feed entries for a recipient (for test
// assertions).
func (m *MockNotificationRepository) CountFor(recipientID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			count++
		}
	}
	return count
}

// LastFor returns the most recent feed entry for a recipient, or nil.
func (m *MockNotificationRepository) LastFor(recipientID string) *domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].RecipientID == recipientID {
			copy := *m.notifications[i]
			return &copy
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
