package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/email"
	"github.com/localbookr/marketplace-backend/pkg/push"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// ----------------------------------------------------------------------------
// bookings
// ----------------------------------------------------------------------------

type fakeBookingStore struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*models.Booking
	providers *fakeProviderStore
	services  *fakeServiceStore
	users     *fakeUserStore

	listStaleErr error
	updateErr    error
	statsCalls   int
}

func newFakeBookingStore(providers *fakeProviderStore, services *fakeServiceStore, users *fakeUserStore) *fakeBookingStore {
	return &fakeBookingStore{
		bookings:  map[uuid.UUID]*models.Booking{},
		providers: providers,
		services:  services,
		users:     users,
	}
}

func (f *fakeBookingStore) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.UpdatedAt = b.CreatedAt
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

// put stores a booking as-is, for test setup
func (f *fakeBookingStore) put(b models.Booking) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.bookings[b.ID] = &b
	return b.ID
}

func (f *fakeBookingStore) get(id uuid.UUID) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.bookings[id]
}

func (f *fakeBookingStore) detail(b *models.Booking) models.BookingDetail {
	d := models.BookingDetail{Booking: *b}
	if f.users != nil {
		if u, ok := f.users.byID(b.CustomerID); ok {
			d.CustomerName = u.Name
			d.CustomerEmail = u.Email
			d.CustomerPhone = u.Phone
		}
	}
	if f.services != nil {
		if s, ok := f.services.byID(b.ServiceID); ok {
			d.ServiceName = s.Name
		}
	}
	if b.ProviderID.Valid && f.providers != nil {
		if p, ok := f.providers.byID(b.ProviderID.UUID); ok {
			d.ProviderUserID = uuid.NullUUID{UUID: p.UserID, Valid: true}
			name, mail, phone := p.Name, p.Email, p.Phone
			d.ProviderName = &name
			d.ProviderEmail = &mail
			d.ProviderPhone = &phone
			d.ProviderPushToken = p.PushToken
		}
	}
	return d
}

func (f *fakeBookingStore) GetDetail(_ context.Context, id uuid.UUID) (*models.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	d := f.detail(b)
	return &d, nil
}

func (f *fakeBookingStore) List(_ context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range f.bookings {
		if filter.CustomerID != nil && b.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ProviderID != nil && (!b.ProviderID.Valid || b.ProviderID.UUID != *filter.ProviderID) {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, f.detail(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookingStore) ListStale(_ context.Context, status models.BookingStatus, before time.Time, limit int) ([]models.BookingDetail, error) {
	if f.listStaleErr != nil {
		return nil, f.listStaleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range f.bookings {
		if b.Status == status && b.CreatedAt.Before(before) {
			out = append(out, f.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBookingStore) TouchWaiting(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok && b.Status == models.BookingWaiting {
		b.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.BookingStatus, providerID uuid.NullUUID) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return database.ErrStaleStatus
	}
	b.Status = to
	b.ProviderID = providerID
	b.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookingStore) SetRating(_ context.Context, id uuid.UUID, rating int, review *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	if b.Rating != nil {
		return database.ErrAlreadyRated
	}
	b.Rating = &rating
	b.Review = review
	return nil
}

func (f *fakeBookingStore) ProviderRatingStats(_ context.Context, providerID uuid.UUID) (*database.RatingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	stats := &database.RatingStats{}
	sum := 0
	for _, b := range f.bookings {
		if b.ProviderID.Valid && b.ProviderID.UUID == providerID && b.Rating != nil {
			stats.Count++
			sum += *b.Rating
		}
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats, nil
}

func (f *fakeBookingStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.bookings, id)
	return nil
}

// ----------------------------------------------------------------------------
// providers
// ----------------------------------------------------------------------------

type fakeProviderStore struct {
	mu        sync.Mutex
	providers map[uuid.UUID]*models.Provider
	photos    map[uuid.UUID][]models.ProviderPhoto
	users     *fakeUserStore

	findErr  error
	photoErr error
}

func newFakeProviderStore() *fakeProviderStore {
	return &fakeProviderStore{
		providers: map[uuid.UUID]*models.Provider{},
		photos:    map[uuid.UUID][]models.ProviderPhoto{},
	}
}

// add registers an active, approved provider unless p says otherwise
func (f *fakeProviderStore) add(p models.Provider) *models.Provider {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UserID == uuid.Nil {
		p.UserID = uuid.New()
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = models.ApprovalActive
		p.IsActive = true
	}
	if p.CreatedAt.IsZero() {
		// earlier additions are older
		p.CreatedAt = time.Now().Add(-time.Duration(1000-len(f.providers)) * time.Minute)
	}
	f.providers[p.ID] = &p
	return &p
}

func (f *fakeProviderStore) byID(id uuid.UUID) (models.Provider, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return models.Provider{}, false
	}
	return *p, true
}

func (f *fakeProviderStore) insert(p *models.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.providers {
		if existing.UserID == p.UserID {
			return database.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	if f.users != nil {
		if u, ok := f.users.byID(p.UserID); ok {
			p.Name, p.Email, p.Phone = u.Name, u.Email, u.Phone
		}
	}
	copied := *p
	f.providers[p.ID] = &copied
	return nil
}

func (f *fakeProviderStore) CreateWithUser(ctx context.Context, user *models.User, p *models.Provider) error {
	if f.users != nil {
		if err := f.users.CreateUser(ctx, user); err != nil {
			return err
		}
	}
	p.UserID = user.ID
	return f.insert(p)
}

func (f *fakeProviderStore) GetByID(_ context.Context, id uuid.UUID) (*models.Provider, error) {
	p, ok := f.byID(id)
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProviderStore) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.providers {
		if p.UserID == userID && !p.IsDeleted {
			copied := *p
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeProviderStore) ListBySkill(_ context.Context, skill string) ([]models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Provider
	for _, p := range f.providers {
		if p.Skill == skill && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (f *fakeProviderStore) List(_ context.Context, pendingOnly bool) ([]models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Provider
	for _, p := range f.providers {
		if p.IsDeleted || (pendingOnly && p.ApprovalStatus != models.ApprovalPending) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProviderStore) FindBestCandidate(_ context.Context, skill, area string) (*models.Provider, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(area)
	var candidates []models.Provider
	for _, p := range f.providers {
		if p.Skill != skill || !p.IsEligible() || p.Area == "" {
			continue
		}
		hay := strings.ToLower(p.Area)
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			candidates = append(candidates, *p)
		}
	}
	if len(candidates) == 0 {
		return nil, database.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Rating != candidates[j].Rating {
			return candidates[i].Rating > candidates[j].Rating
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return &candidates[0], nil
}

func (f *fakeProviderStore) Update(_ context.Context, id uuid.UUID, u models.ProviderUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return database.ErrNotFound
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.ApprovalStatus != nil {
		p.ApprovalStatus = *u.ApprovalStatus
	}
	if u.Skill != nil {
		p.Skill = *u.Skill
	}
	if u.Area != nil {
		p.Area = *u.Area
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
	if u.Bio != nil {
		p.Bio = u.Bio
	}
	return nil
}

func (f *fakeProviderStore) SetApproval(_ context.Context, id uuid.UUID, status models.ApprovalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return database.ErrNotFound
	}
	p.ApprovalStatus = status
	p.IsActive = status == models.ApprovalActive
	return nil
}

func (f *fakeProviderStore) SetRating(_ context.Context, id uuid.UUID, rating float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return database.ErrNotFound
	}
	p.Rating = rating
	return nil
}

func (f *fakeProviderStore) SetPushToken(_ context.Context, userID uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.providers {
		if p.UserID == userID {
			if token == "" {
				p.PushToken = nil
			} else {
				p.PushToken = &token
			}
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeProviderStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return database.ErrNotFound
	}
	p.IsDeleted = true
	p.IsActive = false
	return nil
}

func (f *fakeProviderStore) ListPhotos(_ context.Context, providerIDs ...uuid.UUID) (map[uuid.UUID][]models.ProviderPhoto, error) {
	if f.photoErr != nil {
		return nil, f.photoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID][]models.ProviderPhoto{}
	for _, id := range providerIDs {
		if photos, ok := f.photos[id]; ok {
			out[id] = append([]models.ProviderPhoto(nil), photos...)
		}
	}
	return out, nil
}

func (f *fakeProviderStore) AddPhoto(_ context.Context, photo *models.ProviderPhoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	photo.ID = uuid.New()
	photo.Position = len(f.photos[photo.ProviderID]) + 1
	photo.CreatedAt = time.Now()
	f.photos[photo.ProviderID] = append(f.photos[photo.ProviderID], *photo)
	return nil
}

func (f *fakeProviderStore) DeletePhoto(_ context.Context, providerID, photoID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	photos := f.photos[providerID]
	for i, p := range photos {
		if p.ID == photoID {
			f.photos[providerID] = append(photos[:i], photos[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

// ----------------------------------------------------------------------------
// services catalog
// ----------------------------------------------------------------------------

type fakeServiceStore struct {
	mu       sync.Mutex
	services map[uuid.UUID]*models.Service
}

func newFakeServiceStore() *fakeServiceStore {
	return &fakeServiceStore{services: map[uuid.UUID]*models.Service{}}
}

func (f *fakeServiceStore) add(name string, basePrice float64) *models.Service {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.Service{ID: uuid.New(), Name: name, BasePrice: basePrice, CreatedAt: time.Now()}
	f.services[s.ID] = s
	copied := *s
	return &copied
}

func (f *fakeServiceStore) byID(id uuid.UUID) (models.Service, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return models.Service{}, false
	}
	return *s, true
}

func (f *fakeServiceStore) List(context.Context) ([]models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Service, 0, len(f.services))
	for _, s := range f.services {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeServiceStore) GetByID(_ context.Context, id uuid.UUID) (*models.Service, error) {
	s, ok := f.byID(id)
	if !ok {
		return nil, database.ErrNotFound
	}
	return &s, nil
}

func (f *fakeServiceStore) GetByName(_ context.Context, name string) (*models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.services {
		if s.Name == name {
			copied := *s
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeServiceStore) Create(_ context.Context, s *models.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.services {
		if existing.Name == s.Name {
			return database.ErrDuplicate
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	copied := *s
	f.services[s.ID] = &copied
	return nil
}

func (f *fakeServiceStore) Update(_ context.Context, s *models.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.services[s.ID]; !ok {
		return database.ErrNotFound
	}
	copied := *s
	f.services[s.ID] = &copied
	return nil
}

func (f *fakeServiceStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.services[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

// ----------------------------------------------------------------------------
// users
// ----------------------------------------------------------------------------

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserStore) add(name, mail, phone string, role models.Role) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{ID: uuid.New(), Name: name, Email: mail, Phone: phone, Role: role, CreatedAt: time.Now()}
	f.users[u.ID] = u
	copied := *u
	return &copied
}

func (f *fakeUserStore) byID(id uuid.UUID) (models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range f.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID(id)
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, mail string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(mail) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

// setRole changes a stored role, for test setup
func (f *fakeUserStore) setRole(id uuid.UUID, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserStore) ListUsers(_ context.Context, limit, offset int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return []models.User{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserStore) CountUsers(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

// ----------------------------------------------------------------------------
// notifications and gateways
// ----------------------------------------------------------------------------

type fakeNotificationStore struct {
	mu    sync.Mutex
	items []models.Notification
	err   error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotificationStore) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		if f.items[i].UserID == userID {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = true
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeNotificationStore) forUser(userID uuid.UUID) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeEmailGateway struct {
	mu   sync.Mutex
	sent []email.Assignment
	err  error
}

func (f *fakeEmailGateway) GetName() string { return "fake" }

func (f *fakeEmailGateway) SendAssignment(_ context.Context, a email.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, a)
	return nil
}

type fakePushGateway struct {
	mu   sync.Mutex
	sent []push.Message
	err  error
}

func (f *fakePushGateway) GetName() string { return "fake" }

func (f *fakePushGateway) Send(_ context.Context, msg push.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var errBoom = errors.New("boom")

// ----------------------------------------------------------------------------
// fixture
// ----------------------------------------------------------------------------

type fixture struct {
	users         *fakeUserStore
	services      *fakeServiceStore
	providers     *fakeProviderStore
	bookings      *fakeBookingStore
	notifications *fakeNotificationStore
	email         *fakeEmailGateway
	push          *fakePushGateway

	ratings    *RatingService
	matcher    *MatchingService
	booking    *BookingService
	dispatcher *Dispatcher
	logger     *logrus.Logger
}

func newFixture() *fixture {
	f := &fixture{
		users:         newFakeUserStore(),
		services:      newFakeServiceStore(),
		providers:     newFakeProviderStore(),
		notifications: &fakeNotificationStore{},
		email:         &fakeEmailGateway{},
		push:          &fakePushGateway{},
		logger:        quietLogger(),
	}
	f.providers.users = f.users
	f.bookings = newFakeBookingStore(f.providers, f.services, f.users)
	f.ratings = NewRatingService(f.bookings, f.providers, f.logger)
	f.matcher = NewMatchingService(f.providers, nil, f.logger)
	f.booking = NewBookingService(f.bookings, f.services, f.providers, f.ratings, nil, f.logger)
	f.dispatcher = NewDispatcher(f.notifications, f.email, f.push, f.logger)
	return f
}

// provider creates a user and an eligible provider for them
func (f *fixture) provider(name, skill, area string, rating float64) *models.Provider {
	u := f.users.add(name, strings.ToLower(name)+"@example.com", "9876543210", models.RoleProvider)
	return f.providers.add(models.Provider{
		UserID: u.ID,
		Skill:  skill,
		Area:   area,
		Rating: rating,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
	})
}

func (f *fixture) customer() *models.User {
	return f.users.add("Asha", "asha@example.com", "9123456780", models.RoleCustomer)
}
