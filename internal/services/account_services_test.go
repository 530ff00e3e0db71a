package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/jwt"
	"github.com/localbookr/marketplace-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(f *fixture) *AuthService {
	tokens := jwt.NewService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewAuthService(f.users, tokens, bcrypt.MinCost, f.logger)
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("register then login", func(t *testing.T) {
		f := newFixture()
		auth := newAuth(f)

		resp, err := auth.Register(ctx, models.RegisterRequest{
			Name: " Asha ", Email: "Asha@Example.com", Phone: "9123456780", Password: "secret1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, int64(3600), resp.ExpiresIn)
		assert.Equal(t, models.RoleCustomer, resp.User.Role)
		assert.Equal(t, "Asha", resp.User.Name)

		login, err := auth.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, login.User.ID)

		me, err := auth.Me(ctx, resp.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", me.Email)
	})

	t.Run("phone is validated and normalized", func(t *testing.T) {
		f := newFixture()
		auth := newAuth(f)

		_, err := auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@example.com", Phone: "12345", Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidPhone)

		resp, err := auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@example.com", Phone: "+91 98765-43210", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "9876543210", resp.User.Phone)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture()
		auth := newAuth(f)
		req := models.RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9123456781", Password: "secret1"}

		_, err := auth.Register(ctx, req)
		require.NoError(t, err)
		_, err = auth.Register(ctx, req)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("bad credentials look alike", func(t *testing.T) {
		f := newFixture()
		auth := newAuth(f)
		_, err := auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9123456781", Password: "secret1"})
		require.NoError(t, err)

		_, err = auth.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("refresh picks up new role", func(t *testing.T) {
		f := newFixture()
		auth := newAuth(f)
		resp, err := auth.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9123456781", Password: "secret1"})
		require.NoError(t, err)
		require.NoError(t, f.users.setRole(resp.User.ID, models.RoleAdmin))

		refreshed, err := auth.Refresh(ctx, resp.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, refreshed.User.Role)
		assert.Empty(t, refreshed.RefreshToken)

		_, err = auth.Refresh(ctx, resp.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("list users clamps paging", func(t *testing.T) {
		f := newFixture()
		f.customer()
		f.users.add("B", "b@example.com", "2", models.RoleAdmin)

		users, total, err := newAuth(f).ListUsers(ctx, 0, -5)
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, 2, total)
	})
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	catalog := NewCatalogService(f.services, f.logger)

	svc, err := catalog.Create(ctx, models.ServiceRequest{Name: " Plumbing ", BasePrice: 499, Icon: "wrench"})
	require.NoError(t, err)
	assert.Equal(t, "Plumbing", svc.Name)

	_, err = catalog.Create(ctx, models.ServiceRequest{Name: "Plumbing", BasePrice: 1})
	assert.ErrorIs(t, err, ErrServiceExists)

	maxPrice := 999.0
	updated, err := catalog.Update(ctx, svc.ID, models.ServiceRequest{Name: "Plumbing", BasePrice: 549, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, 549.0, updated.BasePrice)
	assert.Equal(t, &maxPrice, updated.MaxPrice)

	list, err := catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = catalog.Update(ctx, uuid.New(), models.ServiceRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	require.NoError(t, catalog.Delete(ctx, svc.ID))
	assert.ErrorIs(t, catalog.Delete(ctx, svc.ID), ErrServiceNotFound)
}

type fakeUploader struct {
	folder, filename string
	err              error
}

func (u *fakeUploader) Upload(_ context.Context, file io.Reader, folder, filename string) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	u.folder, u.filename = folder, filename
	return &storage.UploadResult{URL: "https://img.example.com/" + filename, PublicID: filename}, nil
}

func TestProviderService(t *testing.T) {
	ctx := context.Background()

	newProviders := func(f *fixture, uploader storage.ImageUploader) *ProviderService {
		return NewProviderService(f.providers, f.services, newAuth(f), uploader, f.logger)
	}
	registration := models.ProviderRegisterRequest{
		Name: "Ravi", Email: "ravi@example.com", Phone: "9876543210", Password: "secret1",
		Skill: "Plumbing", Area: " Cidco ",
	}

	t.Run("self registration awaits approval", func(t *testing.T) {
		f := newFixture()
		f.services.add("Plumbing", 499)
		providers := newProviders(f, nil)

		p, err := providers.Register(ctx, registration)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalPending, p.ApprovalStatus)
		assert.False(t, p.IsEligible())
		assert.Equal(t, "Cidco", p.Area)
		assert.Equal(t, []models.ProviderPhoto{}, p.Photos)

		user, err := f.users.GetUserByEmail(ctx, "ravi@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.RoleProvider, user.Role)

		pending, err := providers.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		approved, err := providers.Approve(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, approved.IsEligible())

		pending, err = providers.List(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, pending)

		rejected, err := providers.Reject(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, rejected.IsActive)
	})

	t.Run("skill must name a service", func(t *testing.T) {
		f := newFixture()
		_, err := newProviders(f, nil).Register(ctx, registration)
		assert.ErrorIs(t, err, ErrUnknownSkill)
	})

	t.Run("admin create opens a pending provider account", func(t *testing.T) {
		f := newFixture()
		f.services.add("Plumbing", 499)
		providers := newProviders(f, nil)

		req := models.CreateProviderRequest{Name: "Sunil", Phone: "+91 98765 01234", Skill: "Plumbing", Area: "Waluj"}
		p, err := providers.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalPending, p.ApprovalStatus)
		assert.False(t, p.IsActive)
		assert.False(t, p.IsEligible())

		user, ok := f.users.byID(p.UserID)
		require.True(t, ok)
		assert.Equal(t, models.RoleProvider, user.Role)
		assert.Equal(t, "9876501234", user.Phone)
		assert.Equal(t, "9876501234@provider.local", user.Email)
		assert.NotEmpty(t, user.PasswordHash)

		pending, err := providers.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		_, err = providers.Create(ctx, req)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("admin create leaves existing users alone", func(t *testing.T) {
		f := newFixture()
		f.services.add("Plumbing", 499)
		admin := f.users.add("Root", "root@example.com", "9123456789", models.RoleAdmin)
		providers := newProviders(f, nil)

		_, err := providers.Create(ctx, models.CreateProviderRequest{
			Name: "Root", Email: "root@example.com", Phone: "9123456789", Skill: "Plumbing", Area: "Cidco",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)

		stored, _ := f.users.byID(admin.ID)
		assert.Equal(t, models.RoleAdmin, stored.Role)
		assert.Empty(t, f.providers.providers)

		_, err = providers.Create(ctx, models.CreateProviderRequest{Name: "X", Phone: "12", Skill: "Plumbing", Area: "Cidco"})
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})

	t.Run("update validates", func(t *testing.T) {
		f := newFixture()
		f.services.add("Plumbing", 499)
		p := f.provider("Ravi", "Plumbing", "Cidco", 4)
		providers := newProviders(f, nil)

		bad := "Dancing"
		_, err := providers.Update(ctx, p.ID, models.ProviderUpdate{Skill: &bad})
		assert.ErrorIs(t, err, ErrUnknownSkill)

		status := models.ApprovalStatus("MAYBE")
		_, err = providers.Update(ctx, p.ID, models.ProviderUpdate{ApprovalStatus: &status})
		assert.ErrorIs(t, err, ErrInvalidApproval)

		area := "Garkheda"
		updated, err := providers.Update(ctx, p.ID, models.ProviderUpdate{Area: &area})
		require.NoError(t, err)
		assert.Equal(t, "Garkheda", updated.Area)

		require.NoError(t, providers.Delete(ctx, p.ID))
		assert.ErrorIs(t, providers.Delete(ctx, uuid.New()), ErrProviderNotFound)
	})

	t.Run("self service photos and push token", func(t *testing.T) {
		f := newFixture()
		p := f.provider("Ravi", "Plumbing", "Cidco", 4)
		uploader := &fakeUploader{}
		providers := newProviders(f, uploader)

		require.NoError(t, providers.SetPushToken(ctx, p.UserID, " sub-1 "))
		stored, _ := f.providers.byID(p.ID)
		require.NotNil(t, stored.PushToken)
		assert.Equal(t, "sub-1", *stored.PushToken)

		caption := "Bathroom refit"
		photo, err := providers.UploadPhoto(ctx, p.UserID, strings.NewReader("jpeg"), "bath.jpg", &caption)
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/bath.jpg", photo.URL)
		assert.Equal(t, p.ID.String(), uploader.folder)

		_, err = providers.AddPhoto(ctx, p.UserID, models.AddPhotoRequest{URL: "https://img.example.com/2.jpg"})
		require.NoError(t, err)

		me, err := providers.Me(ctx, p.UserID)
		require.NoError(t, err)
		require.Len(t, me.Photos, 2)
		assert.Equal(t, 1, me.Photos[0].Position)

		require.NoError(t, providers.DeletePhoto(ctx, p.UserID, photo.ID))
		assert.ErrorIs(t, providers.DeletePhoto(ctx, p.UserID, photo.ID), ErrPhotoNotFound)

		_, err = providers.Me(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("uploads disabled", func(t *testing.T) {
		f := newFixture()
		p := f.provider("Ravi", "Plumbing", "Cidco", 4)

		_, err := newProviders(f, nil).UploadPhoto(ctx, p.UserID, strings.NewReader("x"), "a.jpg", nil)
		assert.ErrorIs(t, err, ErrUploadsDisabled)
	})
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := NewNotificationService(f.notifications)
	user := uuid.New()

	empty, err := svc.List(ctx, user, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	f.dispatcher.Dispatch(ctx, []Effect{
		Notify(user, "first", models.NotificationInfo),
		Notify(user, "second", models.NotificationSuccess),
		Notify(uuid.New(), "someone else", models.NotificationInfo),
	})

	items, err := svc.List(ctx, user, 500)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)

	require.NoError(t, svc.MarkRead(ctx, user, items[0].ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), items[1].ID), ErrNotificationNotFound)
}

func TestExportService_WriteCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.services.add("Deep Cleaning", 1200.5)
	customer := f.users.add("Kapoor, R", "k@example.com", "9000000000", models.RoleCustomer)
	p := f.provider("Ravi", "Deep Cleaning", "Cidco", 4)

	assigned := f.bookings.put(models.Booking{
		CustomerID: customer.ID, ServiceID: svc.ID, ProviderID: uuid.NullUUID{UUID: p.ID, Valid: true},
		Area: "Cidco", Date: "2024-06-01", Time: "10:00", Amount: 1200.5,
		Status: models.BookingAssigned, CreatedAt: time.Now(),
	})
	f.bookings.put(models.Booking{
		CustomerID: customer.ID, ServiceID: svc.ID,
		Area: "Waluj", Date: "2024-06-02", Time: "11:00", Amount: 1200.5,
		Status: models.BookingPending, CreatedAt: time.Now().Add(-time.Hour),
	})

	var buf bytes.Buffer
	n, err := NewExportService(f.bookings).WriteCSV(ctx, &buf, models.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "Date", "Time", "Customer", "Phone", "Service", "Provider", "Area", "Status", "Amount"}, records[0])
	assert.Equal(t, []string{
		assigned.String(), "2024-06-01", "10:00", "Kapoor, R", "9000000000",
		"Deep Cleaning", "Ravi", "Cidco", "ASSIGNED", "1200.5",
	}, records[1])
	assert.Equal(t, "Unassigned", records[2][6])
}
