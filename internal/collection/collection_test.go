package collection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

type serviceStore = Store[models.Service, *models.Service]

func newServiceStore(t *testing.T) *serviceStore {
	t.Helper()
	backend, err := store.NewMemory()
	require.NoError(t, err)

	s := New[models.Service](backend, Schema[models.Service]{
		Name:     "services",
		NewPatch: func() Patch[models.Service] { return &models.ServicePatch{} },
		Fields: Fields[models.Service]{
			Featured: func(e *models.Service) bool { return e.Featured },
			Text:     func(e *models.Service) []string { return []string{e.Title, e.Description} },
		},
	})

	// deterministic, strictly increasing clock
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func svc(title string, order int) models.Service {
	return models.Service{Base: models.Base{Order: order}, Title: title, Description: title + " description"}
}

func titles(items []models.Service) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestCreateDefaultsOrderToZero(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.Service{Title: "Web", Description: "Sites"})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Order)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	created, err = s.Create(ctx, svc("Cloud", 7))
	require.NoError(t, err)
	assert.Equal(t, 7, created.Order)
}

func TestCreateReplacesClientID(t *testing.T) {
	s := newServiceStore(t)
	e := svc("Web", 0)
	e.ID = "client-chosen"

	created, err := s.Create(context.Background(), e)
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", created.ID)
}

func TestCreateValidation(t *testing.T) {
	s := newServiceStore(t)

	_, err := s.Create(context.Background(), models.Service{Base: models.Base{Order: -1}})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))

	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["description"])
	assert.True(t, fields["order"])

	items, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListSortsByOrderThenNewest(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()

	for _, e := range []models.Service{svc("b-old", 1), svc("a", 0), svc("b-new", 1), svc("c", 2)} {
		_, err := s.Create(ctx, e)
		require.NoError(t, err)
	}

	first, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b-new", "b-old", "c"}, titles(first))

	second, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListUsesSchemaCompare(t *testing.T) {
	backend, err := store.NewMemory()
	require.NoError(t, err)
	s := New[models.PricingTier](backend, Schema[models.PricingTier]{
		Name: "pricing",
		Compare: func(a, b *models.PricingTier) int {
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		},
	})
	ctx := context.Background()

	for _, p := range []float64{99, 9, 49} {
		_, err := s.Create(ctx, models.PricingTier{Name: fmt.Sprint(p), Price: p, BillingPeriod: models.BillingMonthly})
		require.NoError(t, err)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []float64{9, 49, 99}, []float64{items[0].Price, items[1].Price, items[2].Price})
}

func TestUpdateMergesPatch(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, svc("Web", 3))
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, &models.ServicePatch{Featured: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Featured)
	assert.Equal(t, "Web", updated.Title)
	assert.Equal(t, 3, updated.Order)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, svc("Web", 0))
	require.NoError(t, err)

	_, err = s.Update(ctx, created.ID, &models.ServicePatch{Title: ptr("")})
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Web", got.Title)
}

func TestUpdateMissing(t *testing.T) {
	s := newServiceStore(t)
	_, err := s.Update(context.Background(), "nope", &models.ServicePatch{Featured: ptr(true)})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, svc("a", 0))
	require.NoError(t, err)
	b, err := s.Create(ctx, svc("b", 1))
	require.NoError(t, err)
	_, err = s.Create(ctx, svc("c", 2))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "missing"), store.ErrNotFound)
	require.NoError(t, s.Delete(ctx, b.ID))

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, titles(items))
	assert.Equal(t, []int{0, 2}, []int{items[0].Order, items[1].Order})
	assert.Equal(t, a.ID, items[0].ID)
}

func TestBulkUpdate(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, svc("a", 0))
	require.NoError(t, err)
	_, err = s.Create(ctx, svc("b", 1))
	require.NoError(t, err)
	c, err := s.Create(ctx, svc("c", 2))
	require.NoError(t, err)

	n, err := s.BulkUpdate(ctx, nil, &models.ServicePatch{Featured: ptr(true)})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.BulkUpdate(ctx, []string{a.ID, "ghost", c.ID, a.ID}, &models.ServicePatch{Featured: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	featured, err := s.Filter(ctx, func(e *models.Service) bool { return e.Featured })
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, titles(featured))
}

func TestCountAndRecent(t *testing.T) {
	s := newServiceStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, svc("a", 0))
	require.NoError(t, err)
	_, err = s.Create(ctx, svc("b", 1))
	require.NoError(t, err)
	_, err = s.Create(ctx, svc("c", 2))
	require.NoError(t, err)
	_, err = s.Update(ctx, a.ID, &models.ServicePatch{Icon: ptr("bolt")})
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, titles(recent))
}
