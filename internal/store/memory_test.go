package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/store"
)

func newEInvoiceStore(t *testing.T) (*store.MemoryEInvoiceStore, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	return store.NewMemoryEInvoiceStore(clock, nil), clock
}

func TestEInvoiceStore_CreateAndGet(t *testing.T) {
	s, _ := newEInvoiceStore(t)
	ctx := context.Background()

	rec := &model.EInvoice{TenantID: "t1", InvoiceID: "inv-1", Type: model.TypeInvoice, Status: model.StatusDraft}
	require.NoError(t, s.Create(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.Get(ctx, "t1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, model.StatusDraft, got.Status)

	// Copy semantics: mutating the returned record must not leak back.
	got.Status = model.StatusValid
	again, err := s.Get(ctx, "t1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, again.Status)
}

func TestEInvoiceStore_TenantIsolation(t *testing.T) {
	s, _ := newEInvoiceStore(t)
	ctx := context.Background()

	rec := &model.EInvoice{TenantID: "t1", InvoiceID: "inv-1", Status: model.StatusDraft}
	require.NoError(t, s.Create(ctx, rec))

	_, err := s.Get(ctx, "t2", rec.ID)
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))

	_, err = s.GetByInvoiceID(ctx, "t2", "inv-1")
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))

	got, err := s.GetByInvoiceID(ctx, "t1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestEInvoiceStore_ListNewestFirst(t *testing.T) {
	s, clock := newEInvoiceStore(t)
	ctx := context.Background()

	for _, id := range []string{"inv-1", "inv-2", "inv-3"} {
		require.NoError(t, s.Create(ctx, &model.EInvoice{TenantID: "t1", InvoiceID: id, Status: model.StatusDraft}))
		clock.Advance(time.Minute)
	}
	require.NoError(t, s.Create(ctx, &model.EInvoice{TenantID: "t2", InvoiceID: "other", Status: model.StatusDraft}))

	recs, err := s.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "inv-3", recs[0].InvoiceID)
	assert.Equal(t, "inv-2", recs[1].InvoiceID)
	assert.Equal(t, "inv-1", recs[2].InvoiceID)
}

func TestEInvoiceStore_Transition(t *testing.T) {
	s, _ := newEInvoiceStore(t)
	ctx := context.Background()

	rec := &model.EInvoice{TenantID: "t1", InvoiceID: "inv-1", Status: model.StatusDraft}
	require.NoError(t, s.Create(ctx, rec))

	got, err := s.Transition(ctx, "t1", rec.ID, model.StatusPending, model.StatusDraft, model.StatusError)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	// Same guard again: the record is no longer in a permitted source
	// status, so a concurrent second submit loses.
	_, err = s.Transition(ctx, "t1", rec.ID, model.StatusPending, model.StatusDraft, model.StatusError)
	require.Error(t, err)
	assert.Equal(t, model.CategoryStateConflict, model.CategoryOf(err))

	var conflict *model.StateConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.StatusPending, conflict.Current)

	// The failed transition left the record untouched.
	cur, err := s.Get(ctx, "t1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, cur.Status)
}

func TestEInvoiceStore_TransitionUnknownRecord(t *testing.T) {
	s, _ := newEInvoiceStore(t)

	_, err := s.Transition(context.Background(), "t1", uuid.New(), model.StatusPending, model.StatusDraft)
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))
}

func TestEInvoiceStore_Update(t *testing.T) {
	s, _ := newEInvoiceStore(t)
	ctx := context.Background()

	rec := &model.EInvoice{TenantID: "t1", InvoiceID: "inv-1", Status: model.StatusDraft}
	require.NoError(t, s.Create(ctx, rec))

	rec.DocumentHash = "abc123"
	require.NoError(t, s.Update(ctx, rec))

	got, err := s.Get(ctx, "t1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.DocumentHash)

	err = s.Update(ctx, &model.EInvoice{ID: uuid.New(), TenantID: "t1"})
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))
}

func TestEInvoiceStore_InFlightCount(t *testing.T) {
	s, _ := newEInvoiceStore(t)
	ctx := context.Background()

	statuses := []model.Status{
		model.StatusDraft,
		model.StatusPending,
		model.StatusSubmitted,
		model.StatusValid,
		model.StatusCancelled,
	}
	for i, st := range statuses {
		require.NoError(t, s.Create(ctx, &model.EInvoice{
			TenantID:  "t1",
			InvoiceID: string(rune('a' + i)),
			Status:    st,
		}))
	}
	require.NoError(t, s.Create(ctx, &model.EInvoice{TenantID: "t2", InvoiceID: "x", Status: model.StatusPending}))

	n, err := s.InFlightCount(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCredentialStore_PutGetDelete(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := store.NewMemoryCredentialStore(clock)
	ctx := context.Background()

	_, err := s.Get(ctx, "t1")
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))

	cred := &model.Credential{
		TenantID:        "t1",
		ClientID:        "client-1",
		EncryptedSecret: []byte("sealed"),
		TIN:             "C1234567890",
		Environment:     model.EnvSandbox,
		Active:          true,
	}
	require.NoError(t, s.Put(ctx, cred))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)
	created := got.CreatedAt

	clock.Advance(time.Hour)
	cred.ClientID = "client-2"
	require.NoError(t, s.Put(ctx, cred))

	got, err = s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "client-2", got.ClientID)
	assert.Equal(t, created, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(created))

	require.NoError(t, s.Delete(ctx, "t1"))
	err = s.Delete(ctx, "t1")
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))
}

func TestSalesReader_SeedAndGet(t *testing.T) {
	s := store.NewMemorySalesReader()
	ctx := context.Background()

	s.Seed("t1", &store.SalesInvoice{ID: "inv-1", Number: "INV-0001"})

	inv, err := s.GetInvoice(ctx, "t1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", inv.Number)

	_, err = s.GetInvoice(ctx, "t2", "inv-1")
	assert.Equal(t, model.CategoryNotFound, model.CategoryOf(err))
}
