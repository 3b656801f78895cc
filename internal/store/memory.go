package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

// MemoryEInvoiceStore is an in-memory EInvoiceStore. It is the default for
// tests and the standalone server; a database-backed implementation satisfies
// the same interface.
type MemoryEInvoiceStore struct {
	mu    sync.RWMutex
	recs  map[uuid.UUID]*model.EInvoice
	clock clockwork.Clock
	log   *logrus.Logger
}

// NewMemoryEInvoiceStore creates an empty in-memory e-invoice store.
func NewMemoryEInvoiceStore(clock clockwork.Clock, log *logrus.Logger) *MemoryEInvoiceStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryEInvoiceStore{
		recs:  make(map[uuid.UUID]*model.EInvoice),
		clock: clock,
		log:   log,
	}
}

// Create inserts a new record, assigning an id and creation time if unset.
func (s *MemoryEInvoiceStore) Create(ctx context.Context, rec *model.EInvoice) error {
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now()
	}
	cp := *rec
	s.recs[rec.ID] = &cp
	observe(s.log, "einvoice.create", s.clock.Since(start), nil)
	return nil
}

// Get returns a copy of the record, scoped to the tenant.
func (s *MemoryEInvoiceStore) Get(ctx context.Context, tenantID string, id uuid.UUID) (*model.EInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok || rec.TenantID != tenantID {
		return nil, model.NewNotFoundError("e-invoice", id.String())
	}
	cp := *rec
	return &cp, nil
}

// GetByInvoiceID returns the record for an internal invoice id.
func (s *MemoryEInvoiceStore) GetByInvoiceID(ctx context.Context, tenantID, invoiceID string) (*model.EInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.recs {
		if rec.TenantID == tenantID && rec.InvoiceID == invoiceID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, model.NewNotFoundError("e-invoice for invoice", invoiceID)
}

// List returns copies of all records of the tenant, newest first.
func (s *MemoryEInvoiceStore) List(ctx context.Context, tenantID string) ([]*model.EInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.EInvoice
	for _, rec := range s.recs {
		if rec.TenantID == tenantID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

// Update overwrites an existing record.
func (s *MemoryEInvoiceStore) Update(ctx context.Context, rec *model.EInvoice) error {
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[rec.ID]
	if !ok || cur.TenantID != rec.TenantID {
		err := model.NewNotFoundError("e-invoice", rec.ID.String())
		observe(s.log, "einvoice.update", s.clock.Since(start), err)
		return err
	}
	cp := *rec
	s.recs[rec.ID] = &cp
	observe(s.log, "einvoice.update", s.clock.Since(start), nil)
	return nil
}

// Transition implements the conditional status change that guards the state
// machine against concurrent writers.
func (s *MemoryEInvoiceStore) Transition(ctx context.Context, tenantID string, id uuid.UUID, to model.Status, from ...model.Status) (*model.EInvoice, error) {
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok || rec.TenantID != tenantID {
		err := model.NewNotFoundError("e-invoice", id.String())
		observe(s.log, "einvoice.transition", s.clock.Since(start), err)
		return nil, err
	}

	allowed := false
	for _, f := range from {
		if rec.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		err := model.NewStateConflictError("transition to "+string(to), rec.Status, from...)
		observe(s.log, "einvoice.transition", s.clock.Since(start), err)
		return nil, err
	}

	rec.Status = to
	cp := *rec
	observe(s.log, "einvoice.transition", s.clock.Since(start), nil)
	return &cp, nil
}

// InFlightCount counts PENDING and SUBMITTED records of the tenant.
func (s *MemoryEInvoiceStore) InFlightCount(ctx context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.recs {
		if rec.TenantID == tenantID && rec.Status.InFlight() {
			n++
		}
	}
	return n, nil
}

func sortByCreatedDesc(recs []*model.EInvoice) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].CreatedAt.After(recs[j-1].CreatedAt); j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}

// MemoryCredentialStore is an in-memory CredentialStore.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]*model.Credential
	clock clockwork.Clock
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore(clock clockwork.Clock) *MemoryCredentialStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryCredentialStore{creds: make(map[string]*model.Credential), clock: clock}
}

// Get returns a copy of the tenant's credential record.
func (s *MemoryCredentialStore) Get(ctx context.Context, tenantID string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[tenantID]
	if !ok {
		return nil, model.NewNotFoundError("credential for tenant", tenantID)
	}
	cp := *cred
	return &cp, nil
}

// Put inserts or replaces the tenant's credential record.
func (s *MemoryCredentialStore) Put(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if existing, ok := s.creds[cred.TenantID]; ok {
		cred.CreatedAt = existing.CreatedAt
	} else if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	cp := *cred
	s.creds[cred.TenantID] = &cp
	return nil
}

// Delete removes the tenant's credential record.
func (s *MemoryCredentialStore) Delete(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[tenantID]; !ok {
		return model.NewNotFoundError("credential for tenant", tenantID)
	}
	delete(s.creds, tenantID)
	return nil
}

// MemorySalesReader is a seedable SalesReader used by tests and the
// standalone server.
type MemorySalesReader struct {
	mu       sync.RWMutex
	invoices map[string]*SalesInvoice // key: tenantID + "/" + invoiceID
}

// NewMemorySalesReader creates an empty in-memory sales read model.
func NewMemorySalesReader() *MemorySalesReader {
	return &MemorySalesReader{invoices: make(map[string]*SalesInvoice)}
}

// Seed registers a sales invoice for a tenant.
func (s *MemorySalesReader) Seed(tenantID string, inv *SalesInvoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[tenantID+"/"+inv.ID] = inv
}

// GetInvoice returns the seeded sales invoice.
func (s *MemorySalesReader) GetInvoice(ctx context.Context, tenantID, invoiceID string) (*SalesInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[tenantID+"/"+invoiceID]
	if !ok {
		return nil, model.NewNotFoundError("sales invoice", invoiceID)
	}
	cp := *inv
	return &cp, nil
}
