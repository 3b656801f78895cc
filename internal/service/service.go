// Package service is the submission orchestrator: it owns the e-invoice
// state machine and coordinates the builder, validator, vault and protocol
// adapter. All dependencies are injected at construction; the package keeps
// no global state.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/yijian0905/erp-einvoice/internal/builder"
	"github.com/yijian0905/erp-einvoice/internal/keymutex"
	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/myinvois"
	"github.com/yijian0905/erp-einvoice/internal/store"
	"github.com/yijian0905/erp-einvoice/internal/vault"
)

// Provider is the outbound surface of the protocol adapter consumed by the
// orchestrator. *myinvois.Client satisfies it.
type Provider interface {
	SubmitDocuments(ctx context.Context, tenantID string, docs []myinvois.DocumentSubmission) (*myinvois.SubmissionResponse, error)
	GetDocumentDetails(ctx context.Context, tenantID, documentUUID string) (*myinvois.DocumentDetails, error)
	CancelDocument(ctx context.Context, tenantID, documentUUID, reason string) error
	ValidateTIN(ctx context.Context, tenantID, tin, idType, idValue string) (bool, error)
	GetRecentDocuments(ctx context.Context, tenantID, direction string, page, pageSize int) (*myinvois.RecentDocumentsPage, error)
	TestConnection(ctx context.Context, tenantID string) error
	InvalidateToken(tenantID string)
}

// Service orchestrates the e-invoice submission lifecycle for all tenants.
type Service struct {
	einvoices store.EInvoiceStore
	creds     store.CredentialStore
	builder   *builder.Builder
	provider  Provider
	vault     *vault.Vault
	clock     clockwork.Clock
	log       *logrus.Logger

	// Serializes mutation per e-invoice id: at most one in-flight submit
	// (or cancel/sync) per record.
	locks keymutex.KeyedMutex[uuid.UUID]
}

// New creates the orchestrator. clock and log may be nil for defaults.
func New(einvoices store.EInvoiceStore, creds store.CredentialStore, sales store.SalesReader, provider Provider, v *vault.Vault, clock clockwork.Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		einvoices: einvoices,
		creds:     creds,
		builder:   builder.New(sales),
		provider:  provider,
		vault:     v,
		clock:     clock,
		log:       log,
	}
}

// Get returns the e-invoice record.
func (s *Service) Get(ctx context.Context, tenantID string, id uuid.UUID) (*model.EInvoice, error) {
	return s.einvoices.Get(ctx, tenantID, id)
}

// GetByInvoiceID returns the e-invoice record for an internal invoice id.
func (s *Service) GetByInvoiceID(ctx context.Context, tenantID, invoiceID string) (*model.EInvoice, error) {
	return s.einvoices.GetByInvoiceID(ctx, tenantID, invoiceID)
}

// List returns all e-invoice records of the tenant, newest first.
func (s *Service) List(ctx context.Context, tenantID string) ([]*model.EInvoice, error) {
	return s.einvoices.List(ctx, tenantID)
}

// Create registers a DRAFT e-invoice for an internal invoice. Credit, debit
// and refund notes must reference an existing VALID e-invoice of the same
// tenant. Creating twice for the same invoice returns the existing record.
func (s *Service) Create(ctx context.Context, tenantID, invoiceID string, docType model.DocumentType, originalID *uuid.UUID) (*model.EInvoice, error) {
	if !docType.IsValid() {
		return nil, fmt.Errorf("unknown e-invoice type %q", docType)
	}

	if existing, err := s.einvoices.GetByInvoiceID(ctx, tenantID, invoiceID); err == nil {
		return existing, nil
	}

	if docType.IsAdjustment() {
		if originalID == nil {
			return nil, fmt.Errorf("e-invoice type %s requires an original e-invoice reference", docType)
		}
		original, err := s.einvoices.Get(ctx, tenantID, *originalID)
		if err != nil {
			return nil, err
		}
		if original.Status != model.StatusValid {
			return nil, model.NewStateConflictError("reference as original", original.Status, model.StatusValid)
		}
	} else if originalID != nil {
		return nil, fmt.Errorf("e-invoice type %s must not reference an original e-invoice", docType)
	}

	rec := &model.EInvoice{
		TenantID:           tenantID,
		InvoiceID:          invoiceID,
		Type:               docType,
		Status:             model.StatusDraft,
		OriginalEInvoiceID: originalID,
		CreatedAt:          s.clock.Now(),
	}
	if err := s.einvoices.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"tenant": tenantID, "einvoice": rec.ID, "type": docType}).
		Info("e-invoice created")
	return rec, nil
}

// credentialInUseError refuses credential deletion while submissions are in
// flight.
type credentialInUseError struct {
	inFlight int
}

func (e *credentialInUseError) Error() string {
	return fmt.Sprintf("credential deletion refused: %d submission(s) in flight", e.inFlight)
}

// Category returns the state-conflict category.
func (e *credentialInUseError) Category() string { return model.CategoryStateConflict }

// PutCredential encrypts and stores a tenant's API credentials, invalidating
// any cached access token.
func (s *Service) PutCredential(ctx context.Context, cred *model.Credential, clientSecret string) error {
	if !cred.Environment.IsValid() {
		return fmt.Errorf("unknown environment %q", cred.Environment)
	}
	if cred.ClientID == "" || clientSecret == "" {
		return fmt.Errorf("client id and client secret are required")
	}

	sealed, err := s.vault.Encrypt(clientSecret)
	if err != nil {
		return err
	}
	cred.EncryptedSecret = sealed

	if err := s.creds.Put(ctx, cred); err != nil {
		return err
	}

	// A credential change makes any cached token unusable.
	s.provider.InvalidateToken(cred.TenantID)
	s.log.WithFields(logrus.Fields{"tenant": cred.TenantID, "environment": cred.Environment}).
		Info("credentials updated")
	return nil
}

// GetCredential returns the tenant's credential record. The secret stays
// sealed.
func (s *Service) GetCredential(ctx context.Context, tenantID string) (*model.Credential, error) {
	return s.creds.Get(ctx, tenantID)
}

// DeleteCredential removes the tenant's credentials unless a submission is
// in flight, to avoid orphaning work whose completion depends on them.
func (s *Service) DeleteCredential(ctx context.Context, tenantID string) error {
	inFlight, err := s.einvoices.InFlightCount(ctx, tenantID)
	if err != nil {
		return err
	}
	if inFlight > 0 {
		return &credentialInUseError{inFlight: inFlight}
	}
	if err := s.creds.Delete(ctx, tenantID); err != nil {
		return err
	}
	s.provider.InvalidateToken(tenantID)
	return nil
}

// TestConnection verifies the stored credentials against the provider's
// token endpoint.
func (s *Service) TestConnection(ctx context.Context, tenantID string) error {
	return s.provider.TestConnection(ctx, tenantID)
}

// ValidateTIN checks a TIN against the provider's taxpayer registry.
func (s *Service) ValidateTIN(ctx context.Context, tenantID, tin, idType, idValue string) (bool, error) {
	return s.provider.ValidateTIN(ctx, tenantID, tin, idType, idValue)
}

// RecentDocuments pages through the tenant's recent documents at the
// provider.
func (s *Service) RecentDocuments(ctx context.Context, tenantID, direction string, page, pageSize int) (*myinvois.RecentDocumentsPage, error) {
	return s.provider.GetRecentDocuments(ctx, tenantID, direction, page, pageSize)
}

// credentialSource adapts the credential store plus vault into the protocol
// adapter's credential interface.
type credentialSource struct {
	creds store.CredentialStore
	vault *vault.Vault
}

// NewCredentialSource creates the decrypting credential source handed to the
// protocol adapter.
func NewCredentialSource(creds store.CredentialStore, v *vault.Vault) myinvois.CredentialSource {
	return &credentialSource{creds: creds, vault: v}
}

func (c *credentialSource) Credentials(ctx context.Context, tenantID string) (*myinvois.Credentials, error) {
	cred, err := c.creds.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !cred.Active {
		return nil, model.NewAuthError("credentials", "credentials are deactivated", nil)
	}
	secret, err := c.vault.Decrypt(cred.EncryptedSecret)
	if err != nil {
		return nil, model.NewAuthError("credentials", "cannot decrypt stored client secret", err)
	}
	return &myinvois.Credentials{
		ClientID:     cred.ClientID,
		ClientSecret: secret,
		Environment:  cred.Environment,
	}, nil
}
