package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yijian0905/erp-einvoice/internal/model"
	"github.com/yijian0905/erp-einvoice/internal/myinvois"
	"github.com/yijian0905/erp-einvoice/internal/qr"
	"github.com/yijian0905/erp-einvoice/internal/validator"
)

// payloadFormat is the document serialization format submitted to MyInvois.
const payloadFormat = "JSON"

// Validate builds the document (without persisting anything) and runs the
// field validator. Status is never changed: this is the dry-run gate.
func (s *Service) Validate(ctx context.Context, tenantID string, id uuid.UUID) (*model.ValidationResult, error) {
	rec, err := s.einvoices.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	doc, _, _, err := s.documentFor(ctx, rec)
	if err != nil {
		return nil, err
	}

	result := validator.Validate(doc)
	return &result, nil
}

// Submit runs build and validation, then submits the document. Allowed from
// DRAFT and ERROR. Validation errors block the submission without contacting
// the provider and leave the status unchanged.
func (s *Service) Submit(ctx context.Context, tenantID string, id uuid.UUID) (*model.EInvoice, error) {
	return s.submit(ctx, tenantID, id, "submit", model.StatusDraft, model.StatusError)
}

// Retry re-enters the submission path after an ERROR, or after INVALID where
// resubmission is an explicit business decision. The original document hash
// is reused so the provider recognizes resubmitted content.
func (s *Service) Retry(ctx context.Context, tenantID string, id uuid.UUID) (*model.EInvoice, error) {
	return s.submit(ctx, tenantID, id, "retry", model.StatusError, model.StatusInvalid)
}

func (s *Service) submit(ctx context.Context, tenantID string, id uuid.UUID, op string, from ...model.Status) (*model.EInvoice, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	rec, err := s.einvoices.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !statusIn(rec.Status, from) {
		return nil, model.NewStateConflictError(op, rec.Status, from...)
	}

	doc, payload, hash, err := s.documentFor(ctx, rec)
	if err != nil {
		return nil, err
	}

	if result := validator.Validate(doc); !result.IsValid() {
		// No provider contact, no status change.
		return nil, model.NewValidationFailedError(result)
	}

	// The conditional transition is the concurrency anchor: even if two
	// submits race past the per-id lock (e.g. across processes), only one
	// observes an allowed source status.
	rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusPending, from...)
	if err != nil {
		return nil, err
	}
	rec.DocumentHash = hash
	rec.Payload = payload
	rec.LastError = nil
	if err := s.einvoices.Update(ctx, rec); err != nil {
		return nil, err
	}

	resp, err := s.provider.SubmitDocuments(ctx, tenantID, []myinvois.DocumentSubmission{{
		Format:       payloadFormat,
		Document:     payload,
		DocumentHash: hash,
		CodeNumber:   doc.CodeNumber,
	}})
	if err != nil {
		if model.CategoryOf(err) == model.CategoryRejection {
			rec = s.fail(ctx, rec, model.StatusRejected, err)
		} else {
			rec = s.fail(ctx, rec, model.StatusError, err)
		}
		return rec, err
	}

	// Map the accepted/rejected partition back onto this record by the
	// code number correlation key.
	for _, acc := range resp.AcceptedDocuments {
		if acc.InvoiceCodeNumber == doc.CodeNumber {
			rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusSubmitted, model.StatusPending)
			if err != nil {
				return nil, err
			}
			now := s.clock.Now()
			rec.SubmissionUID = resp.SubmissionUID
			rec.DocumentUUID = acc.UUID
			rec.SubmittedAt = &now
			if err := s.einvoices.Update(ctx, rec); err != nil {
				return nil, err
			}
			s.log.WithFields(logrus.Fields{
				"tenant":     tenantID,
				"einvoice":   id,
				"submission": resp.SubmissionUID,
			}).Info("document submitted")
			return rec, nil
		}
	}
	for _, rej := range resp.RejectedDocuments {
		if rej.InvoiceCodeNumber == doc.CodeNumber {
			rejErr := model.NewRejectionError(rej.Error.Code, rej.Error.Message)
			rec = s.fail(ctx, rec, model.StatusRejected, rejErr)
			return rec, rejErr
		}
	}

	// The response named neither partition for our correlation key; treat
	// as a transport fault so the caller can retry safely.
	missing := model.NewTransportError(op, 0, 1,
		fmt.Errorf("submission %s did not reference code number %s", resp.SubmissionUID, doc.CodeNumber))
	rec = s.fail(ctx, rec, model.StatusError, missing)
	return rec, missing
}

// SyncStatus reconciles a SUBMITTED record against the provider's definitive
// status. Calling it while the provider is still processing is a no-op, so
// repeated polling is safe.
func (s *Service) SyncStatus(ctx context.Context, tenantID string, id uuid.UUID) (*model.EInvoice, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	rec, err := s.einvoices.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.CanSync() {
		return nil, model.NewStateConflictError("sync", rec.Status, model.StatusSubmitted)
	}

	details, err := s.provider.GetDocumentDetails(ctx, tenantID, rec.DocumentUUID)
	if err != nil {
		// Leave SUBMITTED; reconciliation is retried by the caller.
		return nil, err
	}

	now := s.clock.Now()
	switch details.Status {
	case myinvois.ProviderStatusSubmitted:
		rec.SyncedAt = &now
		if err := s.einvoices.Update(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil

	case myinvois.ProviderStatusValid:
		rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusValid, model.StatusSubmitted)
		if err != nil {
			return nil, err
		}
		rec.LongID = details.LongID
		rec.SyncedAt = &now
		rec.LastError = nil

	case myinvois.ProviderStatusInvalid:
		rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusInvalid, model.StatusSubmitted)
		if err != nil {
			return nil, err
		}
		rec.SyncedAt = &now
		rec.LastError = providerFailureDetail(details)

	case myinvois.ProviderStatusRejected:
		rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusRejected, model.StatusSubmitted)
		if err != nil {
			return nil, err
		}
		rec.SyncedAt = &now
		rec.LastError = providerFailureDetail(details)

	case myinvois.ProviderStatusCancelled:
		rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusCancelled, model.StatusSubmitted)
		if err != nil {
			return nil, err
		}
		rec.SyncedAt = &now

	default:
		return nil, fmt.Errorf("provider returned unknown document status %q", details.Status)
	}

	if err := s.einvoices.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"tenant":   tenantID,
		"einvoice": id,
		"status":   rec.Status,
	}).Info("document status reconciled")
	return rec, nil
}

// Cancel cancels a VALID document at the provider. The reason is mandatory
// and persisted. A provider refusal (cancellation window expired) leaves the
// record VALID and surfaces the refusal to the caller.
func (s *Service) Cancel(ctx context.Context, tenantID string, id uuid.UUID, reason string) (*model.EInvoice, error) {
	if reason == "" {
		var result model.ValidationResult
		result.AddError("CancelReason", model.CodeRequired, "cancellation reason is required")
		return nil, model.NewValidationFailedError(result)
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	rec, err := s.einvoices.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.CanCancel() {
		return nil, model.NewStateConflictError("cancel", rec.Status, model.StatusValid)
	}

	if err := s.provider.CancelDocument(ctx, tenantID, rec.DocumentUUID, reason); err != nil {
		return nil, err
	}

	rec, err = s.einvoices.Transition(ctx, tenantID, id, model.StatusCancelled, model.StatusValid)
	if err != nil {
		return nil, err
	}
	rec.CancelReason = reason
	if err := s.einvoices.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"tenant": tenantID, "einvoice": id}).
		Info("document cancelled")
	return rec, nil
}

// ValidationLink returns the public MyInvois validation URL of a VALID
// document.
func (s *Service) ValidationLink(ctx context.Context, tenantID string, id uuid.UUID) (string, error) {
	rec, err := s.einvoices.Get(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	if rec.Status != model.StatusValid || rec.LongID == "" {
		return "", model.NewStateConflictError("validation link", rec.Status, model.StatusValid)
	}
	cred, err := s.creds.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return qr.ValidationLink(cred.Environment, rec.DocumentUUID, rec.LongID), nil
}

// ValidationQR renders the validation link of a VALID document as a QR PNG.
func (s *Service) ValidationQR(ctx context.Context, tenantID string, id uuid.UUID) ([]byte, error) {
	link, err := s.ValidationLink(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return qr.PNG(link)
}

// documentFor produces the canonical document, payload and hash for a
// record. A record that was already built keeps its original payload and
// hash: the document is decoded from the stored payload so the hash is never
// recomputed and resubmissions stay byte-identical.
func (s *Service) documentFor(ctx context.Context, rec *model.EInvoice) (*model.Document, string, string, error) {
	if rec.DocumentHash != "" && rec.Payload != "" {
		doc, err := decodePayload(rec.Payload)
		if err != nil {
			return nil, "", "", err
		}
		return doc, rec.Payload, rec.DocumentHash, nil
	}

	originalRef := ""
	if rec.OriginalEInvoiceID != nil {
		original, err := s.einvoices.Get(ctx, rec.TenantID, *rec.OriginalEInvoiceID)
		if err != nil {
			return nil, "", "", err
		}
		originalRef = original.DocumentUUID
	}

	res, err := s.builder.Build(ctx, rec.TenantID, rec.InvoiceID, rec.Type, originalRef)
	if err != nil {
		return nil, "", "", err
	}
	return res.Document, res.Payload, res.Hash, nil
}

// fail transitions a PENDING record into a failure state and records the
// failure detail. Best effort: a store failure here is logged, not returned,
// so the original submission error stays visible to the caller.
func (s *Service) fail(ctx context.Context, rec *model.EInvoice, to model.Status, cause error) *model.EInvoice {
	updated, err := s.einvoices.Transition(ctx, rec.TenantID, rec.ID, to, model.StatusPending)
	if err != nil {
		s.log.WithError(err).WithField("einvoice", rec.ID).Warn("cannot record submission failure")
		return rec
	}
	detail := &model.ErrorDetail{
		Category: model.CategoryOf(cause),
		Message:  cause.Error(),
	}
	var rejection *model.RejectionError
	if errors.As(cause, &rejection) {
		detail.Code = rejection.Code
		detail.Message = rejection.Message
	}
	updated.LastError = detail
	if err := s.einvoices.Update(ctx, updated); err != nil {
		s.log.WithError(err).WithField("einvoice", rec.ID).Warn("cannot record submission failure")
	}
	return updated
}

func providerFailureDetail(details *myinvois.DocumentDetails) *model.ErrorDetail {
	detail := &model.ErrorDetail{
		Category: model.CategoryRejection,
		Message:  "document " + details.Status,
	}
	for _, step := range details.ValidationResults {
		if step.Error != nil {
			detail.Code = step.Error.Code
			detail.Message = step.Error.Message
			break
		}
	}
	return detail
}

func decodePayload(payload string) (*model.Document, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode stored payload: %w", err)
	}
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return &doc, nil
}

func statusIn(s model.Status, set []model.Status) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
