package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

func (s *Server) handleCreate(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rec, err := s.svc.Create(c.Request.Context(), tenantOf(c), req.InvoiceID,
		model.DocumentType(req.Type), req.OriginalEInvoiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleList(c *gin.Context) {
	recs, err := s.svc.List(c.Request.Context(), tenantOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := s.svc.Get(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleValidate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := s.svc.Validate(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidationResponse{Valid: result.IsValid(), Issues: result.Issues})
}

func (s *Server) handleSubmit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := s.svc.Submit(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeOperationError(c, rec, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleSync(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := s.svc.SyncStatus(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleRetry(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := s.svc.Retry(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeOperationError(c, rec, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleCancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	rec, err := s.svc.Cancel(c.Request.Context(), tenantOf(c), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleLink(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	link, err := s.svc.ValidationLink(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, LinkResponse{Link: link})
}

func (s *Server) handleQR(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	png, err := s.svc.ValidationQR(c.Request.Context(), tenantOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleRecent(c *gin.Context) {
	direction := c.DefaultQuery("direction", "Sent")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	out, err := s.svc.RecentDocuments(c.Request.Context(), tenantOf(c), direction, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleValidateTIN(c *gin.Context) {
	tin := c.Param("tin")
	valid, err := s.svc.ValidateTIN(c.Request.Context(), tenantOf(c), tin,
		c.Query("idType"), c.Query("idValue"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TinValidationResponse{TIN: tin, Valid: valid})
}

func (s *Server) handlePutCredential(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cred := &model.Credential{
		TenantID:    tenantOf(c),
		ClientID:    req.ClientID,
		TIN:         req.TIN,
		BRN:         req.BRN,
		IDType:      req.IDType,
		IDValue:     req.IDValue,
		Environment: model.Environment(req.Environment),
		Active:      req.Active,
	}
	if err := s.svc.PutCredential(c.Request.Context(), cred, req.ClientSecret); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cred)
}

func (s *Server) handleGetCredential(c *gin.Context) {
	cred, err := s.svc.GetCredential(c.Request.Context(), tenantOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cred)
}

func (s *Server) handleDeleteCredential(c *gin.Context) {
	if err := s.svc.DeleteCredential(c.Request.Context(), tenantOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleTestConnection(c *gin.Context) {
	if err := s.svc.TestConnection(c.Request.Context(), tenantOf(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TestConnectionResponse{OK: true})
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid e-invoice id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error(), Category: model.CategoryOf(err)}

	var vf *model.ValidationFailedError
	if errors.As(err, &vf) {
		resp.Issues = vf.Result.Issues
	}

	status := http.StatusInternalServerError
	switch resp.Category {
	case model.CategoryValidation, model.CategoryRejection:
		status = http.StatusUnprocessableEntity
	case model.CategoryStateConflict:
		status = http.StatusConflict
	case model.CategoryNotFound:
		status = http.StatusNotFound
	case model.CategoryTransport, model.CategoryAuth:
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

// writeOperationError is writeError for submit/retry, where the operation
// may have moved the record into a failure state worth returning alongside
// the error.
func writeOperationError(c *gin.Context, rec *model.EInvoice, err error) {
	if rec == nil {
		writeError(c, err)
		return
	}
	resp := gin.H{
		"error":    err.Error(),
		"category": model.CategoryOf(err),
		"einvoice": rec,
	}
	status := http.StatusBadGateway
	if model.CategoryOf(err) == model.CategoryRejection {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}
