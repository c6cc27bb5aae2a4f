package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (s *Server) handleUpload(c *gin.Context) {
	caseID := c.Param("caseId")
	if !s.enforceRateLimit(c, domain.OperationUpload, caseID) {
		return
	}
	principal, ok := s.requireAuth(c, domain.OperationUpload)
	if !ok {
		return
	}

	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		writeError(c, domain.ErrMissingUpload)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorCode(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds size limit")
			return
		}
		writeError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	resp, err := s.uploadUC.Execute(c.Request.Context(), usecase.UploadEvidenceRequest{
		CaseID:       caseID,
		EvidenceID:   strings.TrimSpace(c.PostForm("evidenceId")),
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		EvidenceType: c.PostForm("evidenceType"),
		Description:  c.PostForm("description"),
		Content:      content,
		Principal:    principal,
	})
	if err != nil {
		// Once a CID exists the failure stranded a pinned object; the error
		// message carries it so the caller can hand it to reconciliation.
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cid":      resp.CID,
		"message":  "Evidence uploaded and anchored",
		"filename": resp.Filename,
	})
}

type confirmRequest struct {
	CaseID     string `json:"caseId"`
	Index      *int64 `json:"index"`
	EvidenceID string `json:"evidenceId"`
}

func (s *Server) handleConfirm(c *gin.Context) {
	caseID := c.Param("caseId")
	if !s.enforceRateLimit(c, domain.OperationConfirm, caseID) {
		return
	}
	principal, ok := s.requireAuth(c, domain.OperationConfirm)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "MISSING_DATA", "invalid request body")
		return
	}
	if req.Index == nil {
		writeError(c, domain.ErrMissingUpload)
		return
	}
	if req.CaseID != "" && req.CaseID != caseID {
		writeErrorCode(c, http.StatusBadRequest, "CASE_MISMATCH", "body caseId does not match path")
		return
	}

	resp, err := s.confirmUC.Execute(c.Request.Context(), usecase.ConfirmEvidenceRequest{
		CaseID:     caseID,
		Index:      *req.Index,
		EvidenceID: req.EvidenceID,
		Principal:  principal,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Evidence confirmed",
		"txHash":      resp.TxHash,
		"blockNumber": resp.BlockNumber,
	})
}

func (s *Server) handleRetrieve(c *gin.Context) {
	caseID := c.Param("caseId")
	evidenceID := c.Param("evidenceId")
	if !s.enforceRateLimit(c, domain.OperationRetrieve, caseID) {
		return
	}
	principal, ok := s.requireAuth(c, domain.OperationRetrieve)
	if !ok {
		return
	}

	resp, err := s.retrieveUC.Execute(c.Request.Context(), usecase.RetrieveEvidenceRequest{
		CaseID:     caseID,
		EvidenceID: evidenceID,
		Principal:  principal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "Evidence not found")
			return
		}
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Filename))
	c.Data(http.StatusOK, "application/octet-stream", resp.Plaintext)
}

func (s *Server) handleExport(c *gin.Context) {
	caseID := c.Param("caseId")
	if !s.enforceRateLimit(c, domain.OperationExport, caseID) {
		return
	}
	principal, ok := s.requireAuth(c, domain.OperationExport)
	if !ok {
		return
	}

	bundle, err := s.exportUC.Execute(c.Request.Context(), caseID, principal)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "Case not found")
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (s *Server) handleSync(c *gin.Context) {
	if !s.enforceRateLimit(c, domain.OperationSync, "all") {
		return
	}
	principal, ok := s.requireAuth(c, domain.OperationSync)
	if !ok {
		return
	}

	report, err := s.syncUC.Execute(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func writeError(c *gin.Context, err error) {
	var rejected *domain.ChainRejectedError
	if errors.As(err, &rejected) {
		// The chain's refusal reason goes back untouched.
		writeErrorCode(c, http.StatusBadRequest, "CHAIN_REJECTED", rejected.Reason)
		return
	}
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrMissingUpload):
		status, code = http.StatusBadRequest, "MISSING_DATA"
	case errors.Is(err, domain.ErrInvalidMimeType):
		status, code = http.StatusBadRequest, "INVALID_FILE_TYPE"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateEvidence):
		status, code = http.StatusConflict, "DUPLICATE_EVIDENCE"
	case errors.Is(err, domain.ErrIntegrityMismatch):
		status, code = http.StatusForbidden, "INTEGRITY_MISMATCH"
	case errors.Is(err, domain.ErrDecryptionFailed):
		status, code = http.StatusForbidden, "DECRYPTION_FAILED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
