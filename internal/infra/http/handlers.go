package http

import (
	"net/http"
	"strconv"

	"provelope/internal/domain"
	"provelope/internal/infra/keyset"
	"provelope/internal/infra/policy"
	"provelope/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type verifyRequest struct {
	Envelope          domain.ProofEnvelope `json:"envelope"`
	ExpectedContentID string               `json:"expected_content_id,omitempty"`
	KeySet            *domain.KeySet       `json:"key_set,omitempty"`
}

type verifyResponse struct {
	Verification domain.Verification `json:"verification"`
	Policy       *policy.Result      `json:"policy,omitempty"`
	ReceiptID    string              `json:"receipt_id,omitempty"`
}

type receiptResponse struct {
	ID            string `json:"id"`
	ContentID     string `json:"content_id"`
	KeyID         string `json:"key_id,omitempty"`
	OK            bool   `json:"ok"`
	FailureReason string `json:"failure_reason,omitempty"`
	ProofKind     string `json:"proof_kind"`
	VerifiedAt    string `json:"verified_at"`
}

func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid verify request"})
		return
	}

	opts := usecase.VerifyOptions{
		ExpectedContentID: req.ExpectedContentID,
		KeySet:            req.KeySet,
		Fetcher:           s.fetcher,
		DefaultKeySetURL:  s.cfg.KeySetURL,
	}
	verification := usecase.VerifyEnvelope(c.Request.Context(), req.Envelope, opts)
	proofKind := usecase.ProofKindOf(req.Envelope)

	resp := verifyResponse{Verification: verification}

	if s.policy != nil {
		keySetURL := req.Envelope.KeySetURL
		if keySetURL == "" {
			keySetURL = s.cfg.KeySetURL
		}
		resolved, _ := keyset.Resolve(c.Request.Context(), req.KeySet, req.Envelope.InlineKeySet, keySetURL, s.fetcher)
		decision, err := s.policy.Evaluate(c.Request.Context(), policy.Input{
			Verification:   verification,
			KeyID:          verification.KeyID,
			ProofKind:      string(proofKind),
			KeySetResolved: resolved != nil,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse{Code: "policy_error", Message: err.Error()})
			return
		}
		resp.Policy = &decision
	}

	if s.recorder != nil {
		if receipt, err := s.recorder.Record(c.Request.Context(), proofKind, verification); err == nil {
			resp.ReceiptID = receipt.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListReceipts(c *gin.Context) {
	if s.recorder == nil {
		c.JSON(http.StatusNotFound, errorResponse{Code: "no_db", Message: "receipt store is not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	receipts, err := s.recorder.History(c.Request.Context(), c.Param("content_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Code: "storage_error", Message: err.Error()})
		return
	}
	out := make([]receiptResponse, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, receiptResponse{
			ID:            r.ID,
			ContentID:     r.ContentID,
			KeyID:         r.KeyID,
			OK:            r.OK,
			FailureReason: r.FailureReason,
			ProofKind:     r.ProofKind,
			VerifiedAt:    r.VerifiedAt.Format("2006-01-02T15:04:05.000000000Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"receipts": out})
}
