package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"provelope/internal/config"
	"provelope/internal/domain"
	"provelope/internal/infra/cid"
	cryptoinfra "provelope/internal/infra/crypto"
	"provelope/internal/usecase"

	"github.com/gin-gonic/gin"
)

type memReceiptRepo struct {
	receipts []domain.VerificationReceipt
}

func (m *memReceiptRepo) Insert(ctx context.Context, receipt domain.VerificationReceipt) error {
	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *memReceiptRepo) ListByContentID(ctx context.Context, contentID string, limit int) ([]domain.VerificationReceipt, error) {
	out := make([]domain.VerificationReceipt, 0)
	for _, r := range m.receipts {
		if r.ContentID == contentID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, repo *memReceiptRepo) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps := ServerDeps{}
	if repo != nil {
		deps.Recorder = usecase.NewRecordVerification(repo)
	}
	return NewServerWithDeps(config.Config{HTTPAddr: ":0"}, deps)
}

func signedEnvelope(t *testing.T) (domain.ProofEnvelope, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	content, err := cryptoinfra.Canonicalize(map[string]any{"answer": 42})
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	contentID := cid.ComputeContentID(content)
	message := cryptoinfra.SigningMessage(42, content, contentID)
	sig := ed25519.Sign(priv, message)

	proof := domain.StructuredProof{
		Version:     1,
		Algorithm:   "Ed25519",
		TimestampNS: 42,
		KeyID:       "kid-1",
		PublicKey:   base64.RawURLEncoding.EncodeToString(pub),
		ContentHash: base64.RawURLEncoding.EncodeToString(make([]byte, 32)),
		Signature:   base64.RawURLEncoding.EncodeToString(sig),
		ContentID:   contentID,
	}
	raw, err := json.Marshal(proof)
	if err != nil {
		t.Fatalf("marshal proof: %v", err)
	}
	return domain.ProofEnvelope{
		ContentID:     contentID,
		KeyID:         "kid-1",
		ProofBlob:     base64.RawURLEncoding.EncodeToString(raw),
		ContentBase64: base64.RawURLEncoding.EncodeToString(content),
	}, contentID
}

func postVerify(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	return rec
}

func TestHandleVerify(t *testing.T) {
	repo := &memReceiptRepo{}
	s := newTestServer(t, repo)
	envelope, contentID := signedEnvelope(t)

	rec := postVerify(t, s, verifyRequest{Envelope: envelope})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Verification.OK {
		t.Fatalf("expected ok verification, got %+v", resp.Verification)
	}
	if resp.Verification.ContentID != contentID {
		t.Fatalf("content id mismatch: %q vs %q", resp.Verification.ContentID, contentID)
	}
	if resp.ReceiptID == "" {
		t.Fatal("expected receipt id with recorder configured")
	}
	if len(repo.receipts) != 1 || repo.receipts[0].ProofKind != string(domain.ProofKindStructured) {
		t.Fatalf("receipt not recorded: %+v", repo.receipts)
	}
}

func TestHandleVerifyFailureStillRecorded(t *testing.T) {
	repo := &memReceiptRepo{}
	s := newTestServer(t, repo)
	envelope, _ := signedEnvelope(t)
	envelope.ContentBase64 = ""

	rec := postVerify(t, s, verifyRequest{Envelope: envelope})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Verification.OK || resp.Verification.FailureReason != domain.FailureMissingContent {
		t.Fatalf("expected MISSING_CONTENT, got %+v", resp.Verification)
	}
	if len(repo.receipts) != 1 || repo.receipts[0].OK {
		t.Fatalf("failed verification not recorded: %+v", repo.receipts)
	}
}

func TestHandleVerifyBadRequest(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleListReceipts(t *testing.T) {
	repo := &memReceiptRepo{}
	s := newTestServer(t, repo)
	envelope, contentID := signedEnvelope(t)
	postVerify(t, s, verifyRequest{Envelope: envelope})

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/"+contentID, nil)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Receipts []receiptResponse `json:"receipts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Receipts) != 1 || resp.Receipts[0].ContentID != contentID {
		t.Fatalf("unexpected receipts: %+v", resp.Receipts)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["mode"] != "no-db" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}
