package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/config"
	"github.com/fyrsmithlabs/linkd/internal/contract"
	"github.com/fyrsmithlabs/linkd/internal/extraction"
	"github.com/fyrsmithlabs/linkd/internal/identify"
	"github.com/fyrsmithlabs/linkd/internal/linkage"
	"github.com/fyrsmithlabs/linkd/internal/report"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	server, err := NewServer(config.ServerConfig{Host: "localhost", Port: 0}, zap.NewNop())
	require.NoError(t, err)
	return server
}

func testDiscovery() *report.Discovery {
	docs := []identify.DocumentIdentifier{
		{
			Filename:    "SOW-BCH-Bayer 2022-03-01.txt",
			Type:        identify.DocTypeSOW,
			Parties:     []string{"BAYER"},
			ProgramCode: "BCH",
		},
		{
			Filename:    "Order Form BCH-4411 Bayer.txt",
			Type:        identify.DocTypeOrderForm,
			Parties:     []string{"BAYER"},
			ProgramCode: "BCH",
		},
	}
	return report.NewDiscovery("contracts", len(docs), contract.Group(docs))
}

func TestNewServer(t *testing.T) {
	t.Run("creates server", func(t *testing.T) {
		server := setupTestServer(t)
		assert.NotNil(t, server.echo)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(config.ServerConfig{}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Contracts)
}

func TestHandleContracts(t *testing.T) {
	t.Run("returns 503 before discovery", func(t *testing.T) {
		server := setupTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("returns discovered contracts", func(t *testing.T) {
		server := setupTestServer(t)
		server.SetDiscovery(testDiscovery())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ContractsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Contracts, 1)
		assert.Equal(t, "BAYER_BCH_1", resp.Contracts[0].ContractID)
	})
}

func TestHandleLink(t *testing.T) {
	postLink := func(t *testing.T, server *Server, reqBody LinkRequest) *httptest.ResponseRecorder {
		t.Helper()
		body, err := json.Marshal(reqBody)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/link", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)
		return rec
	}

	t.Run("classifies raw invoice text", func(t *testing.T) {
		server := setupTestServer(t)
		server.SetDiscovery(testDiscovery())

		rec := postLink(t, server, LinkRequest{
			Text: "Invoice #: INV-100\nVendor: Bayer Pharmaceuticals GmbH\nPO Number: 4411\n",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var result linkage.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "INV-100", result.InvoiceID)
		assert.Equal(t, linkage.StatusMatched, result.Status)
		assert.Equal(t, "BAYER_BCH_1", result.DetectedContract)
		assert.Equal(t, linkage.MethodPONumber, result.MatchMethod)
	})

	t.Run("classifies pre-extracted fields", func(t *testing.T) {
		server := setupTestServer(t)
		server.SetDiscovery(testDiscovery())

		rec := postLink(t, server, LinkRequest{
			Fields: &extraction.InvoiceFields{
				InvoiceID: "INV-200",
				Vendor:    "Bayer AG",
			},
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var result linkage.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, linkage.StatusMatched, result.Status)
		assert.Equal(t, linkage.MethodVendor, result.MatchMethod)
	})

	t.Run("rejects empty request", func(t *testing.T) {
		server := setupTestServer(t)
		server.SetDiscovery(testDiscovery())

		rec := postLink(t, server, LinkRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects text and fields together", func(t *testing.T) {
		server := setupTestServer(t)
		server.SetDiscovery(testDiscovery())

		rec := postLink(t, server, LinkRequest{
			Text:   "Invoice #: INV-1",
			Fields: &extraction.InvoiceFields{InvoiceID: "INV-1"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 503 before discovery", func(t *testing.T) {
		server := setupTestServer(t)

		rec := postLink(t, server, LinkRequest{Text: "Invoice #: INV-1"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	server, err := NewServer(config.ServerConfig{
		Host:      "localhost",
		Port:      0,
		RateLimit: 1,
		Burst:     2,
	}, zap.NewNop())
	require.NoError(t, err)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Burst of 2 admits the first requests; the tail is throttled.
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}
