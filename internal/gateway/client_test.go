package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-sync/internal/config"
	"github.com/wallet-sync/internal/errors"
	"github.com/wallet-sync/internal/logging"
)

// fakeLedgerServer is a minimal remote ledger used by the client tests
type fakeLedgerServer struct {
	server *httptest.Server

	lastMethod  string
	lastTable   string
	lastQuery   string
	lastBody    []byte
	lastHeaders http.Header

	status   int
	response string
}

func newFakeLedgerServer() *fakeLedgerServer {
	f := &fakeLedgerServer{status: http.StatusOK, response: "[]"}

	router := mux.NewRouter()
	router.HandleFunc("/rest/v1/{table}", func(w http.ResponseWriter, r *http.Request) {
		f.lastMethod = r.Method
		f.lastTable = mux.Vars(r)["table"]
		f.lastQuery = r.URL.RawQuery
		f.lastHeaders = r.Header.Clone()
		f.lastBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.response))
	})

	f.server = httptest.NewServer(router)
	return f
}

func (f *fakeLedgerServer) Close() { f.server.Close() }

func testLogger() *logging.Logger {
	logger := logging.NewLogger(logging.LevelError, logging.FormatText)
	logger.SetOutput(discard{})
	return logger
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTestClient(baseURL string) *Client {
	return NewClient(&config.GatewayConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, testLogger())
}

func TestSelect(t *testing.T) {
	ledger := newFakeLedgerServer()
	defer ledger.Close()
	ledger.response = `[{"user_id":"u1","usdt_balance":"42.5"},{"user_id":"u1","usdt_balance":7}]`

	client := newTestClient(ledger.server.URL)
	rows, err := client.Select(context.Background(), TableWalletBalances, Filter{"user_id": Eq("u1")})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, http.MethodGet, ledger.lastMethod)
	assert.Equal(t, TableWalletBalances, ledger.lastTable)
	assert.Equal(t, "user_id=eq.u1", ledger.lastQuery)
	assert.Equal(t, "test-key", ledger.lastHeaders.Get("apikey"))
	assert.Equal(t, "Bearer test-key", ledger.lastHeaders.Get("Authorization"))
	assert.NotEmpty(t, ledger.lastHeaders.Get("X-Request-Id"))

	balance, ok := rows[0].Num("usdt_balance")
	assert.True(t, ok)
	assert.Equal(t, 42.5, balance)
	balance, ok = rows[1].Num("usdt_balance")
	assert.True(t, ok)
	assert.Equal(t, 7.0, balance)
}

func TestInsert(t *testing.T) {
	ledger := newFakeLedgerServer()
	defer ledger.Close()
	ledger.status = http.StatusCreated
	ledger.response = `[{"user_id":"u1","currency":"usdt","network":"trc20","address":"TAbc"}]`

	client := newTestClient(ledger.server.URL)
	row, err := client.Insert(context.Background(), TablePayoutAddresses, Row{
		"user_id":  "u1",
		"currency": "usdt",
		"network":  "trc20",
		"address":  "TAbc",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, ledger.lastMethod)
	assert.Equal(t, "return=representation", ledger.lastHeaders.Get("Prefer"))
	assert.Equal(t, "application/json", ledger.lastHeaders.Get("Content-Type"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(ledger.lastBody, &sent))
	assert.Equal(t, "TAbc", sent["address"])

	address, ok := row.Str("address")
	assert.True(t, ok)
	assert.Equal(t, "TAbc", address)
}

func TestPatch(t *testing.T) {
	ledger := newFakeLedgerServer()
	defer ledger.Close()
	ledger.status = http.StatusNoContent
	ledger.response = ""

	client := newTestClient(ledger.server.URL)
	err := client.Patch(context.Background(), TableWalletBalances,
		Filter{"user_id": Eq("u1")}, Row{"usdt_balance": 80.0})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, ledger.lastMethod)
	assert.Equal(t, "user_id=eq.u1", ledger.lastQuery)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(ledger.lastBody, &sent))
	assert.Equal(t, 80.0, sent["usdt_balance"])
}

func TestNonSuccessCarriesBody(t *testing.T) {
	ledger := newFakeLedgerServer()
	defer ledger.Close()
	ledger.status = http.StatusConflict
	ledger.response = `{"message":"duplicate address"}`

	client := newTestClient(ledger.server.URL)
	_, err := client.Insert(context.Background(), TablePayoutAddresses, Row{"address": "TAbc"})
	require.Error(t, err)
	assert.True(t, errors.IsRemoteRejected(err))
	assert.Contains(t, err.Error(), "duplicate address")
}

func TestNonSuccessWithoutBodyUsesGenericMessage(t *testing.T) {
	ledger := newFakeLedgerServer()
	defer ledger.Close()
	ledger.status = http.StatusInternalServerError
	ledger.response = ""

	client := newTestClient(ledger.server.URL)
	_, err := client.Select(context.Background(), TableWalletBalances, nil)
	require.Error(t, err)
	assert.True(t, errors.IsRemoteRejected(err))
	assert.Contains(t, err.Error(), "status 500")
}

func TestTransportFailure(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	_, err := client.Select(context.Background(), TableWalletBalances, nil)
	require.Error(t, err)
	assert.False(t, errors.IsRemoteRejected(err))
}

func TestFilterEncodingIsStable(t *testing.T) {
	ledger := newFakeLedgerServer()
	defer ledger.Close()

	client := newTestClient(ledger.server.URL)
	_, err := client.Select(context.Background(), TableReferralEdges, Filter{
		"depth":       Lt("4"),
		"ancestor_id": Eq("u1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ancestor_id=eq.u1&depth=lt.4", ledger.lastQuery)
}

func TestRowGetters(t *testing.T) {
	row := Row{
		"str":    "hello",
		"num":    12.5,
		"numstr": "99",
		"bad":    "oops",
		"flag":   true,
		"null":   nil,
	}

	s, ok := row.Str("str")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	n, ok := row.Num("num")
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	n, ok = row.Num("numstr")
	assert.True(t, ok)
	assert.Equal(t, 99.0, n)

	_, ok = row.Num("bad")
	assert.False(t, ok)
	_, ok = row.Num("null")
	assert.False(t, ok)
	_, ok = row.Num("missing")
	assert.False(t, ok)

	b, ok := row.Bool("flag")
	assert.True(t, ok)
	assert.True(t, b)

	i, ok := row.Int("numstr")
	assert.True(t, ok)
	assert.Equal(t, 99, i)
}
