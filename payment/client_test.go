package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayStub(t *testing.T, response StatusResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MID-TEST", body["MID"])
		assert.NotEmpty(t, body["ORDERID"])

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func TestCheckStatus_Success(t *testing.T) {
	server := gatewayStub(t, StatusResponse{
		Status:    "TXN_SUCCESS",
		RespCode:  "01",
		TxnAmount: "200.00",
		BankTxnID: "BANK-777",
		OrderID:   "FFA-abc",
	})
	defer server.Close()

	client := NewClient(server.URL, "MID-TEST")
	confirmed, err := client.CheckStatus(context.Background(), "FFA-abc")
	require.NoError(t, err)
	assert.Equal(t, "FFA-abc", confirmed.OrderRef)
	assert.Equal(t, 200, confirmed.Amount)
	assert.Equal(t, "BANK-777", confirmed.BankTxnID)
}

func TestCheckStatus_Pending(t *testing.T) {
	server := gatewayStub(t, StatusResponse{Status: "PENDING", RespCode: "400"})
	defer server.Close()

	client := NewClient(server.URL, "MID-TEST")
	_, err := client.CheckStatus(context.Background(), "FFA-abc")
	assert.ErrorIs(t, err, ErrTransactionPending)
}

func TestCheckStatus_Failed(t *testing.T) {
	server := gatewayStub(t, StatusResponse{
		Status:      "TXN_FAILURE",
		RespCode:    "227",
		RespMessage: "Insufficient funds",
	})
	defer server.Close()

	client := NewClient(server.URL, "MID-TEST")
	_, err := client.CheckStatus(context.Background(), "FFA-abc")
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.Contains(t, err.Error(), "Insufficient funds")
}

func TestCheckStatus_SuccessWithBadRespCode(t *testing.T) {
	// Шлюз иногда отдаёт TXN_SUCCESS со служебным кодом ошибки.
	server := gatewayStub(t, StatusResponse{Status: "TXN_SUCCESS", RespCode: "810", TxnAmount: "100.00"})
	defer server.Close()

	client := NewClient(server.URL, "MID-TEST")
	_, err := client.CheckStatus(context.Background(), "FFA-abc")
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestCheckStatus_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "MID-TEST")
	_, err := client.CheckStatus(context.Background(), "FFA-abc")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestParseRupees(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"200.00", 200, false},
		{"1", 1, false},
		{"0.00", 0, false},
		{"199.50", 0, true},
		{"abc", 0, true},
	}

	for _, tc := range cases {
		got, err := parseRupees(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
