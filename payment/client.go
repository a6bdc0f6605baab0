// Package payment содержит клиент UPI-шлюза для проверки статуса транзакции.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrTransactionPending = errors.New("transaction is still pending at the gateway")
	ErrTransactionFailed  = errors.New("transaction failed at the gateway")
)

// StatusResponse повторяет поля ответа шлюза как есть.
type StatusResponse struct {
	Status      string `json:"STATUS"`
	RespCode    string `json:"RESPCODE"`
	RespMessage string `json:"RESPMSG"`
	TxnAmount   string `json:"TXNAMOUNT"`
	BankTxnID   string `json:"BANKTXNID"`
	OrderID     string `json:"ORDERID"`
	TxnID       string `json:"TXNID"`
	PaymentMode string `json:"PAYMENTMODE"`
	GatewayName string `json:"GATEWAYNAME"`
}

const (
	statusSuccess = "TXN_SUCCESS"
	statusPending = "PENDING"

	respCodeSuccess = "01"
)

type StatusChecker interface {
	// CheckStatus опрашивает шлюз по ссылке заказа и возвращает подтверждённую
	// сумму в рупиях, если транзакция успешна.
	CheckStatus(ctx context.Context, orderRef string) (*ConfirmedPayment, error)
}

type ConfirmedPayment struct {
	OrderRef  string
	Amount    int
	BankTxnID string
}

type Client struct {
	baseURL    string
	merchantID string
	httpClient *http.Client
}

func NewClient(baseURL, merchantID string) *Client {
	return &Client{
		baseURL:    baseURL,
		merchantID: merchantID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) CheckStatus(ctx context.Context, orderRef string) (*ConfirmedPayment, error) {
	reqBody := map[string]string{
		"MID":     c.merchantID,
		"ORDERID": orderRef,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	url := fmt.Sprintf("%s/order/status", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var status StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	switch status.Status {
	case statusSuccess:
		if status.RespCode != respCodeSuccess {
			return nil, fmt.Errorf("%w: unexpected response code %s", ErrTransactionFailed, status.RespCode)
		}
	case statusPending:
		return nil, ErrTransactionPending
	default:
		return nil, fmt.Errorf("%w: %s", ErrTransactionFailed, status.RespMessage)
	}

	// Сумма приходит строкой вида "200.00"; копейки шлюз для UPI не использует.
	amount, err := parseRupees(status.TxnAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gateway amount %q: %w", status.TxnAmount, err)
	}

	return &ConfirmedPayment{
		OrderRef:  orderRef,
		Amount:    amount,
		BankTxnID: status.BankTxnID,
	}, nil
}

func parseRupees(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("fractional amounts are not supported: %s", s)
	}
	return int(f), nil
}
