// Package api is the JSON-over-HTTP client for the refdesk backend. Paths
// mirror the backend contract exactly; the client trusts responses verbatim
// and never retries on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/refdesk/refdesk/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp.StatusCode, data)
		c.log.Debug("backend error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// TaskByUser loads the full roster snapshot for a task+employee pair.
func (c *Client) TaskByUser(ctx context.Context, taskID, employeeID string) (*domain.RosterSnapshot, error) {
	payload := map[string]string{"taskId": taskID, "employeeId": employeeID}
	snap := &domain.RosterSnapshot{}
	if err := c.do(ctx, http.MethodPost, "/employee/taskbyuser", payload, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Pay requests a payout for one roster user. Success or error only; the
// caller applies the local paid flag after this returns nil.
func (c *Client) Pay(ctx context.Context, taskID, userID, employeeID string) error {
	payload := map[string]string{
		"taskId":     taskID,
		"userId":     userID,
		"employeeId": employeeID,
	}
	return c.do(ctx, http.MethodPost, "/employee/pay", payload, nil)
}

// BalanceHistory is one page of an employee's payout ledger.
type BalanceHistory struct {
	History     []domain.BalanceEntry `json:"history"`
	Total       int                   `json:"total"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
}

func (c *Client) EmployeeBalanceHistory(ctx context.Context, employeeID string, page, limit int) (*BalanceHistory, error) {
	payload := map[string]any{
		"employeeId": employeeID,
		"page":       page,
		"limit":      limit,
	}
	history := &BalanceHistory{}
	if err := c.do(ctx, http.MethodPost, "/admin/employees/balance-history", payload, history); err != nil {
		return nil, err
	}
	return history, nil
}

// CreateTaskRequest is the admin form payload for a new email task.
type CreateTaskRequest struct {
	Platform    string          `json:"platform"`
	Target      int             `json:"targetPerEmployee"`
	Amount      decimal.Decimal `json:"amountPerPerson"`
	MaxEmails   int             `json:"maxEmails"`
	ExpiryHours int             `json:"expiryHours"`
}

func (c *Client) CreateEmailTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	task := &domain.Task{}
	if err := c.do(ctx, http.MethodPost, "/admin/emailtasks", req, task); err != nil {
		return nil, err
	}
	return task, nil
}

// TaskPage is one page of the admin task list.
type TaskPage struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

func (c *Client) ListEmailTasks(ctx context.Context, page, limit int) (*TaskPage, error) {
	payload := map[string]int{"page": page, "limit": limit}
	tasks := &TaskPage{}
	if err := c.do(ctx, http.MethodPost, "/admin/emailtasks/list", payload, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetUser fetches a user's profile with their recorded entries.
func (c *Client) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	profile := &domain.Profile{}
	if err := c.do(ctx, http.MethodGet, "/user/getbyuserId/"+userID, nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateUser updates the user's own profile fields.
func (c *Client) UpdateUser(ctx context.Context, userID, name, email string) (*domain.Profile, error) {
	payload := map[string]string{"userId": userID, "name": name, "email": email}
	profile := &domain.Profile{}
	if err := c.do(ctx, http.MethodPost, "/user/update", payload, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
