package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
)

const (
	defaultTimeout = 15 * time.Second
	listTimeout    = 30 * time.Second
)

// RemoteStore is the remote record API boundary consumed by the sync
// cache. Every call attaches the caller's credential.
type RemoteStore interface {
	Create(ctx context.Context, token string, rec domain.AppointmentRecord, idempotencyKey string) (remoteID string, err error)
	ListForSubject(ctx context.Context, token, role, subjectID string, filter domain.ListFilter) ([]domain.AppointmentRecord, error)
	GetByID(ctx context.Context, token, id string) (*domain.AppointmentRecord, error)
	UpdateStatus(ctx context.Context, token, id, status string) error
}

// RemoteClient talks to the remote record store over HTTP.
type RemoteClient struct {
	baseURL       string
	defaultClient *http.Client
	listClient    *http.Client // Listing can be slower on cold shards
}

// NewRemoteClient creates a new remote record store client
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL: baseURL,
		defaultClient: &http.Client{
			Timeout: defaultTimeout,
		},
		listClient: &http.Client{
			Timeout: listTimeout,
		},
	}
}

type createResponse struct {
	ID string `json:"id"`
}

// Create persists a record remotely and returns the remotely-assigned id.
// Both patientId and doctorId must be present; that is checked here
// before anything reaches the network.
func (c *RemoteClient) Create(ctx context.Context, token string, rec domain.AppointmentRecord, idempotencyKey string) (string, error) {
	if rec.PatientID == "" || rec.DoctorID == "" {
		return "", fmt.Errorf("%w: patientId and doctorId are required", domain.ErrValidationFailed)
	}

	logger := NewLogger(ctx)
	start := time.Now()

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/appointments", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.defaultClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.LogError("remote_create", err)
		recordRemoteCall(duration, err)
		return "", fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		logger.LogWarnf("remote_create", "remote store returned status %d", resp.StatusCode)
		recordRemoteCall(duration, err)
		return "", err
	}
	recordRemoteCall(duration, nil)

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	return out.ID, nil
}

// ListForSubject fetches the records visible to a subject in a role.
func (c *RemoteClient) ListForSubject(ctx context.Context, token, role, subjectID string, filter domain.ListFilter) ([]domain.AppointmentRecord, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	u.Path = u.Path + "/appointments"

	q := u.Query()
	q.Set("role", role)
	q.Set("subject", subjectID)
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.From != "" {
		q.Set("from", filter.From)
	}
	if filter.To != "" {
		q.Set("to", filter.To)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req, token)

	start := time.Now()
	resp, err := c.listClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		recordRemoteCall(duration, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		recordRemoteCall(duration, err)
		return nil, err
	}
	recordRemoteCall(duration, nil)

	var records []domain.AppointmentRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return records, nil
}

// GetByID fetches a single record.
func (c *RemoteClient) GetByID(ctx context.Context, token, id string) (*domain.AppointmentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/appointments/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req, token)

	start := time.Now()
	resp, err := c.defaultClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		recordRemoteCall(duration, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		recordRemoteCall(duration, err)
		return nil, err
	}
	recordRemoteCall(duration, nil)

	var rec domain.AppointmentRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// UpdateStatus transitions a remote record's status.
func (c *RemoteClient) UpdateStatus(ctx context.Context, token, id, status string) error {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/appointments/"+id+"/status", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)

	start := time.Now()
	resp, err := c.defaultClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		recordRemoteCall(duration, err)
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		recordRemoteCall(duration, err)
		return err
	}
	recordRemoteCall(duration, nil)

	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *RemoteClient) authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// checkStatus maps HTTP statuses onto the error taxonomy.
func (c *RemoteClient) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrRecordNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: status %d", domain.ErrValidationFailed, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}
}
