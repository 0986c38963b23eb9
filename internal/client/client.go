// Package client is a small HTTP client for the roomboard API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/navikt/roomboard/internal/models"
)

const defaultTimeout = 15 * time.Second

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// IsNotFound reports whether err is an API 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: defaultTimeout},
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *Client) AllStatuses(ctx context.Context) ([]models.RoomStatus, error) {
	var statuses []models.RoomStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) RoomStatus(ctx context.Context, roomID string) (models.RoomStatus, error) {
	var status models.RoomStatus
	path := "/api/rooms/" + url.PathEscape(roomID) + "/status"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &status); err != nil {
		return models.RoomStatus{}, err
	}
	return status, nil
}

// Schedule returns a room's classified slots on date; an empty date means today
func (c *Client) Schedule(ctx context.Context, roomID, date string) (models.Schedule, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": []string{date}}
	}

	var schedule models.Schedule
	path := "/api/rooms/" + url.PathEscape(roomID) + "/schedule"
	if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &schedule); err != nil {
		return models.Schedule{}, err
	}
	return schedule, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.doJSON(ctx, http.MethodGet, "/api/rooms", nil, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) BookAppointment(ctx context.Context, appointment models.Appointment) (models.Appointment, error) {
	var booked models.Appointment
	if err := c.doJSON(ctx, http.MethodPost, "/api/appointments", nil, appointment, &booked); err != nil {
		return models.Appointment{}, err
	}
	return booked, nil
}

func (c *Client) CancelAppointment(ctx context.Context, appointmentID string) error {
	path := "/api/appointments/" + url.PathEscape(appointmentID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &errBody) != nil {
			errBody.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}
