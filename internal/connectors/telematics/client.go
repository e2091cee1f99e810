package telematics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Event is one safety event reported by the telematics provider.
type Event struct {
	EventID    string     `json:"event_id"`
	DriverID   string     `json:"driver_id"`
	Rego       string     `json:"rego"`
	Category   string     `json:"category"`
	Severity   string     `json:"severity"`
	Score      float64    `json:"score"`
	OccurredAt *time.Time `json:"occurred_at"`
	Reviewed   bool       `json:"reviewed"`
}

// Result is a per-driver event lookup response from the provider API.
type Result struct {
	DriverID    string  `json:"driver_id"`
	Provider    string  `json:"provider"`
	TookMs      int64   `json:"took_ms"`
	TotalEvents int64   `json:"total_events"`
	Events      []Event `json:"events"`
}

// ServiceStats holds lightweight provider API health data.
type ServiceStats struct {
	PingMS           int64  `json:"ping_ms"`
	Provider         string `json:"provider"`
	APIVersion       string `json:"api_version"`
	Status           string `json:"status"`
	DevicesOnline    int    `json:"devices_online"`
	DevicesTotal     int    `json:"devices_total"`
	EventBacklog     int    `json:"event_backlog"`
	LastIngestionAge int64  `json:"last_ingestion_age_seconds"`
}

// Client performs lightweight driver event lookups against a telematics
// provider HTTP API (LYTX or Guardian style).
type Client struct {
	endpoint string
	provider string
	http     *http.Client
}

func NewClient(endpoint, provider string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		provider: strings.ToLower(strings.TrimSpace(provider)),
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

func (c *Client) Provider() string {
	if c == nil {
		return ""
	}
	return c.provider
}

// DriverEvents fetches recent safety events recorded against one driver.
func (c *Client) DriverEvents(ctx context.Context, driverID string, since time.Time, limit int) (*Result, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	driverID = strings.TrimSpace(driverID)
	q := url.Values{}
	q.Set("driver_id", driverID)
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(limit))

	start := time.Now()
	raw, err := c.getJSON(ctx, "/v1/events?"+q.Encode())
	if err != nil {
		return nil, err
	}

	out := &Result{
		DriverID: driverID,
		Provider: c.provider,
		TookMs:   time.Since(start).Milliseconds(),
	}

	out.TotalEvents = int64(asFloat(raw["total"]))
	items, _ := raw["events"].([]any)
	out.Events = make([]Event, 0, len(items))
	for _, rv := range items {
		item, ok := rv.(map[string]any)
		if !ok {
			continue
		}
		ev := Event{
			EventID:  asString(item["event_id"]),
			DriverID: asString(item["driver_id"]),
			Rego:     asString(item["rego"]),
			Category: asString(item["category"]),
			Severity: asString(item["severity"]),
			Score:    asFloat(item["score"]),
			Reviewed: asBool(item["reviewed"]),
		}
		if ts := asString(item["occurred_at"]); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				u := t.UTC()
				ev.OccurredAt = &u
			}
		}
		out.Events = append(out.Events, ev)
	}
	if out.TotalEvents == 0 {
		out.TotalEvents = int64(len(out.Events))
	}

	return out, nil
}

// ServiceStats returns provider API reachability and ingestion health.
func (c *Client) ServiceStats(ctx context.Context) (*ServiceStats, error) {
	if !c.Enabled() {
		return nil, nil
	}

	start := time.Now()
	health, err := c.getJSON(ctx, "/v1/health")
	if err != nil {
		return nil, err
	}
	pingMS := time.Since(start).Milliseconds()

	out := &ServiceStats{
		PingMS:           pingMS,
		Provider:         c.provider,
		APIVersion:       asString(health["api_version"]),
		Status:           asString(health["status"]),
		DevicesOnline:    int(asFloat(health["devices_online"])),
		DevicesTotal:     int(asFloat(health["devices_total"])),
		EventBacklog:     int(asFloat(health["event_backlog"])),
		LastIngestionAge: int64(asFloat(health["last_ingestion_age_seconds"])),
	}

	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]any, error) {
	u, err := url.Parse(c.endpoint + path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		blob, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("telematics status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(blob)))
	}

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
