package http

import (
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-fleet-ops-dashboard/internal/config"
	"go-fleet-ops-dashboard/internal/records"
)

// tableParams carries the table pipeline controls shared by every list
// endpoint: free-text search, enum filters, a date window, sort and paging.
type tableParams struct {
	Search   string
	Fleet    string
	Equals   map[string]string
	DateFrom *time.Time
	DateTo   *time.Time
	SortKey  string
	SortDesc bool
	Page     int
	PageSize int
}

// parseTableParams extracts pipeline controls from the query string. Unknown
// filter keys are ignored; page and page_size are clamped to configured
// bounds. Sort direction defaults to descending, matching how a fresh sort
// on a dashboard column starts.
func parseTableParams(r *nethttp.Request, cfg config.Config, defaultSortKey string, filterKeys ...string) tableParams {
	q := r.URL.Query()

	p := tableParams{
		Search:   strings.TrimSpace(q.Get("search")),
		Fleet:    strings.TrimSpace(q.Get("fleet")),
		Equals:   map[string]string{},
		SortKey:  strings.TrimSpace(q.Get("sort")),
		SortDesc: true,
		Page:     1,
		PageSize: cfg.DefaultPageSize,
	}
	if p.SortKey == "" {
		p.SortKey = defaultSortKey
	}
	if dir := strings.ToLower(strings.TrimSpace(q.Get("dir"))); dir == "asc" {
		p.SortDesc = false
	}

	for _, key := range filterKeys {
		if val := strings.TrimSpace(q.Get(key)); val != "" {
			p.Equals[key] = val
		}
	}

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			t := parsed.UTC()
			p.DateFrom = &t
		}
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive day bound: extend to end of day.
			t := parsed.UTC().Add(24*time.Hour - time.Nanosecond)
			p.DateTo = &t
		}
	}

	if raw := q.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			p.Page = parsed
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			p.PageSize = parsed
		}
	}
	if cfg.MaxPageSize > 0 && p.PageSize > cfg.MaxPageSize {
		p.PageSize = cfg.MaxPageSize
	}

	return p
}

func (p tableParams) query(cfg config.Config, dateKey string) records.Query {
	q := records.Query{
		Search:          p.Search,
		SearchMinLength: cfg.SearchMinLength,
		Equals:          p.Equals,
	}
	if dateKey != "" && (p.DateFrom != nil || p.DateTo != nil) {
		q.DateKey = dateKey
		q.DateFrom = p.DateFrom
		q.DateTo = p.DateTo
	}
	return q
}

// tableResult is the outcome of applying the full pipeline to one fetch.
type tableResult[T any] struct {
	Rows      []T
	Filtered  []T
	Total     int
	Page      int
	PageSize  int
	PageCount int
}

// runTable applies filter, sort and pagination. An out-of-range page yields
// an empty row set rather than an error.
func runTable[T any](s records.Schema[T], recs []T, q records.Query, sortKey string, desc bool, page, pageSize int) tableResult[T] {
	filtered := records.Filter(s, recs, q)
	sorted := records.Sort(s, filtered, sortKey, desc)
	rows := records.Paginate(sorted, page, pageSize)

	return tableResult[T]{
		Rows:      rows,
		Filtered:  sorted,
		Total:     len(recs),
		Page:      page,
		PageSize:  pageSize,
		PageCount: records.PageCount(len(sorted), pageSize),
	}
}

func (res tableResult[T]) meta(p tableParams) map[string]any {
	meta := map[string]any{
		"total":     res.Total,
		"filtered":  len(res.Filtered),
		"count":     len(res.Rows),
		"page":      res.Page,
		"page_size": res.PageSize,
		"pages":     res.PageCount,
		"sort":      p.SortKey,
		"dir":       map[bool]string{true: "desc", false: "asc"}[p.SortDesc],
	}
	if p.Search != "" {
		meta["search"] = p.Search
	}
	if p.Fleet != "" {
		meta["fleet"] = p.Fleet
	}
	for k, v := range p.Equals {
		meta[k] = v
	}
	return meta
}
