package http

import (
	"fmt"
	nethttp "net/http"
	"strings"
	"time"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/export"
	"go-fleet-ops-dashboard/internal/records"
)

// serveExport streams a filtered-and-sorted table as a CSV or JSON download.
// The default export scope is the whole filtered set; scope=page narrows to
// the requested page, mirroring the page/all-filtered selection choice.
func serveExport[T any](w nethttp.ResponseWriter, r *nethttp.Request, s records.Schema[T], res tableResult[T], perms auth.Permissions, base string, p tableParams, summary records.Summary) {
	if !perms.Allows(auth.CapExport) {
		writeJSON(w, nethttp.StatusForbidden, map[string]any{
			"error": "export capability not granted (set APP_ALLOW_EXPORT=true)",
		})
		return
	}

	rows := res.Filtered
	scopeLabel := p.Fleet
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("scope")), "page") {
		rows = res.Rows
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	now := time.Now().UTC()

	if format == "json" {
		filename := export.Filename(base, scopeLabel, now, "json")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		env := export.Envelope{
			GeneratedAt: now,
			Scope:       scopeLabel,
			Filters:     exportFilters(p),
			Summary:     summary,
			Count:       len(rows),
			Data:        rows,
		}
		if err := export.JSON(w, env); err != nil {
			fmt.Printf("export json %s: %v\n", base, err)
		}
		return
	}

	headers, table := s.Table(rows)
	filename := export.Filename(base, scopeLabel, now, "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.CSV(w, headers, table); err != nil {
		fmt.Printf("export csv %s: %v\n", base, err)
	}
}

func exportFilters(p tableParams) map[string]string {
	out := map[string]string{}
	if p.Search != "" {
		out["search"] = p.Search
	}
	if p.Fleet != "" {
		out["fleet"] = p.Fleet
	}
	for k, v := range p.Equals {
		out[k] = v
	}
	if p.DateFrom != nil {
		out["from"] = p.DateFrom.Format("2006-01-02")
	}
	if p.DateTo != nil {
		out["to"] = p.DateTo.Format("2006-01-02")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
