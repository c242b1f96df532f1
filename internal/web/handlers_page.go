package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/logging"
	"github.com/JonMunkholm/procspec/internal/web/templates"
	"github.com/spf13/cast"
)

// handleProcessorPage renders the filterable processor table. Filters
// arrive as query parameters from the page's own GET form.
func (s *Server) handleProcessorPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	limit := s.cfg.List.MaxLimit
	browse, err := core.BrowseProcessors(r.Context(), s.store, filter, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	params := templates.ProcessorListParams{
		Selects: filterSelects(q, browse.Options),
		Rows:    browse.Matches,
		Total:   browse.Total,
		Limit:   limit,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ProcessorList(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render processor page", "error", err)
	}
}

func parseFilter(q url.Values) (core.ProcessorFilter, error) {
	f := core.ProcessorFilter{
		Year:     q.Get("year"),
		Status:   q.Get("status"),
		CodeName: q.Get("code_name"),
	}

	for _, p := range []struct {
		name string
		dst  **int32
	}{
		{"cores", &f.Cores},
		{"threads", &f.Threads},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return f, &core.ValidationError{Field: p.name, Reason: "invalid parameter: must be an integer"}
		}
		v := int32(n)
		*p.dst = &v
	}

	if raw := q.Get("lithography"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, &core.ValidationError{Field: "lithography", Reason: "invalid parameter: must be a number"}
		}
		f.Lithography = &v
	}
	return f, nil
}

func filterSelects(q url.Values, opts core.FilterOptions) []templates.FilterSelect {
	return []templates.FilterSelect{
		{Name: "year", AllLabel: "All Years", Selected: q.Get("year"), Options: stringOptions(opts.Years, "")},
		{Name: "status", AllLabel: "All Status", Selected: q.Get("status"), Options: stringOptions(opts.Statuses, "")},
		{Name: "code_name", AllLabel: "All Code Names", Selected: q.Get("code_name"), Options: stringOptions(opts.CodeNames, "")},
		{Name: "cores", AllLabel: "All Cores", Selected: q.Get("cores"), Options: numberOptions(opts.Cores, "")},
		{Name: "threads", AllLabel: "All Threads", Selected: q.Get("threads"), Options: numberOptions(opts.Threads, "")},
		{Name: "lithography", AllLabel: "All Lithography", Selected: q.Get("lithography"), Options: numberOptions(opts.Lithographies, "nm")},
	}
}

func stringOptions(values []string, unit string) []templates.SelectOption {
	out := make([]templates.SelectOption, len(values))
	for i, v := range values {
		out[i] = templates.SelectOption{Value: v, Label: v + unit}
	}
	return out
}

func numberOptions[T int32 | float64](values []T, unit string) []templates.SelectOption {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = cast.ToString(v)
	}
	return stringOptions(strs, unit)
}
