package http

import (
	"context"
	"net/http"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/ui"
)

// handleIndex renders the dashboard shell; every panel loads itself via htmx.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	state := ui.FromQuery(r.URL.Query())
	data := struct {
		Year   int
		State  ui.TableState
		Months []monthOption
	}{
		Year:   s.queries.Year(),
		State:  state,
		Months: monthOptions(state.Month),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleUITransactions applies the requested table transition and renders
// the resulting page of rows.
func (s *Server) handleUITransactions(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	q := r.URL.Query()
	state := ui.FromQuery(q).Apply(q.Get("op"))

	txs, err := s.queries.List(ctx, state.Month, state.Page, core.DefaultPerPage, state.Search)
	if err != nil {
		s.logQueryError(ctx, applog.OpList, ListParams{Month: state.Month, Page: state.Page, Search: state.Search}, err)
		PlaceholderResponse("Transactions are unavailable right now.").Write(w)
		return
	}

	s.render(ctx, w, "transactions_table", struct {
		State ui.TableState
		Rows  []core.Transaction
	}{State: state, Rows: txs})
}

func (s *Server) handleUIStatistics(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	month := ParseMonthParam(r.URL.Query())
	st, err := s.queries.Statistics(ctx, month)
	if err != nil {
		s.logQueryError(ctx, applog.OpStatistics, ListParams{Month: month}, err)
		PlaceholderResponse("Statistics are unavailable right now.").Write(w)
		return
	}

	s.render(ctx, w, "statistics_panel", struct {
		MonthName string
		Stats     core.Statistics
	}{MonthName: monthName(month), Stats: st})
}

func (s *Server) handleUIBarChart(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	month := ParseMonthParam(r.URL.Query())
	buckets, err := s.queries.BarChart(ctx, month)
	if err != nil {
		s.logQueryError(ctx, applog.OpBarChart, ListParams{Month: month}, err)
		PlaceholderResponse("The bar chart is unavailable right now.").Write(w)
		return
	}

	s.render(ctx, w, "bar_chart", struct {
		MonthName string
		Bars      []barView
	}{MonthName: monthName(month), Bars: barViews(buckets)})
}

func (s *Server) handleUIPieChart(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	month := ParseMonthParam(r.URL.Query())
	counts, err := s.queries.PieChart(ctx, month)
	if err != nil {
		s.logQueryError(ctx, applog.OpPieChart, ListParams{Month: month}, err)
		PlaceholderResponse("The pie chart is unavailable right now.").Write(w)
		return
	}

	s.render(ctx, w, "pie_chart", struct {
		MonthName string
		Slices    []pieSlice
	}{MonthName: monthName(month), Slices: pieSlices(counts)})
}

func (s *Server) render(ctx context.Context, w http.ResponseWriter, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(ctx, "Templates not loaded", "template", name)
		PlaceholderResponse("This panel is unavailable right now.").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Template execution failed",
			applog.FieldOperation, applog.OpRender, applog.FieldError, err, "template", name)
	}
}
