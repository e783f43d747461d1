package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	applog "salesboard/internal/log"
)

const seededMessage = "Database seeded successfully"

// handleSeed fetches the external dataset and inserts it. Text responses.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.seedTimeout)
	defer cancel()

	res, err := s.seeder.Seed(ctx)
	if err != nil {
		applog.EventsFrom(ctx).SeedFailed(ctx, res.Source, err)
		msg := "Error seeding database: " + err.Error()
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			Header("Content-Type", "text/plain; charset=utf-8").
			TriggerNotification(NotificationError, msg, 5000).
			BodyString(msg).
			Write(w)
		return
	}
	s.queries.Invalidate(ctx, "seed-database")

	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		TriggerDataChanged(res.Inserted).
		TriggerNotification(NotificationSuccess, seededMessage, 3000).
		BodyString(seededMessage).
		Write(w)
}

// handleMetrics writes request, abuse and cache counters in the Prometheus
// text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	rl := s.seedLimiter.GetMetrics()
	cs := s.queries.CacheStats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", tm.TotalRequests)
	writeMetric(w, "http_server_errors_total", "counter", "Responses with a 5xx status", tm.ServerErrors)
	writeMetric(w, "http_last_request_duration_microseconds", "gauge", "Duration of the most recent request", tm.LastDurationUs)
	writeMetric(w, "seed_rate_limited_total", "counter", "Seed requests rejected by the rate limiter", rl.Rejected)
	writeMetric(w, "seed_rate_limit_clients", "gauge", "Clients tracked by the seed rate limiter", rl.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Requests rejected as hostile", s.detector.SuspiciousCount())
	writeMetric(w, "query_cache_hits_total", "counter", "Month aggregates served from cache", cs.Hits)
	writeMetric(w, "query_cache_misses_total", "counter", "Month aggregates loaded from the store", cs.Misses)
	writeMetric(w, "query_cache_invalidations_total", "counter", "Cache flushes after a seed", cs.Invalidations)
	writeMetric(w, "query_cache_entries", "gauge", "Month aggregates currently cached", int64(cs.Entries))
}

func writeMetric(w io.Writer, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n", name, help, name, kind, name, value)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	p := ParseListParams(r.URL.Query())
	txs, err := s.queries.List(ctx, p.Month, p.Page, p.PerPage, p.Search)
	if err != nil {
		s.logQueryError(ctx, applog.OpList, p, err)
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTransactionDTOs(txs))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
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
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toStatisticsDTO(st))
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
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
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toBarDTOs(buckets))
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
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
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCategoryDTOs(counts))
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	month := ParseMonthParam(r.URL.Query())
	c, err := s.queries.Combined(ctx, month)
	if err != nil {
		s.logQueryError(ctx, applog.OpCombined, ListParams{Month: month}, err)
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCombinedDTO(c))
}

func (s *Server) logQueryError(ctx context.Context, op string, p ListParams, err error) {
	applog.EventsFrom(ctx).QueryFailed(ctx, op, p.Month, p.Page, p.PerPage, p.Search, err)
}
