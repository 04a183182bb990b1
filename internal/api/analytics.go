package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ConfabulousDev/chatstats/internal/analytics"
	"github.com/ConfabulousDev/chatstats/internal/logger"
	"github.com/ConfabulousDev/chatstats/internal/metrics"
)

// scopeParam returns the scope query parameter, defaulting to Overall.
func scopeParam(r *http.Request) string {
	if scope := r.URL.Query().Get("scope"); scope != "" {
		return scope
	}
	return analytics.Overall
}

// readLog decodes the JSONL request body into a MessageLog. On failure it
// writes the error response and returns false.
func (s *Server) readLog(w http.ResponseWriter, r *http.Request) (*analytics.MessageLog, bool) {
	log := logger.Ctx(r.Context())

	msgLog, err := analytics.ReadJSONL(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case analytics.IsInputError(err), errors.Is(err, errCorruptBody):
			log.Info("rejected message log", "error", err)
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("failed to read request body", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to read request body")
		}
		return nil, false
	}

	metrics.RecordsAnalyzed(msgLog.Len())
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("chatstats.records", msgLog.Len()))
	return msgLog, true
}

// viewFunc computes one view for a scope.
type viewFunc func(r *http.Request, log *analytics.MessageLog, scope string) (any, error)

// handleView wraps a single-view computation with body decoding and error
// mapping. ErrNoData maps to 422.
func (s *Server) handleView(card string, fn viewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgLog, ok := s.readLog(w, r)
		if !ok {
			return
		}

		result, err := fn(r, msgLog, scopeParam(r))
		if err != nil {
			if errors.Is(err, errBadParam) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			metrics.CardError(card)
			if errors.Is(err, analytics.ErrNoData) {
				respondError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			logger.Ctx(r.Context()).Error("failed to compute view", "card", card, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to compute analytics")
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// handleReport computes every view for the requested scope.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	log := logger.Ctx(r.Context())

	msgLog, ok := s.readLog(w, r)
	if !ok {
		return
	}

	scope := scopeParam(r)
	report, err := analytics.ComputeReport(r.Context(), msgLog, scope, s.opts)
	if err != nil {
		// Only cancellation fails the whole report; the client is gone.
		log.Info("report abandoned", "error", err)
		respondError(w, http.StatusServiceUnavailable, "Report computation cancelled")
		return
	}
	for card, msg := range report.CardErrors {
		metrics.CardError(card)
		log.Info("report card unavailable", "card", card, "reason", msg)
	}

	reportID := uuid.NewString()
	w.Header().Set("X-Report-ID", reportID)
	log.Info("report computed", "report_id", reportID, "scope", scope, "messages", report.MessageCount)
	respondJSON(w, http.StatusOK, report)
}

// handleScopes lists the scopes a viewer can select for the uploaded log.
func (s *Server) handleScopes(w http.ResponseWriter, r *http.Request) {
	msgLog, ok := s.readLog(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{
		"scopes": msgLog.Scopes(s.opts.NotificationSender),
	})
}

var errBadParam = errors.New("limit must be a positive integer")

func (s *Server) stats(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	return (&analytics.StatsAnalyzer{MediaPlaceholder: s.opts.MediaPlaceholder, Links: s.opts.Links}).Analyze(log, scope)
}

// users ignores scope: the ranking always covers the whole log.
func (s *Server) users(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	return (&analytics.UsersAnalyzer{}).Analyze(log)
}

func (s *Server) monthly(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	return (&analytics.TimelineAnalyzer{}).Monthly(log, scope), nil
}

func (s *Server) daily(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	return (&analytics.TimelineAnalyzer{}).Daily(log, scope), nil
}

func (s *Server) words(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	n := s.opts.TopWords
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return nil, errBadParam
		}
		n = limit
	}
	return (&analytics.WordsAnalyzer{
		MediaPlaceholder:   s.opts.MediaPlaceholder,
		NotificationSender: s.opts.NotificationSender,
		TopN:               n,
	}).Analyze(log, scope)
}

func (s *Server) emoji(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	top, err := (&analytics.EmojiAnalyzer{Set: s.opts.Emoji, TopN: s.opts.TopEmojis}).Analyze(log, scope)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"emoji": top,
		"share": analytics.EmojiShare(top, analytics.DefaultEmojiShareSlices),
	}, nil
}

func (s *Server) activity(r *http.Request, log *analytics.MessageLog, scope string) (any, error) {
	return (&analytics.ActivityAnalyzer{}).Analyze(log, scope)
}
