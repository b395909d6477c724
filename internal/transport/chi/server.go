// Package chi exposes the marketplace over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/domain"
	healthuc "github.com/swapmeet-io/swapmeet/internal/usecase/health"
	messageuc "github.com/swapmeet-io/swapmeet/internal/usecase/message"
	offeruc "github.com/swapmeet-io/swapmeet/internal/usecase/offer"
	rankuc "github.com/swapmeet-io/swapmeet/internal/usecase/rank"
	tradeuc "github.com/swapmeet-io/swapmeet/internal/usecase/trade"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeOfferNotFound       = "offer_not_found"
	codeNoCounterpartyOffer = "no_counterparty_offer"
	codeStoreUnavailable    = "store_unavailable"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes marketplace requests to the use case services.
type Server struct {
	offers        *offeruc.Service
	ranking       *rankuc.Service
	trades        *tradeuc.Service
	messages      *messageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	offers *offeruc.Service,
	ranking *rankuc.Service,
	trades *tradeuc.Service,
	messages *messageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		offers:   offers,
		ranking:  ranking,
		trades:   trades,
		messages: messages,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrOfferNotFound, http.StatusNotFound, codeOfferNotFound),
		sentinelHandler(domain.ErrCounterpartyHasNoOffer, http.StatusConflict, codeNoCounterpartyOffer),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/offers", s.createOffer)
		r.Delete("/offers/{offerID}", s.deleteOffer)
		r.Post("/rank", s.rankOffers)
		r.Post("/trades", s.settleTrade)
		r.Post("/messages", s.postMessage)
		r.Get("/messages", s.listMessages)
		r.Get("/users/{userID}/offers", s.listUserOffers)
		r.Get("/users/{userID}/trades", s.listUserTrades)
	})
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metricsHandler)
}

// --- Offers ---

type offerRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Product  string `json:"product"`
	Category string `json:"category"`
	Distance any    `json:"distance"`
	Details  string `json:"details"`
}

type offerResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Product   string    `json:"product"`
	Category  string    `json:"category"`
	Distance  int       `json:"distance"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// createOffer handles POST /api/v1/offers.
func (s *Server) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	o, err := s.offers.Submit(r.Context(), domain.Offer{
		UserID:   req.UserID,
		UserName: req.UserName,
		Product:  req.Product,
		Category: req.Category,
		Distance: coerceDistance(req.Distance),
		Details:  req.Details,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/offers/"+o.ID)
	writeJSON(w, http.StatusCreated, offerToResponse(o))
}

// listUserOffers handles GET /api/v1/users/{userID}/offers.
func (s *Server) listUserOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.offers.ByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]offerResponse, len(offers))
	for i, o := range offers {
		items[i] = offerToResponse(o)
	}
	writeJSON(w, http.StatusOK, listResponse[offerResponse]{Items: items, Total: len(items)})
}

// deleteOffer handles DELETE /api/v1/offers/{offerID}.
func (s *Server) deleteOffer(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if err := s.offers.Withdraw(r.Context(), chi.URLParam(r, "offerID"), userID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Ranking ---

type rankRequest struct {
	Product  string `json:"product"`
	Category string `json:"category"`
	Details  string `json:"details"`
	Distance any    `json:"distance"`
}

type scoredOfferResponse struct {
	offerResponse
	Score           float64 `json:"score"`
	CategoryScore   float64 `json:"category_score"`
	SimilarityScore float64 `json:"similarity_score"`
	DistanceScore   float64 `json:"distance_score"`
}

// rankOffers handles POST /api/v1/rank.
func (s *Server) rankOffers(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ranked, err := s.ranking.Rank(r.Context(), domain.Query{
		Product:  req.Product,
		Category: req.Category,
		Details:  req.Details,
		Distance: coerceDistance(req.Distance),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]scoredOfferResponse, len(ranked))
	for i, so := range ranked {
		items[i] = scoredOfferResponse{
			offerResponse:   offerToResponse(so.Offer),
			Score:           so.Score,
			CategoryScore:   so.CategoryScore,
			SimilarityScore: so.SimilarityScore,
			DistanceScore:   so.DistanceScore,
		}
	}
	writeJSON(w, http.StatusOK, listResponse[scoredOfferResponse]{Items: items, Total: len(items)})
}

// --- Trades ---

type settleRequest struct {
	OfferID        string `json:"offer_id"`
	UserID         string `json:"user_id"`
	CounterpartyID string `json:"counterparty_id"`
}

type tradeResponse struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	Items        [2]string `json:"items"`
	CompletedAt  time.Time `json:"completed_at"`
}

// settleTrade handles POST /api/v1/trades.
func (s *Server) settleTrade(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := s.trades.Settle(r.Context(), req.OfferID, req.UserID, req.CounterpartyID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tradeToResponse(t))
}

// listUserTrades handles GET /api/v1/users/{userID}/trades.
func (s *Server) listUserTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.trades.History(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]tradeResponse, len(trades))
	for i, t := range trades {
		items[i] = tradeToResponse(t)
	}
	writeJSON(w, http.StatusOK, listResponse[tradeResponse]{Items: items, Total: len(items)})
}

// --- Messages ---

type messageRequest struct {
	Sender    string                `json:"sender"`
	Recipient string                `json:"recipient"`
	Text      string                `json:"text"`
	Type      string                `json:"type"`
	Trade     *domain.TradeProposal `json:"trade"`
}

// postMessage handles POST /api/v1/messages.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m, err := s.messages.Post(r.Context(), domain.Message{
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Text:      req.Text,
		Type:      domain.MessageType(req.Type),
		Trade:     req.Trade,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// listMessages handles GET /api/v1/messages?user=&peer=&since=.
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	since, ok := parseSince(q.Get("since"))
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"since must be RFC 3339 or unix milliseconds")
		return
	}

	messages, err := s.messages.History(r.Context(), q.Get("user"), q.Get("peer"), since)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[domain.Message]{Items: messages, Total: len(messages)})
}

// --- Health / metrics ---

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthCheck handles GET /health. A degraded embedding model still
// serves traffic, so only a dead store reports unavailable.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// metricsHandler handles GET /metrics.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func offerToResponse(o domain.Offer) offerResponse {
	return offerResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		UserName:  o.UserName,
		Product:   o.Product,
		Category:  o.Category,
		Distance:  o.Distance,
		Details:   o.Details,
		CreatedAt: o.CreatedAt,
	}
}

func tradeToResponse(t domain.Trade) tradeResponse {
	return tradeResponse{
		ID:           t.ID,
		Participants: t.Participants,
		Items:        t.Items,
		CompletedAt:  t.CompletedAt,
	}
}

// coerceDistance tolerates the loose typing of marketplace clients:
// numbers arrive as JSON numbers or strings, anything unreadable is 0.
func coerceDistance(v any) int {
	switch d := v.(type) {
	case float64:
		return int(d)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseSince accepts RFC 3339 or unix milliseconds; empty means "from
// the beginning". The second return reports whether the value parsed.
func parseSince(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrOfferNotFound,
		domain.ErrCounterpartyHasNoOffer,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
