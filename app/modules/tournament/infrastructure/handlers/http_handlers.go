package tournamenthandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/cutline/pkg/jwt"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"github.com/go-chi/chi/v5"
)

// HTTPHandlers serve the tournament API.
type HTTPHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
}

// NewHTTPHandlers creates the tournament HTTP handlers.
func NewHTTPHandlers(service tournamentservice.Service, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{service: service, logger: logger}
}

// Routes mounts the tournament endpoints on r.
func (h *HTTPHandlers) Routes(r chi.Router) {
	r.Get("/contests", h.HandleListContests)
	r.Post("/tournaments", h.HandleJoinContest)
	r.Route("/tournaments/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGetSession)
		r.Delete("/", h.HandleExit)
		r.Post("/ready", h.HandleReady)
		r.Post("/score", h.HandleScore)
		r.Post("/advance", h.HandleAdvance)
		r.Get("/chart.png", h.HandleChart)
		r.Get("/standings.xlsx", h.HandleStandings)
	})
}

type joinRequest struct {
	Variant string  `json:"variant"`
	BuyIn   float64 `json:"buy_in"`
}

type scoreRequest struct {
	Round int  `json:"round"`
	Score *int `json:"score"`
}

func (h *HTTPHandlers) HandleListContests(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListContests(r.Context(), jwt.AccountFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, res, err)
}

func (h *HTTPHandlers) HandleJoinContest(w http.ResponseWriter, r *http.Request) {
	var body joinRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.JoinContest(r.Context(), tournamentservice.JoinContestRequest{
		AccountID: jwt.AccountFromContext(r.Context()),
		Variant:   body.Variant,
		BuyIn:     body.BuyIn,
	})
	h.respond(w, r, http.StatusCreated, res, err)
}

func (h *HTTPHandlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.owned(r)
	h.respond(w, r, http.StatusOK, res, err)
}

// HandleReady skips the lobby countdown.
func (h *HTTPHandlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	h.onOwned(w, r, func(ctx context.Context, id string) (results.OperationResult[tournamentservice.SessionView, error], error) {
		return h.service.BeginRound(ctx, id, 0)
	})
}

func (h *HTTPHandlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	var body scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.onOwned(w, r, func(ctx context.Context, id string) (results.OperationResult[tournamentservice.SessionView, error], error) {
		return h.service.ReportScore(ctx, id, body.Round, body.Score)
	})
}

// HandleAdvance skips the post-round review.
func (h *HTTPHandlers) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	h.onOwned(w, r, func(ctx context.Context, id string) (results.OperationResult[tournamentservice.SessionView, error], error) {
		return h.service.AdvanceRound(ctx, id, 0)
	})
}

func (h *HTTPHandlers) HandleExit(w http.ResponseWriter, r *http.Request) {
	h.onOwned(w, r, func(ctx context.Context, id string) (results.OperationResult[tournamentservice.SessionView, error], error) {
		return h.service.ExitToLobby(ctx, id)
	})
}

func (h *HTTPHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "image/png", h.service.RenderProgressChart)
}

func (h *HTTPHandlers) HandleStandings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	h.serveFile(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.service.ExportStandings)
}

// owned loads the session named in the path and checks it belongs to the
// caller.
func (h *HTTPHandlers) owned(r *http.Request) (results.OperationResult[tournamentservice.SessionView, error], error) {
	res, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil || res.IsFailure() {
		return res, err
	}
	if res.Success == nil {
		return results.FailureResult[tournamentservice.SessionView, error](tournamentservice.ErrSessionNotFound), nil
	}
	if res.Success.AccountID != jwt.AccountFromContext(r.Context()) {
		return results.FailureResult[tournamentservice.SessionView, error](tournamentservice.ErrNotYourSession), nil
	}
	return res, nil
}

func (h *HTTPHandlers) onOwned(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string) (results.OperationResult[tournamentservice.SessionView, error], error),
) {
	res, err := h.owned(r)
	if err != nil || res.IsFailure() {
		h.respond(w, r, http.StatusOK, res, err)
		return
	}
	res, err = op(r.Context(), res.Success.ID)
	h.respond(w, r, http.StatusOK, res, err)
}

func (h *HTTPHandlers) serveFile(
	w http.ResponseWriter,
	r *http.Request,
	contentType string,
	render func(ctx context.Context, id string) ([]byte, error),
) {
	res, err := h.owned(r)
	if err != nil || res.IsFailure() {
		h.respond(w, r, http.StatusOK, res, err)
		return
	}
	data, err := render(r.Context(), res.Success.ID)
	if err != nil {
		if errors.Is(err, tournamentservice.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Render failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *HTTPHandlers) respond(w http.ResponseWriter, r *http.Request, okStatus int, res any, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var (
		success any
		failure error
	)
	switch v := res.(type) {
	case results.OperationResult[tournamentservice.SessionView, error]:
		success, failure = v.Success, failureOf(v)
	case results.OperationResult[tournamentservice.ContestList, error]:
		success, failure = v.Success, failureOf(v)
	}

	if failure != nil {
		writeJSON(w, statusFor(failure), map[string]string{"error": failure.Error()})
		return
	}
	writeJSON(w, okStatus, success)
}

// statusFor maps a domain failure onto an HTTP status.
func statusFor(failure error) int {
	switch {
	case errors.Is(failure, tournamentservice.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(failure, tournamentservice.ErrNotYourSession):
		return http.StatusForbidden
	case errors.Is(failure, tournamentservice.ErrUnknownVariant),
		errors.Is(failure, tournamentservice.ErrInvalidBuyIn),
		errors.Is(failure, tournamentdomain.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(failure, tournamentservice.ErrInvalidPhase),
		errors.Is(failure, tournamentservice.ErrStaleEvent),
		errors.Is(failure, tournamentdomain.ErrOutOfOrder),
		errors.Is(failure, tournamentdomain.ErrTournamentFinished):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
