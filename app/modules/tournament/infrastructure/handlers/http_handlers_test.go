package tournamenthandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/cutline/pkg/jwt"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestAPI(svc *FakeTournamentService, tokens jwt.Service) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(jwt.AccountMiddleware(tokens, "local"))
		NewHTTPHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes(r)
	})
	return r
}

func ownedBy(account string) func(ctx context.Context, id string) (viewResult, error) {
	return func(ctx context.Context, id string) (viewResult, error) {
		return results.SuccessResult[tournamentservice.SessionView, error](tournamentservice.SessionView{
			ID:        id,
			AccountID: account,
			Phase:     "round_active",
		}), nil
	}
}

func TestHTTPHandlers(t *testing.T) {
	score := 17

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setup      func(s *FakeTournamentService)
		wantStatus int
		wantTrace  []string
		verify     func(t *testing.T, s *FakeTournamentService, rr *httptest.ResponseRecorder)
	}{
		{
			name:   "list contests uses caller account",
			method: http.MethodGet,
			path:   "/api/contests",
			setup: func(s *FakeTournamentService) {
				s.ListContestsFunc = func(ctx context.Context, accountID string) (results.OperationResult[tournamentservice.ContestList, error], error) {
					assert.Equal(t, "local", accountID)
					return results.SuccessResult[tournamentservice.ContestList, error](tournamentservice.ContestList{Balance: 1000}), nil
				}
			},
			wantStatus: http.StatusOK,
			wantTrace:  []string{"ListContests"},
			verify: func(t *testing.T, _ *FakeTournamentService, rr *httptest.ResponseRecorder) {
				var got tournamentservice.ContestList
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 1000.0, got.Balance)
			},
		},
		{
			name:   "join contest",
			method: http.MethodPost,
			path:   "/api/tournaments",
			body:   `{"variant":"basketball","buy_in":10}`,
			setup: func(s *FakeTournamentService) {
				s.JoinContestFunc = func(ctx context.Context, req tournamentservice.JoinContestRequest) (viewResult, error) {
					assert.Equal(t, tournamentservice.JoinContestRequest{AccountID: "local", Variant: "basketball", BuyIn: 10}, req)
					return results.SuccessResult[tournamentservice.SessionView, error](tournamentservice.SessionView{ID: "s1"}), nil
				}
			},
			wantStatus: http.StatusCreated,
			wantTrace:  []string{"JoinContest"},
		},
		{
			name:       "join contest with bad body",
			method:     http.MethodPost,
			path:       "/api/tournaments",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantTrace:  []string{},
		},
		{
			name:   "join contest with unknown variant",
			method: http.MethodPost,
			path:   "/api/tournaments",
			body:   `{"variant":"curling","buy_in":10}`,
			setup: func(s *FakeTournamentService) {
				s.JoinContestFunc = func(ctx context.Context, req tournamentservice.JoinContestRequest) (viewResult, error) {
					return results.FailureResult[tournamentservice.SessionView, error](tournamentservice.ErrUnknownVariant), nil
				}
			},
			wantStatus: http.StatusBadRequest,
			wantTrace:  []string{"JoinContest"},
		},
		{
			name:   "session of another account is forbidden",
			method: http.MethodGet,
			path:   "/api/tournaments/s1",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("someone-else")
			},
			wantStatus: http.StatusForbidden,
			wantTrace:  []string{"GetSession"},
		},
		{
			name:   "missing session",
			method: http.MethodPost,
			path:   "/api/tournaments/s1/ready",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = func(ctx context.Context, id string) (viewResult, error) {
					return results.FailureResult[tournamentservice.SessionView, error](tournamentservice.ErrSessionNotFound), nil
				}
			},
			wantStatus: http.StatusNotFound,
			wantTrace:  []string{"GetSession"},
		},
		{
			name:   "ready begins the current round",
			method: http.MethodPost,
			path:   "/api/tournaments/s1/ready",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.BeginRoundFunc = func(ctx context.Context, id string, round int) (viewResult, error) {
					assert.Equal(t, "s1", id)
					assert.Zero(t, round)
					return ownedBy("local")(ctx, id)
				}
			},
			wantStatus: http.StatusOK,
			wantTrace:  []string{"GetSession", "BeginRound"},
		},
		{
			name:   "score in wrong phase conflicts",
			method: http.MethodPost,
			path:   "/api/tournaments/s1/score",
			body:   `{"round":2,"score":17}`,
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.ReportScoreFunc = func(ctx context.Context, id string, round int, got *int) (viewResult, error) {
					assert.Equal(t, 2, round)
					require.NotNil(t, got)
					assert.Equal(t, score, *got)
					return results.FailureResult[tournamentservice.SessionView, error](tournamentservice.ErrInvalidPhase), nil
				}
			},
			wantStatus: http.StatusConflict,
			wantTrace:  []string{"GetSession", "ReportScore"},
		},
		{
			name:   "out of range score is a bad request",
			method: http.MethodPost,
			path:   "/api/tournaments/s1/score",
			body:   `{"round":1,"score":-4}`,
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.ReportScoreFunc = func(context.Context, string, int, *int) (viewResult, error) {
					return results.FailureResult[tournamentservice.SessionView, error](
						fmt.Errorf("round 1 scoring: %w", tournamentdomain.ErrInvalidScore)), nil
				}
			},
			wantStatus: http.StatusBadRequest,
			wantTrace:  []string{"GetSession", "ReportScore"},
		},
		{
			name:   "advance infrastructure error",
			method: http.MethodPost,
			path:   "/api/tournaments/s1/advance",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.AdvanceRoundFunc = func(ctx context.Context, id string, round int) (viewResult, error) {
					return viewResult{}, assert.AnError
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantTrace:  []string{"GetSession", "AdvanceRound"},
		},
		{
			name:   "exit to lobby",
			method: http.MethodDelete,
			path:   "/api/tournaments/s1",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.ExitToLobbyFunc = ownedBy("local")
			},
			wantStatus: http.StatusOK,
			wantTrace:  []string{"GetSession", "ExitToLobby"},
		},
		{
			name:   "chart is served as png",
			method: http.MethodGet,
			path:   "/api/tournaments/s1/chart.png",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.RenderProgressChartFunc = func(ctx context.Context, id string) ([]byte, error) {
					return []byte("\x89PNG"), nil
				}
			},
			wantStatus: http.StatusOK,
			wantTrace:  []string{"GetSession", "RenderProgressChart"},
			verify: func(t *testing.T, _ *FakeTournamentService, rr *httptest.ResponseRecorder) {
				assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
				assert.Equal(t, "\x89PNG", rr.Body.String())
			},
		},
		{
			name:   "standings workbook",
			method: http.MethodGet,
			path:   "/api/tournaments/s1/standings.xlsx",
			setup: func(s *FakeTournamentService) {
				s.GetSessionFunc = ownedBy("local")
				s.ExportStandingsFunc = func(ctx context.Context, id string) ([]byte, error) {
					return []byte("PK"), nil
				}
			},
			wantStatus: http.StatusOK,
			wantTrace:  []string{"GetSession", "ExportStandings"},
			verify: func(t *testing.T, _ *FakeTournamentService, rr *httptest.ResponseRecorder) {
				assert.Contains(t, rr.Header().Get("Content-Disposition"), "standings.xlsx")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeTournamentService()
			if tt.setup != nil {
				tt.setup(svc)
			}

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rr := httptest.NewRecorder()

			newTestAPI(svc, nil).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantTrace, svc.trace)
			if tt.verify != nil {
				tt.verify(t, svc, rr)
			}
		})
	}
}

func TestAccountMiddleware_BearerToken(t *testing.T) {
	tokens := jwt.NewService("test-secret", time.Hour, "cutline")
	token, err := tokens.GenerateToken("acct-7", "Seven", jwt.RolePlayer, 0)
	require.NoError(t, err)

	svc := NewFakeTournamentService()
	svc.ListContestsFunc = func(ctx context.Context, accountID string) (results.OperationResult[tournamentservice.ContestList, error], error) {
		assert.Equal(t, "acct-7", accountID)
		return results.SuccessResult[tournamentservice.ContestList, error](tournamentservice.ContestList{}), nil
	}
	api := newTestAPI(svc, tokens)

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		api.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/contests", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contests", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		api.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contests", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		api.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"ListContests"}, svc.trace)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	call := func(h http.Handler, remote, account string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if account != "" {
			req = req.WithContext(jwt.WithAccount(req.Context(), account))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("budget per address", func(t *testing.T) {
		h := RateLimitMiddleware(NewClientLimiter(0, 2), "local")(ok)

		codes := make([]int, 0, 4)
		for range 3 {
			codes = append(codes, call(h, "10.0.0.1:5555", "local").Code)
		}
		codes = append(codes, call(h, "10.0.0.2:5555", "local").Code)

		assert.Equal(t, []int{
			http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent,
		}, codes)
	})

	t.Run("signed-in players are throttled per account", func(t *testing.T) {
		h := RateLimitMiddleware(NewClientLimiter(0, 1), "local")(ok)

		assert.Equal(t, http.StatusNoContent, call(h, "10.0.0.1:1", "alice").Code)
		assert.Equal(t, http.StatusTooManyRequests, call(h, "10.0.0.2:1", "alice").Code, "same account from a new address")
		assert.Equal(t, http.StatusNoContent, call(h, "10.0.0.1:1", "bob").Code, "other account behind the same address")
	})

	t.Run("retry hint", func(t *testing.T) {
		h := RateLimitMiddleware(NewClientLimiter(rate.Every(time.Minute), 1), "local")(ok)

		require.Equal(t, http.StatusNoContent, call(h, "10.0.0.9:1", "").Code)
		rr := call(h, "10.0.0.9:1", "")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	})
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"https://play.example/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{name: "preflight from allowed origin", method: http.MethodOptions, origin: "https://play.example", preflight: true, wantStatus: http.StatusNoContent, wantAllowed: "https://play.example"},
		{name: "preflight from unknown origin", method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: http.StatusForbidden},
		{name: "simple request from allowed origin", method: http.MethodGet, origin: "https://play.example", wantStatus: http.StatusTeapot, wantAllowed: "https://play.example"},
		{name: "simple request from unknown origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusTeapot},
		{name: "same-origin request", method: http.MethodGet, wantStatus: http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/contests", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllowed != "" && tt.preflight {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
			}
		})
	}
}
