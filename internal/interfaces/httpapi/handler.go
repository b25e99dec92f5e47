package httpapi

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/usecase"
)

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	IssueAccessToken(subject string) (string, time.Time, error)
}

// Credentials is the single configured API user.
type Credentials struct {
	Username string
	Password string
}

type Handler struct {
	matches     *usecase.MatchService
	issuer      TokenIssuer
	credentials Credentials
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewHandler(matches *usecase.MatchService, issuer TokenIssuer, credentials Credentials, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		matches:     matches,
		issuer:      issuer,
		credentials: credentials,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   string `json:"expiresAt"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: malformed request body", usecase.ErrInvalidInput))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: username and password are required", usecase.ErrInvalidInput))
		return
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.credentials.Username)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.credentials.Password)) == 1
	if !usernameOK || !passwordOK {
		writeError(ctx, w, fmt.Errorf("%w: bad credentials", usecase.ErrUnauthorized))
		return
	}

	token, expiresAt, err := h.issuer.IssueAccessToken(req.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "issue access token", "error", err)
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}

type matchDTO struct {
	ID      int64  `json:"id"`
	Sport   string `json:"sport"`
	League  string `json:"league"`
	Home    string `json:"home"`
	Away    string `json:"away"`
	Start   string `json:"start"`
	Details string `json:"details,omitempty"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Weekday string `json:"weekday"`
	Card    string `json:"card"`
}

type listMatchesResponse struct {
	Matches []matchDTO `json:"matches"`
	Count   int        `json:"count"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	matches, err := h.matches.ListStored(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list stored matches", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, listMatchesResponse{
		Matches: toMatchDTOs(matches),
		Count:   len(matches),
	})
}

type importMatchesResponse struct {
	Stored   int                       `json:"stored"`
	Matches  []matchDTO                `json:"matches"`
	Failures []usecase.ProviderFailure `json:"failures,omitempty"`
}

func (h *Handler) ImportMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportMatches")
	defer span.End()

	if principal, ok := principalFromContext(ctx); ok {
		h.logger.InfoContext(ctx, "import requested", "subject", principal.Subject)
	}

	result, err := h.matches.ImportRecent(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "import matches", "error", err)
		writeError(ctx, w, err)
		return
	}

	for _, failure := range result.Aggregation.Failures {
		h.logger.WarnContext(ctx, "provider failed during import",
			"sport", failure.Sport,
			"error", failure.Message,
			"duration_ms", failure.DurationMs,
		)
	}

	writeSuccess(ctx, w, http.StatusOK, importMatchesResponse{
		Stored:   result.Stored,
		Matches:  toMatchDTOs(result.Matches),
		Failures: result.Aggregation.Failures,
	})
}

func toMatchDTOs(matches []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchDTO{
			ID:      m.ID,
			Sport:   m.Sport,
			League:  m.League,
			Home:    m.Home,
			Away:    m.Away,
			Start:   m.Start.Format(time.RFC3339),
			Details: m.Details,
			Date:    m.Date.Format("2006-01-02"),
			Time:    m.TimeOfDay,
			Weekday: m.Weekday,
			Card:    m.Card(true),
		})
	}
	return out
}
