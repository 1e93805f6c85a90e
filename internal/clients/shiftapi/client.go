package shiftapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/platform/ctxutil"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

const (
	maxErrorBodyBytes = 1024
	sessionCookie     = "sessionid"
	csrfCookie        = "csrftoken"
	csrfHeader        = "X-CSRFToken"
)

// Client is the session server API used by a console. Every call is bound to
// the server-side session selected with WithSession.
type Client interface {
	WithSession(key string) Client
	SessionKey() string

	GetSession(ctx context.Context) (json.RawMessage, error)
	PatchSession(ctx context.Context, patch any) (json.RawMessage, error)

	ListLostTimeReasons(ctx context.Context) ([]domain.LostTimeReason, error)
	ListLostTimeEntries(ctx context.Context, shiftID string) ([]domain.LostTimeEntry, error)
	CreateLostTimeEntry(ctx context.Context, in LostTimeEntryCreate) (domain.LostTimeEntry, error)
	DeleteLostTimeEntry(ctx context.Context, id string) error

	DefaultChecklistTemplate(ctx context.Context) (domain.ChecklistTemplate, error)
	ListChecklistResponses(ctx context.Context, shiftID string) ([]domain.ChecklistResponse, error)
	SubmitChecklist(ctx context.Context, in domain.ChecklistResponse) (domain.ChecklistResponse, error)

	ListDefectTypes(ctx context.Context) ([]domain.DefectType, error)
	ListOperators(ctx context.Context) ([]domain.Operator, error)

	ListProfiles(ctx context.Context) ([]domain.ProfileSummary, error)
	GetProfile(ctx context.Context, id int) (*domain.Profile, error)
	ActivateProfile(ctx context.Context, id int) error
	ListModes(ctx context.Context) ([]domain.Mode, error)
	ToggleMode(ctx context.Context, id int) (domain.Mode, error)

	CreateRoll(ctx context.Context, in domain.RollCreate) (domain.RollRecord, error)
	RollIDExists(ctx context.Context, rollID string) (bool, error)
	NextRollNumber(ctx context.Context, order string) (int, error)
	ListShifts(ctx context.Context) ([]domain.ShiftSummary, error)

	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	PendingChecklists(ctx context.Context) ([]domain.PendingChecklist, error)
	SignChecklist(ctx context.Context, id int, visa string) error
	RecentShiftReports(ctx context.Context, days, limit int) ([]domain.ShiftReport, error)
}

// CallObserver receives the outcome of every request. status is 0 when the
// server was not reached.
type CallObserver interface {
	ObserveCall(op string, status int, elapsed time.Duration)
}

// LostTimeEntryCreate is the body of POST /api/lost-time-entries/.
type LostTimeEntryCreate struct {
	ShiftID  string `json:"shift_id,omitempty"`
	ReasonID int    `json:"reason"`
	Comment  string `json:"comment"`
	Duration int    `json:"duration"`
}

type client struct {
	log        *logger.Logger
	cfg        Config
	baseURL    string
	sessionKey string
	http       *http.Client
	tracer     trace.Tracer
	observer   CallObserver
}

func New(log *logger.Logger, cfg Config, observer CallObserver) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &client{
		log:     log.With("service", "ShiftAPIClient"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		tracer:   otel.Tracer("shiftconsole/shiftapi"),
		observer: observer,
	}
	log.Info(
		"Shift API client configured",
		"url", c.baseURL,
		"timeout", timeout.String(),
		"csrf", cfg.CSRFToken != "",
	)
	return c, nil
}

func (c *client) WithSession(key string) Client {
	cp := *c
	cp.sessionKey = strings.TrimSpace(key)
	return &cp
}

func (c *client) SessionKey() string { return c.sessionKey }

func (c *client) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	ctx, span := c.tracer.Start(ctxutil.Default(ctx), "shiftapi."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	started := time.Now()
	status, err := c.roundTrip(ctx, op, method, path, in, out)
	if c.observer != nil {
		c.observer.ObserveCall(op, status, time.Since(started))
	}
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		c.log.Warn("shift api call failed", "op", op, "path", path, "status", status, "error", err)
	}
	return err
}

func (c *client) roundTrip(ctx context.Context, op, method, path string, in any, out any) (int, error) {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return 0, opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutating(method) && c.cfg.CSRFToken != "" {
		req.Header.Set(csrfHeader, c.cfg.CSRFToken)
		req.AddCookie(&http.Cookie{Name: csrfCookie, Value: c.cfg.CSRFToken})
	}
	if c.sessionKey != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.sessionKey})
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, classifyHTTPCallError(op, "shift api request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*maxErrorBodyBytes))
	if readErr != nil {
		return resp.StatusCode, opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &OperationError{
			Code:       OperationErrorRequestFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("shift api http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, opErr(op, OperationErrorDecodeFailed, "decode response failed", err)
	}
	return resp.StatusCode, nil
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}

// listPage is the paginated list shape; unpaginated endpoints answer a bare array.
type listPage[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

func decodeList[T any](op string, raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, opErr(op, OperationErrorDecodeFailed, "decode list failed", err)
		}
		return out, nil
	}
	var page listPage[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, opErr(op, OperationErrorDecodeFailed, "decode page failed", err)
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}

func (c *client) getList(ctx context.Context, op, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, op, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeID reads an id the server may send as a number or a string.
func decodeID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n.String()
	}
	return ""
}
