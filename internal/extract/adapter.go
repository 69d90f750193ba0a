// Package extract turns a business card photo into contact fields by asking a
// vision model behind an OpenAI-compatible chat-completions gateway.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/metrics"
	"github.com/octobees/cardshare/internal/validation"
)

const (
	systemPrompt = "You are a business card OCR specialist. Extract all contact information from business cards and return it as structured JSON. " +
		"Always return valid JSON with these exact fields: name, title, company, email, phone, website, address. " +
		"If a field is not found, use an empty string. Do not add any explanatory text, only return the JSON object."
	userPrompt = "Extract all contact information from this business card image and return it as a JSON object with fields: name, title, company, email, phone, website, address"

	maxResponseBytes = 1 << 20
)

var tracer = otel.Tracer("github.com/octobees/cardshare/internal/extract")

// Scanner is what callers of the adapter depend on.
type Scanner interface {
	Scan(ctx context.Context, imageData string, observe StateObserver) Outcome
}

// Outcome is the adapter's answer at its boundary: either Data or Error is set.
type Outcome struct {
	Success bool                      `json:"success"`
	Data    *entity.ExtractedCardData `json:"data,omitempty"`
	Error   string                    `json:"error,omitempty"`
	Kind    Kind                      `json:"-"`
}

// Adapter performs one chat-completions call per scan. It holds no per-call
// state, so a single Adapter serves concurrent scans.
type Adapter struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithHTTPClient sets the client used for the gateway call. The client
// carries authentication for the google and idtoken modes.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		if c != nil {
			a.client = c
		}
	}
}

// WithAPIKey sends key as a bearer token on every call.
func WithAPIKey(key string) Option {
	return func(a *Adapter) { a.apiKey = key }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// New builds an adapter for the gateway at baseURL.
func New(baseURL, model string, opts ...Option) *Adapter {
	a := &Adapter{
		client:  http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scan wraps Extract into the boundary Outcome.
func (a *Adapter) Scan(ctx context.Context, imageData string, observe StateObserver) Outcome {
	data, err := a.Extract(ctx, imageData, observe)
	if err != nil {
		e := AsError(err)
		return Outcome{Success: false, Error: e.Message, Kind: e.Kind}
	}
	return Outcome{Success: true, Data: &data}
}

// Extract sends imageData (a data URL or an image URL) to the model and maps
// the answer. Errors are always *Error. There is no retry and no timeout of
// its own; bound it with ctx.
func (a *Adapter) Extract(ctx context.Context, imageData string, observe StateObserver) (data entity.ExtractedCardData, err error) {
	r := newRun(observe)
	start := time.Now()

	ctx, span := tracer.Start(ctx, "extract.Scan", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("vision.model", a.model)))
	defer func() {
		kind := "success"
		if err != nil {
			e := AsError(err)
			err = e
			kind = string(e.Kind)
			span.SetAttributes(attribute.String("scan.failure_kind", kind))
			span.SetStatus(codes.Error, e.Message)
			if e.Err != nil {
				span.RecordError(e.Err)
			}
			if e.Kind == KindCanceled {
				r.reset()
			} else {
				r.to(StateFailed)
			}
			a.logger.WarnContext(ctx, "card scan failed", "kind", kind, "status", e.Status, "error", e.Err)
		} else {
			r.to(StateSucceeded)
		}
		a.metrics.IncrementScanOutcome(kind)
		a.metrics.ObserveScanDuration(time.Since(start).Seconds())
		span.End()
	}()

	if strings.TrimSpace(imageData) == "" {
		return data, &Error{Kind: KindInvalidInput, Message: MsgNoImage}
	}
	if len(imageData) > validation.MaxImageDataLength {
		return data, &Error{Kind: KindInvalidInput, Message: MsgImageTooLarge}
	}
	if ctx.Err() != nil {
		return data, canceled(ctx.Err())
	}

	r.to(StateUploading)
	req, err := a.newRequest(ctx, imageData)
	if err != nil {
		return data, err
	}

	r.to(StateAwaitingModel)
	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return data, canceled(ctx.Err())
		}
		return data, &Error{Kind: KindUnknown, Message: MsgUnknown, Err: fmt.Errorf("gateway request failed: %w", err)}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		e := statusError(resp.StatusCode)
		e.Err = fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return data, e
	}

	r.to(StateParsing)
	content, err := readContent(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return data, canceled(ctx.Err())
		}
		return data, err
	}

	parsed := ParseModelOutput(ctx, content)
	// A cancel that lands after the body was read still wins.
	if ctx.Err() != nil {
		return data, canceled(ctx.Err())
	}
	if !parsed.OK() {
		return data, &Error{Kind: KindParse, Message: MsgParseFailed}
	}
	return MapExtracted(parsed.Object), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *Adapter) newRequest(ctx context.Context, imageData string) (*http.Request, error) {
	payload := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: userPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: imageData}},
			}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: MsgUnknown, Err: fmt.Errorf("marshal chat request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: MsgUnknown, Err: fmt.Errorf("create chat request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	return req, nil
}

func readContent(body io.Reader) (string, error) {
	var resp chatResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&resp); err != nil && !errors.Is(err, io.EOF) {
		return "", &Error{Kind: KindParse, Message: MsgNoContent, Err: fmt.Errorf("decode chat response: %w", err)}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &Error{Kind: KindParse, Message: MsgNoContent}
	}
	return resp.Choices[0].Message.Content, nil
}

func canceled(cause error) *Error {
	return &Error{Kind: KindCanceled, Message: MsgCanceled, Err: cause}
}

var _ Scanner = (*Adapter)(nil)
