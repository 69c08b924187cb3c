// Package gateway implements the two-message protocol spoken with the
// embedding host: inbound open/error requests are decoded and dispatched,
// outbound messages are serialized and posted to the trusted referrer origin
// only.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formplugin/pkg/record"
)

// Protocol method names.
const (
	MethodOpen  = "open"
	MethodError = "error"
	MethodReady = "ready"
	MethodClose = "close"
)

const logPrefix = "[Plugin API] "

// ErrNoReferrer is returned by Send when no trusted referrer is configured.
var ErrNoReferrer = errors.New("gateway: no referrer configured")

// Event is a single inbound message.
type Event struct {
	Data   []byte
	Origin string
}

// Outcome describes what Receive did with an event.
type Outcome int

const (
	OutcomeDispatched Outcome = iota
	OutcomeNoData
	OutcomeNotJSON
	OutcomeNoMethod
	OutcomeUnknownMethod
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeNoData:
		return "no data"
	case OutcomeNotJSON:
		return "not json"
	case OutcomeNoMethod:
		return "no method"
	case OutcomeUnknownMethod:
		return "unknown method"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Handler reacts to dispatched inbound messages.
type Handler interface {
	Open(ctx context.Context, request *record.Record) error
	ShowError(ctx context.Context, errs any) error
	UnknownMethod(ctx context.Context, method string) error
}

// Poster delivers an outbound frame to the host, restricted to targetOrigin.
type Poster interface {
	PostMessage(ctx context.Context, data []byte, targetOrigin string) error
}

// Gateway dispatches inbound events and posts outbound messages.
type Gateway struct {
	poster   Poster
	handler  Handler
	referrer string
	host     string
	debug    bool
	logger   *zap.Logger
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithReferrer sets the trusted referrer URL outbound messages are sent to.
func WithReferrer(referrer string) Option {
	return func(g *Gateway) {
		g.referrer = strings.TrimSpace(referrer)
	}
}

// WithHost names the plugin host in log titles.
func WithHost(host string) Option {
	return func(g *Gateway) {
		g.host = host
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDebug enables traffic logging.
func WithDebug(enabled bool) Option {
	return func(g *Gateway) {
		g.debug = enabled
	}
}

// New constructs a gateway posting through poster and dispatching to handler.
func New(poster Poster, handler Handler, opts ...Option) *Gateway {
	g := &Gateway{
		poster:  poster,
		handler: handler,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Referrer returns the trusted referrer URL.
func (g *Gateway) Referrer() string {
	return g.referrer
}

// Receive decodes ev and dispatches it by method. Malformed events are logged
// and dropped; handler failures are logged. Receive never panics on input.
func (g *Gateway) Receive(ctx context.Context, ev Event) Outcome {
	domain := Domain(ev.Origin)

	if len(ev.Data) == 0 {
		g.warn(g.host+" <- NO DATA "+domain, OutcomeNoData)
		return OutcomeNoData
	}

	value, err := record.DecodeValue(ev.Data)
	if err != nil {
		g.warn(g.host+" <- NOT JSON "+domain, OutcomeNotJSON)
		return OutcomeNotJSON
	}

	msg, _ := value.(*record.Record)
	method, ok := methodOf(msg)
	if !ok {
		g.warn(g.host+" <- NO METHOD "+domain, OutcomeNoMethod)
		return OutcomeNoMethod
	}

	g.trace(g.host+" <- "+method+" "+domain, msg)

	outcome := OutcomeDispatched
	switch method {
	case MethodOpen:
		err = g.handler.Open(ctx, msg)
	case MethodError:
		errs, present := msg.Get("errors")
		if !present || !truthy(errs) {
			fallback := record.New()
			fallback.Set("error", "Unknown error")
			errs = fallback
		}
		err = g.handler.ShowError(ctx, errs)
	default:
		outcome = OutcomeUnknownMethod
		err = g.handler.UnknownMethod(ctx, method)
	}
	if err != nil {
		g.logger.Warn("gateway: handler failed",
			zap.String("method", method),
			zap.String("origin", ev.Origin),
			zap.Error(err),
		)
	}
	return outcome
}

// Send serializes payload and posts it to the referrer origin. Nothing is
// sent without a referrer.
func (g *Gateway) Send(ctx context.Context, payload any) error {
	if g.referrer == "" {
		return ErrNoReferrer
	}
	data, err := record.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: encode payload: %w", err)
	}

	method := ""
	if msg, ok := payload.(*record.Record); ok {
		method = msg.String("method")
	}
	g.trace(g.host+" -> "+method+" "+Domain(g.referrer), payload)

	if err := g.poster.PostMessage(ctx, data, Origin(g.referrer)); err != nil {
		return fmt.Errorf("gateway: post %s: %w", method, err)
	}
	return nil
}

// Ready sends the startup handshake.
func (g *Gateway) Ready(ctx context.Context) error {
	msg := record.New()
	msg.Set("apiVersion", 1)
	msg.Set("method", MethodReady)
	return g.Send(ctx, msg)
}

func (g *Gateway) trace(title string, payload any) {
	if !g.debug {
		return
	}
	fields := []zap.Field{}
	if payload != nil {
		if pretty, err := record.Indent(payload); err == nil {
			fields = append(fields, zap.String("payload", string(pretty)))
		}
	}
	g.logger.Debug(logPrefix+title, fields...)
}

func (g *Gateway) warn(title string, outcome Outcome) {
	g.logger.Warn(logPrefix+title, zap.Stringer("outcome", outcome))
}

// methodOf extracts a truthy method value. Non-string truthy values are kept
// in their text form so they surface as unknown methods.
func methodOf(msg *record.Record) (string, bool) {
	if msg == nil {
		return "", false
	}
	value, ok := msg.Get("method")
	if !ok || !truthy(value) {
		return "", false
	}
	switch typed := value.(type) {
	case string:
		return typed, true
	case *record.Record, []any:
		return "[object]", true
	default:
		return record.Scalar(typed), true
	}
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case json.Number:
		f, err := typed.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// Domain returns the host part of url: the segment after the scheme, or the
// first path segment when url has no scheme.
func Domain(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	if strings.Contains(url, "://") {
		if len(parts) > 2 {
			return parts[2]
		}
		return ""
	}
	return parts[0]
}

// Origin returns the secure origin of url. The scheme is always https.
func Origin(url string) string {
	if url == "" {
		return ""
	}
	return "https://" + Domain(url)
}
