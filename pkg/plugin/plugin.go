// Package plugin drives one plugin session: it answers the host handshake,
// renders open requests into an editable form, applies user edits and sends
// the close message on submit.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/form"
	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/record"
	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/sanitize"
	"github.com/goliatone/go-formplugin/pkg/signature"
	"github.com/goliatone/go-formplugin/pkg/storage"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// User-facing alert texts.
const (
	AlertUnknownMethod = "Unknown method"
	AlertJSONParse     = "JSON parse error!"
)

// DefaultBackScreens lists the screens the host can return to.
var DefaultBackScreens = []string{"default", form.ScreenActivityByID, "next_activity", "activity_list"}

var (
	ErrAlreadyInitialized = errors.New("plugin: already initialized")
	ErrNotInitialized     = errors.New("plugin: not initialized")
	ErrNotRendered        = errors.New("plugin: no form rendered")
	ErrClosed             = errors.New("plugin: session closed")
	ErrItemNotFound       = errors.New("plugin: item not found")
	ErrInvalidResponse    = errors.New("plugin: response is not valid JSON")
	ErrResponseHidden     = errors.New("plugin: response editor is hidden")
	ErrUnknownBackScreen  = errors.New("plugin: unknown back screen")
	ErrBackActivityHidden = errors.New("plugin: back activity id is hidden")
	ErrNotDelivered       = errors.New("plugin: message not delivered")
)

// State is the lifecycle position of a session.
type State int

const (
	StateUninitialized State = iota
	StateAwaitingOpen
	StateRendered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingOpen:
		return "awaiting-open"
	case StateRendered:
		return "rendered"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Alerter shows a message to the user. Implementations must not call back
// into the plugin.
type Alerter interface {
	Alert(message string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(message string)

// Alert implements Alerter.
func (f AlerterFunc) Alert(message string) { f(message) }

// Plugin is a single session. It is safe for concurrent use.
type Plugin struct {
	mu sync.Mutex

	id          string
	gateway     *gateway.Gateway
	builder     *form.Builder
	parser      *form.Parser
	store       storage.Store
	alerter     Alerter
	logger      *zap.Logger
	now         func() time.Time
	sign        func() (string, error)
	backScreens []string

	state           State
	root            *widget.Item
	request         string
	response        string
	localStorage    string
	requestVisible  bool
	responseVisible bool
	back            form.BackNavigation
	backIDVisible   bool
	alerts          []string
}

type config struct {
	id          string
	rules       *dictionary.Rules
	store       storage.Store
	alerter     Alerter
	logger      *zap.Logger
	now         func() time.Time
	sign        func() (string, error)
	backScreens []string
	gatewayOpts []gateway.Option
	builderOpts []form.BuilderOption
}

// Option configures a Plugin.
type Option func(*config)

// WithID names the session in views.
func WithID(id string) Option {
	return func(c *config) { c.id = id }
}

// WithRules replaces the built-in rules.
func WithRules(rules dictionary.Rules) Option {
	return func(c *config) { c.rules = &rules }
}

// WithStore sets the local storage backend.
func WithStore(store storage.Store) Option {
	return func(c *config) {
		if store != nil {
			c.store = store
		}
	}
}

// WithAlerter forwards user alerts to a.
func WithAlerter(a Alerter) Option {
	return func(c *config) { c.alerter = a }
}

// WithLogger sets the logger used by the plugin and its gateway.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for the init timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSignatureSource overrides the image used when a signature is generated
// without client-supplied data.
func WithSignatureSource(fn func() (string, error)) Option {
	return func(c *config) {
		if fn != nil {
			c.sign = fn
		}
	}
}

// WithBackScreens sets the selectable back screens. The first one is the
// initial selection.
func WithBackScreens(screens ...string) Option {
	return func(c *config) {
		if len(screens) > 0 {
			c.backScreens = slices.Clone(screens)
		}
	}
}

// WithGatewayOptions passes options to the message gateway.
func WithGatewayOptions(opts ...gateway.Option) Option {
	return func(c *config) { c.gatewayOpts = append(c.gatewayOpts, opts...) }
}

// WithBuilderOptions passes options to the form builder.
func WithBuilderOptions(opts ...form.BuilderOption) Option {
	return func(c *config) { c.builderOpts = append(c.builderOpts, opts...) }
}

// New creates a session posting outbound messages through poster.
func New(poster gateway.Poster, opts ...Option) *Plugin {
	cfg := config{
		logger:      zap.NewNop(),
		now:         time.Now,
		sign:        signature.Generate,
		backScreens: slices.Clone(DefaultBackScreens),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	rules := dictionary.Default()
	if cfg.rules != nil {
		rules = *cfg.rules
	}
	if cfg.store == nil {
		cfg.store = storage.NewMemory()
	}

	p := &Plugin{
		id:          cfg.id,
		builder:     form.NewBuilder(rules, cfg.builderOpts...),
		parser:      form.NewParser(rules),
		store:       cfg.store,
		alerter:     cfg.alerter,
		logger:      cfg.logger,
		now:         cfg.now,
		sign:        cfg.sign,
		backScreens: cfg.backScreens,
		back:        form.BackNavigation{Screen: cfg.backScreens[0]},
	}
	p.backIDVisible = p.back.Screen == form.ScreenActivityByID

	gatewayOpts := append([]gateway.Option{gateway.WithLogger(cfg.logger)}, cfg.gatewayOpts...)
	p.gateway = gateway.New(poster, p, gatewayOpts...)
	return p
}

// ID returns the session id.
func (p *Plugin) ID() string {
	return p.id
}

// State returns the lifecycle state.
func (p *Plugin) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Init stores the start timestamp and announces readiness to the host. A
// ready message the host cannot take is logged and dropped.
func (p *Plugin) Init(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateUninitialized {
		p.mu.Unlock()
		return ErrAlreadyInitialized
	}
	raw, err := storage.WriteInitData(ctx, p.store, p.now())
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("plugin: init: %w", err)
	}
	p.logger.Debug("[Plugin API] INIT. SET DATA TO LOCAL STORAGE", zap.String("payload", raw))
	p.state = StateAwaitingOpen
	p.mu.Unlock()

	// The host may not be listening yet; the session still waits for open.
	if err := p.deliver(ctx, func(ctx context.Context) error { return p.gateway.Ready(ctx) }); err != nil {
		p.logger.Warn("plugin: ready not delivered", zap.Error(err))
	}
	return nil
}

// Receive hands an inbound event to the gateway.
func (p *Plugin) Receive(ctx context.Context, ev gateway.Event) gateway.Outcome {
	return p.gateway.Receive(ctx, ev)
}

// Open renders request as the session form. A later open replaces the form.
func (p *Plugin) Open(ctx context.Context, request *record.Record) error {
	if request == nil {
		request = record.New()
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateUninitialized {
		return ErrNotInitialized
	}

	initData, err := storage.ReadInitData(ctx, p.store)
	if err != nil {
		p.logger.Warn("plugin: read init data", zap.Error(err))
	}
	p.logger.Debug("[Plugin API] OPEN. GET DATA FROM LOCAL STORAGE", zap.String("payload", initData))
	p.localStorage = initData

	pretty, err := record.Indent(request)
	if err != nil {
		return fmt.Errorf("plugin: format request: %w", err)
	}
	p.request = string(pretty)
	p.root = p.builder.Build(request.Clone())
	p.state = StateRendered
	p.refreshLocked()
	return nil
}

// ShowError alerts the formatted error payload.
func (p *Plugin) ShowError(_ context.Context, errs any) error {
	pretty, err := record.Indent(errs)
	if err != nil {
		return fmt.Errorf("plugin: format errors: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alertLocked(string(pretty))
	return nil
}

// UnknownMethod alerts the user about an unsupported request.
func (p *Plugin) UnknownMethod(_ context.Context, method string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Debug("plugin: unknown method", zap.String("method", method))
	p.alertLocked(AlertUnknownMethod)
	return nil
}

// SetText replaces the text of the item at path. text is stored as given.
func (p *Plugin) SetText(path []string, text string) error {
	return p.edit(path, func(item *widget.Item) error {
		return item.SetText(text)
	})
}

// SetMarkup replaces the text of the item at path with the text content of
// markup, the inner HTML of an editable element.
func (p *Plugin) SetMarkup(path []string, markup string) error {
	return p.SetText(path, sanitize.Text(markup))
}

// Select picks a choice option for the item at path.
func (p *Plugin) Select(path []string, value string) error {
	return p.edit(path, func(item *widget.Item) error {
		return item.Select(value)
	})
}

// GenerateSignature captures a signature for the item at path. An empty
// dataURL draws the sample signature.
func (p *Plugin) GenerateSignature(path []string, dataURL string) error {
	if dataURL == "" {
		generated, err := p.sign()
		if err != nil {
			return fmt.Errorf("plugin: generate signature: %w", err)
		}
		dataURL = generated
	} else if _, err := signature.Parse(dataURL); err != nil {
		return err
	}
	return p.edit(path, func(item *widget.Item) error {
		return item.Capture(dataURL)
	})
}

func (p *Plugin) edit(path []string, fn func(*widget.Item) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireRenderedLocked(); err != nil {
		return err
	}
	item, ok := p.root.Lookup(path...)
	if !ok || len(path) == 0 {
		return fmt.Errorf("%w: %v", ErrItemNotFound, path)
	}
	if err := fn(item); err != nil {
		return err
	}
	p.refreshLocked()
	return nil
}

// SetBackScreen selects the screen the host returns to. Leaving the
// activity-by-id screen clears and hides the activity id.
func (p *Plugin) SetBackScreen(screen string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.backScreens, screen) {
		return fmt.Errorf("%w: %q", ErrUnknownBackScreen, screen)
	}
	p.back.Screen = screen
	p.backIDVisible = screen == form.ScreenActivityByID
	if !p.backIDVisible {
		p.back.ActivityID = ""
	}
	p.refreshLocked()
	return nil
}

// SetBackActivityID sets the activity the host returns to.
func (p *Plugin) SetBackActivityID(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.backIDVisible {
		return ErrBackActivityHidden
	}
	p.back.ActivityID = id
	p.refreshLocked()
	return nil
}

// ToggleRequest shows or hides the request preview and hides the response.
func (p *Plugin) ToggleRequest() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responseVisible = false
	p.requestVisible = !p.requestVisible
}

// ToggleResponse shows or hides the response editor, refreshing it from the
// form and hiding the request.
func (p *Plugin) ToggleResponse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestVisible = false
	p.refreshLocked()
	p.responseVisible = !p.responseVisible
}

// EditResponse replaces the raw response text. The editor must be visible.
func (p *Plugin) EditResponse(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.responseVisible {
		return ErrResponseHidden
	}
	p.response = text
	return nil
}

// Response returns the current response text.
func (p *Plugin) Response() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.response
}

// Alerts returns the alerts raised so far.
func (p *Plugin) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.alerts)
}

// View snapshots the session for rendering.
func (p *Plugin) View() render.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return render.View{
		SessionID:           p.id,
		State:               p.state.String(),
		Root:                p.root.Clone(),
		Request:             p.request,
		RequestVisible:      p.requestVisible,
		Response:            p.response,
		ResponseVisible:     p.responseVisible,
		LocalStorage:        p.localStorage,
		Back:                p.back,
		BackScreens:         slices.Clone(p.backScreens),
		BackActivityVisible: p.backIDVisible,
		Alerts:              slices.Clone(p.alerts),
	}
}

// Submit sends the close message. With the response editor hidden the form
// is parsed; otherwise the editor text is sent as long as it is valid JSON.
// The session closes only once the message is posted, so a failed post can
// be submitted again.
func (p *Plugin) Submit(ctx context.Context) error {
	p.mu.Lock()
	if err := p.requireRenderedLocked(); err != nil {
		p.mu.Unlock()
		return err
	}

	var payload any
	if !p.responseVisible {
		payload = p.parser.Parse(p.root, p.back)
	} else {
		value, err := record.DecodeValue([]byte(p.response))
		if err != nil {
			p.alertLocked(AlertJSONParse)
			p.mu.Unlock()
			return ErrInvalidResponse
		}
		payload = value
	}
	root := p.root
	p.mu.Unlock()

	if err := p.deliver(ctx, func(ctx context.Context) error { return p.gateway.Send(ctx, payload) }); err != nil {
		return fmt.Errorf("%w: %w", ErrNotDelivered, err)
	}

	p.mu.Lock()
	// A newer open replaced the form while the close was in flight.
	if p.root == root {
		p.state = StateClosed
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) deliver(ctx context.Context, send func(context.Context) error) error {
	err := send(ctx)
	if errors.Is(err, gateway.ErrNoReferrer) {
		p.logger.Debug("plugin: no referrer, message dropped")
		return nil
	}
	return err
}

func (p *Plugin) requireRenderedLocked() error {
	switch p.state {
	case StateRendered:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotRendered
	}
}

func (p *Plugin) refreshLocked() {
	if p.root == nil {
		return
	}
	pretty, err := record.Indent(p.parser.Parse(p.root, p.back))
	if err != nil {
		p.logger.Warn("plugin: format response", zap.Error(err))
		return
	}
	p.response = string(pretty)
}

func (p *Plugin) alertLocked(message string) {
	p.alerts = append(p.alerts, message)
	if p.alerter != nil {
		p.alerter.Alert(message)
	}
}
