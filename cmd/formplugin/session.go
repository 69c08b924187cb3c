package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/storage"
)

// defaultReferrer is used when neither the config nor --referrer names one,
// so frames still have a target.
const defaultReferrer = "https://localhost"

// linePoster writes each outbound frame to its writer on its own line.
type linePoster struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *linePoster) PostMessage(_ context.Context, data []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "%s\n", data)
	return err
}

// redirect sends later frames to w.
func (p *linePoster) redirect(w io.Writer) {
	p.mu.Lock()
	p.w = w
	p.mu.Unlock()
}

// readRequest reads a host request from path, or from stdin when path is "-".
func readRequest(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read request from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return data, nil
}

// openSession initialises a plugin and delivers request to it as if the host
// had posted it.
func (a *app) openSession(ctx context.Context, request []byte, referrer string, poster gateway.Poster) (*plugin.Plugin, error) {
	rules := dictionary.Default()
	if a.cfg.Plugin.RulesFile != "" {
		loaded, err := dictionary.LoadFile(a.cfg.Plugin.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	if referrer == "" {
		referrer = a.cfg.Plugin.Referrer
	}
	if referrer == "" {
		referrer = defaultReferrer
	}

	logger := a.logger.Named("plugin")
	p := plugin.New(poster,
		plugin.WithRules(rules),
		plugin.WithStore(storage.NewMemory()),
		plugin.WithLogger(logger),
		plugin.WithBackScreens(a.cfg.Plugin.BackScreens...),
		plugin.WithGatewayOptions(
			gateway.WithReferrer(referrer),
			gateway.WithHost(a.cfg.Plugin.Host),
			gateway.WithDebug(a.cfg.Logging.Debug),
		),
	)
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	if outcome := p.Receive(ctx, gateway.Event{Data: request, Origin: referrer}); outcome != gateway.OutcomeDispatched {
		return nil, fmt.Errorf("request not dispatched: %s", outcome)
	}
	if !p.View().Rendered() {
		return nil, fmt.Errorf("request did not open a form: %v", p.Alerts())
	}
	return p, nil
}
