package wspeer_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/transport/wspeer"
)

const hostOrigin = "https://host.example"

func dial(t *testing.T, ctx context.Context, srv *httptest.Server, origin string) (*websocket.Conn, error) {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, srv.URL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{origin}},
	})
	return conn, err
}

func TestPeer_PostMessageRespectsTargetOrigin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mismatch := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peer, err := wspeer.Accept(w, r, wspeer.Options{OriginPatterns: []string{"host.example"}})
		if err != nil {
			return
		}
		defer peer.CloseNow()

		mismatch <- peer.PostMessage(r.Context(), []byte(`{"method":"ready"}`), "https://other.example")
		_ = peer.PostMessage(r.Context(), []byte(`{"apiVersion":1,"method":"ready"}`), hostOrigin)
		_ = peer.Serve(r.Context(), func(context.Context, gateway.Event) {})
	}))
	defer srv.Close()

	conn, err := dial(t, ctx, srv, hostOrigin)
	require.NoError(t, err)
	defer conn.CloseNow()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)
	assert.Equal(t, `{"apiVersion":1,"method":"ready"}`, string(data))

	select {
	case err := <-mismatch:
		assert.True(t, errors.Is(err, wspeer.ErrOriginMismatch), "got %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for mismatch result")
	}

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestPeer_ServeDeliversFrames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan gateway.Event, 4)
	served := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peer, err := wspeer.Accept(w, r, wspeer.Options{
			OriginPatterns: []string{"host.example"},
			Rate:           100,
			Burst:          4,
		})
		if err != nil {
			served <- err
			return
		}
		defer peer.CloseNow()
		served <- peer.Serve(r.Context(), func(_ context.Context, ev gateway.Event) {
			events <- ev
		})
	}))
	defer srv.Close()

	conn, err := dial(t, ctx, srv, hostOrigin)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"method":"open"}`)))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`not json`)))

	for _, want := range []string{`{"method":"open"}`, `not json`} {
		select {
		case ev := <-events:
			assert.Equal(t, want, string(ev.Data))
			assert.Equal(t, hostOrigin, ev.Origin)
		case <-ctx.Done():
			t.Fatal("timed out waiting for frame")
		}
	}

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for serve to return")
	}
}

func TestAccept_RejectsUnknownOrigin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peer, err := wspeer.Accept(w, r, wspeer.Options{OriginPatterns: []string{"host.example"}})
		if err == nil {
			peer.CloseNow()
		}
	}))
	defer srv.Close()

	conn, err := dial(t, ctx, srv, "https://evil.example")
	if conn != nil {
		conn.CloseNow()
	}
	assert.Error(t, err)
}
