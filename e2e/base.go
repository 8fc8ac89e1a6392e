package e2e

import (
	"chat-relay/infrastructure/websocket"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, no relay to test against")
	}
}

func (s *BaseRelaySuite) header(t *testing.T, name string) {
	h := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		h = color.New(color.BgBlack, color.FgGreen).Render(h)
	}
	t.Log(h)
}

// Peer is one WebSocket participant whose frames are logged when
// E2E_DEBUG_JSON is enabled.
type Peer struct {
	suite *BaseRelaySuite
	name  string
	conn  *ws.Conn
}

// Connect opens a WebSocket to the relay.
func (s *BaseRelaySuite) Connect(name string) *Peer {
	t := s.T()
	s.header(t, name+" connects")

	var opts *ws.DialOptions
	if s.Config.Token != "" {
		opts = &ws.DialOptions{HTTPHeader: http.Header{"Authorization": []string{"Bearer " + s.Config.Token}}}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws://"+s.Config.RelayAddr+"/ws", opts)
	s.Require().NoError(err, "Failed to connect to relay at "+s.Config.RelayAddr)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return &Peer{suite: s, name: name, conn: conn}
}

func (p *Peer) Emit(event string, data any) {
	raw, err := json.Marshal(data)
	p.suite.Require().NoError(err)
	env := websocket.Envelope{Event: event, Data: raw}
	p.trace("->", env)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.suite.Require().NoError(wsjson.Write(ctx, p.conn, env))
}

// Expect skips frames until one named event arrives and decodes it into v.
func (p *Peer) Expect(event string, v any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var env websocket.Envelope
		p.suite.Require().NoError(wsjson.Read(ctx, p.conn, &env), "%s waiting for %s", p.name, event)
		p.trace("<-", env)
		if env.Event != event {
			continue
		}
		if v != nil {
			p.suite.Require().NoError(json.Unmarshal(env.Data, v))
		}
		return
	}
}

func (p *Peer) Close() {
	p.suite.Require().NoError(p.conn.Close(ws.StatusNormalClosure, ""))
}

func (p *Peer) trace(direction string, env websocket.Envelope) {
	if !p.suite.Config.DebugJSON {
		return
	}
	p.suite.T().Logf("%s %s %s %s", p.name, direction, env.Event, string(env.Data))
}

// GetJSON queries the relay REST API.
func (s *BaseRelaySuite) GetJSON(path string, v any) int {
	req, err := http.NewRequest(http.MethodGet, "http://"+s.Config.RelayAddr+path, nil)
	s.Require().NoError(err)
	if s.Config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Config.Token)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if v != nil && resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.Unmarshal(body, v))
	}
	return resp.StatusCode
}

func RoomPath(room, resource string) string {
	return "/api/rooms/" + url.PathEscape(room) + "/" + resource
}
