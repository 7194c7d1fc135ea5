package http

import (
	"bytes"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/actor"
	"Labyrinth/internal/room/actors"
	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/room/infra/persistence/memory"
	"Labyrinth/internal/room/interfaces/handler"
	"Labyrinth/internal/shared/session"
	"Labyrinth/internal/shared/transport"
	"Labyrinth/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

type fakeTokens struct{}

func (fakeTokens) Award(roomID, player string) (string, error) {
	return roomID + "|" + player, nil
}

func (fakeTokens) Parse(token string) (string, string, error) {
	room, player, ok := strings.Cut(token, "|")
	if !ok {
		return "", "", errors.New("bad token")
	}
	return room, player, nil
}

type envelope struct {
	Code transport.BizCode `json:"code"`
	Msg  string            `json:"msg"`
	Data json.RawMessage   `json:"data"`
}

func testRules() domain.Rules {
	rules := domain.DefaultRules()
	rules.Generator.IsRect = true
	rules.Generator.Seed = 3
	return rules
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewRoomRepository()
	rt := actor.NewRuntime(repo, session.NewSessMgr(), actors.Options{FlushEvery: 10 * time.Millisecond}, time.Second, nil)
	t.Cleanup(rt.Shutdown)

	log := logx.NewZapLogger(nil)
	svc := app.NewRoomService(rt, repo, fakeTokens{}, testRules(), log)
	h := NewHttpHandler(handler.NewRoom(session.NewSessMgr(), svc, log))

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api"))
	return engine
}

func call(t *testing.T, engine *gin.Engine, method, path string, body any) envelope {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body err=%v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("%s %s status=%d", method, path, w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode resp err=%v body=%s", err, w.Body.String())
	}
	return env
}

func createRoom(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	env := call(t, engine, nethttp.MethodPost, "/api/rooms", map[string]any{"name": "r1", "creator": "alice"})
	if env.Code != transport.OK {
		t.Fatalf("create code=%d msg=%s", env.Code, env.Msg)
	}
	var resp struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode create err=%v", err)
	}
	if resp.ID == "" || resp.Token != resp.ID+"|alice" {
		t.Fatalf("unexpected create resp=%+v", resp)
	}
	return resp.ID
}

func TestHttp_创建加入与查询(t *testing.T) {
	engine := newEngine(t)
	id := createRoom(t, engine)

	env := call(t, engine, nethttp.MethodPost, "/api/rooms/"+id+"/join", map[string]any{"player": "bob"})
	if env.Code != transport.OK {
		t.Fatalf("join code=%d msg=%s", env.Code, env.Msg)
	}

	env = call(t, engine, nethttp.MethodPost, "/api/rooms/"+id+"/join", map[string]any{"player": "carol"})
	if env.Code != transport.RoomStateConflict {
		t.Fatalf("join full room code=%d, want %d", env.Code, transport.RoomStateConflict)
	}

	env = call(t, engine, nethttp.MethodGet, "/api/rooms/"+id, nil)
	var view entity.RoomView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode room err=%v", err)
	}
	if len(view.Members) != 2 || view.Creator != "alice" {
		t.Fatalf("unexpected room view=%+v", view)
	}

	env = call(t, engine, nethttp.MethodGet, "/api/game_data/"+id, nil)
	var gd entity.GameData
	if err := json.Unmarshal(env.Data, &gd); err != nil {
		t.Fatalf("decode game data err=%v", err)
	}
	if gd.IsEnded || len(gd.Turns) != 0 {
		t.Fatalf("unexpected game data=%+v", gd)
	}

	env = call(t, engine, nethttp.MethodGet, "/api/players_stat/"+id, nil)
	var stat struct {
		PlayersData []domain.PlayerView `json:"players_data"`
	}
	if err := json.Unmarshal(env.Data, &stat); err != nil {
		t.Fatalf("decode stat err=%v", err)
	}
	if env.Code != transport.OK {
		t.Fatalf("players_stat code=%d", env.Code)
	}

	env = call(t, engine, nethttp.MethodGet, "/api/rooms/"+id+"/field?token="+url.QueryEscape(id+"|alice"), nil)
	if env.Code != transport.OK || len(env.Data) == 0 {
		t.Fatalf("field review code=%d", env.Code)
	}
}

func TestHttp_对局中全图仅创建者可看(t *testing.T) {
	engine := newEngine(t)
	id := createRoom(t, engine)
	if env := call(t, engine, nethttp.MethodPost, "/api/rooms/"+id+"/join", map[string]any{"player": "bob"}); env.Code != transport.OK {
		t.Fatalf("join code=%d", env.Code)
	}

	cases := []struct {
		name  string
		token string
		want  transport.BizCode
	}{
		{"无凭证", "", transport.PermissionDenied},
		{"非创建者", id + "|bob", transport.PermissionDenied},
		{"他房凭证", "other|alice", transport.SessionInvalid},
		{"创建者", id + "|alice", transport.OK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(nethttp.MethodGet, "/api/rooms/"+id+"/field", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			var env envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode err=%v body=%s", err, w.Body.String())
			}
			if env.Code != tc.want {
				t.Fatalf("code=%d want=%d msg=%s", env.Code, tc.want, env.Msg)
			}
			if tc.want != transport.OK && len(env.Data) != 0 && string(env.Data) != "null" {
				t.Fatalf("被拒绝时不应返回地图 data=%s", env.Data)
			}
		})
	}
}

func TestHttp_错误映射(t *testing.T) {
	engine := newEngine(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   transport.BizCode
	}{
		{"房间不存在", nethttp.MethodGet, "/api/game_data/nope", nil, transport.RoomNotFound},
		{"统计房间不存在", nethttp.MethodGet, "/api/players_stat/nope", nil, transport.RoomNotFound},
		{"请求体非法", nethttp.MethodPost, "/api/rooms", "{", transport.InvalidParam},
		{"名称为空", nethttp.MethodPost, "/api/rooms", map[string]any{"name": " ", "creator": "alice"}, transport.InvalidParam},
		{"人数非法", nethttp.MethodPost, "/api/rooms", map[string]any{"name": "r", "creator": "alice", "rules": map[string]any{"players_amount": 0}}, transport.InvalidParam},
		{"加入缺少玩家", nethttp.MethodPost, "/api/rooms/x/join", map[string]any{}, transport.InvalidParam},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := call(t, engine, tc.method, tc.path, tc.body)
			if env.Code != tc.want {
				t.Fatalf("code=%d msg=%s, want %d", env.Code, env.Msg, tc.want)
			}
			if env.Msg == "" {
				t.Fatalf("expected client message")
			}
		})
	}
}

func TestHttp_创建时部分规则覆盖默认值(t *testing.T) {
	engine := newEngine(t)
	env := call(t, engine, nethttp.MethodPost, "/api/rooms", map[string]any{
		"name":    "solo",
		"creator": "alice",
		"rules":   map[string]any{"players_amount": 1},
	})
	if env.Code != transport.OK {
		t.Fatalf("create code=%d msg=%s", env.Code, env.Msg)
	}
	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &resp)

	env = call(t, engine, nethttp.MethodGet, "/api/rooms/"+resp.ID, nil)
	var view entity.RoomView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode room err=%v", err)
	}
	if view.PlayersAmount != 1 {
		t.Fatalf("players_amount=%d, want 1", view.PlayersAmount)
	}
}
