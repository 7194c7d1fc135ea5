package entity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/modules/kit/errx"
)

var now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// newTestRoom 3x4 无内墙地图，出口在 (3,0) 右侧，(3,0) 上有一个真宝藏。
func newTestRoom(t *testing.T, players int) *Room {
	t.Helper()
	f := domain.NewField(3, 4, nil)
	corner, _ := f.CellAt(domain.Position{X: 3, Y: 0})
	if _, err := f.AttachExit(corner, domain.Right); err != nil {
		t.Fatalf("AttachExit err=%v", err)
	}
	rules := domain.DefaultRules()
	rules.PlayersAmount = players
	treasures := []domain.Treasure{{ID: 0, Kind: domain.TreasureGenuine, Cell: corner}}
	r, err := NewRoom("r1", "test", "alice", rules, f, treasures, now)
	if err != nil {
		t.Fatalf("NewRoom err=%v", err)
	}
	return r
}

func reasonOf(err error) string {
	var e *errx.Error
	if errors.As(err, &e) {
		return e.Reason()
	}
	return ""
}

func right() *domain.Direction {
	d := domain.Right
	return &d
}

func TestStatus_迁移表(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusCreated, StatusRunning, true},
		{StatusRunning, StatusEnded, true},
		{StatusCreated, StatusEnded, false},
		{StatusEnded, StatusRunning, false},
		{StatusRunning, StatusCreated, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Fatalf("%s->%s got=%v want=%v", c.from, c.to, got, c.ok)
		}
	}
	if _, err := ParseStatus("paused"); err == nil {
		t.Fatalf("未知状态应报错")
	}
}

func TestRoom_创建者自动入座(t *testing.T) {
	r := newTestRoom(t, 2)
	if got := r.Members(); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("members=%v", got)
	}
	if r.Status() != StatusCreated || !r.Dirty() {
		t.Fatalf("status=%s dirty=%v", r.Status(), r.Dirty())
	}
}

func TestRoom_Join_满员与重复加入(t *testing.T) {
	r := newTestRoom(t, 2)
	if err := r.Join("bob", now); err != nil {
		t.Fatalf("Join err=%v", err)
	}
	if err := r.Join("bob", now); err != nil {
		t.Fatalf("重复加入应视为成功 err=%v", err)
	}
	err := r.Join("carol", now)
	if !errors.Is(err, ErrRoomStateConflict) || reasonOf(err) != string(domain.ReasonRosterFull) {
		t.Fatalf("满员 err=%v", err)
	}
}

func TestRoom_Leave_创建者移交与空房(t *testing.T) {
	r := newTestRoom(t, 3)
	_ = r.Join("bob", now)
	empty, err := r.Leave("alice", now)
	if err != nil || empty {
		t.Fatalf("Leave empty=%v err=%v", empty, err)
	}
	if r.Creator() != "bob" {
		t.Fatalf("creator=%s want=bob", r.Creator())
	}
	if _, err := r.Leave("ghost", now); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("非成员离开 err=%v", err)
	}
	empty, err = r.Leave("bob", now)
	if err != nil || !empty {
		t.Fatalf("最后一人离开 empty=%v err=%v", empty, err)
	}
}

func TestRoom_全员出生后自动开局(t *testing.T) {
	r := newTestRoom(t, 2)
	_ = r.Join("bob", now)
	recs, err := r.SetSpawn("alice", domain.Position{X: 2, Y: 0}, now)
	if err != nil || recs != nil {
		t.Fatalf("未全员出生不应开局 recs=%v err=%v", recs, err)
	}
	if _, err := r.Act("alice", domain.ActionSkip, nil, now); reasonOf(err) != string(domain.ReasonNotStarted) {
		t.Fatalf("开局前行动 err=%v", err)
	}
	recs, err = r.SetSpawn("bob", domain.Position{X: 0, Y: 2}, now)
	if err != nil {
		t.Fatalf("SetSpawn err=%v", err)
	}
	if len(recs) != 2 || r.Status() != StatusRunning {
		t.Fatalf("recs=%d status=%s", len(recs), r.Status())
	}
	if err := r.Join("carol", now); !errors.Is(err, ErrRoomStateConflict) {
		t.Fatalf("开局后加入 err=%v", err)
	}
	if _, err := r.SetSpawn("bob", domain.Position{X: 1, Y: 1}, now); !errors.Is(err, ErrRoomStateConflict) {
		t.Fatalf("开局后改出生点 err=%v", err)
	}
	if r.SpawnInfo("bob").SpawnInfo == nil {
		t.Fatalf("出生点应可查询")
	}
}

func TestRoom_带宝藏出门获胜并结束(t *testing.T) {
	r := newTestRoom(t, 2)
	_ = r.Join("bob", now)
	_, _ = r.SetSpawn("alice", domain.Position{X: 2, Y: 0}, now)
	_, _ = r.SetSpawn("bob", domain.Position{X: 0, Y: 2}, now)

	if _, err := r.Act("bob", domain.ActionSkip, nil, now); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("非当前玩家 err=%v", err)
	}
	if _, err := r.Act("alice", domain.ActionMove, right(), now); err != nil {
		t.Fatalf("alice move err=%v", err)
	}
	v, err := r.Allowed("bob")
	if err != nil || !v.IsActive || v.NextPlayerName != "bob" || !v.AllowedAbilities.Skip {
		t.Fatalf("allowed=%+v err=%v", v, err)
	}
	if _, err := r.Act("bob", domain.ActionSkip, nil, now); err != nil {
		t.Fatalf("bob skip err=%v", err)
	}
	if _, err := r.Act("alice", domain.ActionMove, right(), now); err != nil {
		t.Fatalf("alice exit err=%v", err)
	}
	if r.Status() != StatusEnded || r.Winner() != "alice" {
		t.Fatalf("status=%s winner=%s", r.Status(), r.Winner())
	}
	gd := r.GameData()
	if !gd.IsEnded || gd.WinnerName != "alice" || len(gd.Turns) != 5 {
		t.Fatalf("game data=%+v", gd)
	}
	if _, err := r.Act("bob", domain.ActionSkip, nil, now); reasonOf(err) != string(domain.ReasonGameOver) {
		t.Fatalf("结束后行动 err=%v", err)
	}
}

func TestRoom_持久化快照只带新增回合(t *testing.T) {
	r := newTestRoom(t, 1)
	if _, err := r.SetSpawn("alice", domain.Position{X: 0, Y: 0}, now); err != nil {
		t.Fatalf("SetSpawn err=%v", err)
	}
	s1, ok := r.BuildPersistSnapshot(1)
	if !ok || len(s1.Turns) != 1 || s1.Room.Status != StatusRunning {
		t.Fatalf("s1=%+v ok=%v", s1, ok)
	}
	r.ClearDirty()
	if _, ok := r.BuildPersistSnapshot(2); ok {
		t.Fatalf("未变更不应生成快照")
	}
	if _, err := r.Act("alice", domain.ActionSkip, nil, now); err != nil {
		t.Fatalf("skip err=%v", err)
	}
	s2, ok := r.BuildPersistSnapshot(3)
	if !ok || len(s2.Turns) != 1 || s2.Turns[0].Seq != 2 {
		t.Fatalf("s2=%+v", s2)
	}
	s2.Merge(s1)
	if len(s2.Turns) != 2 || s2.Turns[0].Seq != 1 {
		t.Fatalf("merge turns=%+v", s2.Turns)
	}
}

func TestRoom_复盘视图(t *testing.T) {
	r := newTestRoom(t, 2)
	_ = r.Join("bob", now)
	_, _ = r.SetSpawn("alice", domain.Position{X: 1, Y: 1}, now)
	v := r.Review()
	if v.Room.ID != "r1" || v.Room.PlayersAmount != 2 || len(v.Treasures) != 1 {
		t.Fatalf("review=%+v", v)
	}
	if pos, ok := v.SpawnPoints["alice"]; !ok || pos.X != 1 || pos.Y != 1 {
		t.Fatalf("spawn points=%v", v.SpawnPoints)
	}
	a := &Archive{Room: r.Snapshot()}
	if a.GameData().IsEnded {
		t.Fatalf("未结束房间")
	}
}

func TestRoom_保留名与超长名被拒绝(t *testing.T) {
	f := domain.NewField(3, 4, nil)
	rules := domain.DefaultRules()
	if _, err := NewRoom("r2", "test", domain.SystemPlayer, rules, f, nil, now); reasonOf(err) != string(domain.ReasonReservedName) {
		t.Fatalf("创建者为保留名应被拒绝 err=%v", err)
	}
	if _, err := NewRoom("r2", strings.Repeat("房", domain.MaxRoomName+1), "alice", rules, f, nil, now); reasonOf(err) != string(domain.ReasonNameTooLong) {
		t.Fatalf("超长房间名应被拒绝 err=%v", err)
	}

	r := newTestRoom(t, 3)
	if err := r.Join(domain.SystemPlayer, now); !errors.Is(err, errx.ErrReqParamERR) {
		t.Fatalf("保留名加入应被拒绝 err=%v", err)
	}
	if err := r.Join(strings.Repeat("x", 300), now); reasonOf(err) != string(domain.ReasonNameTooLong) {
		t.Fatalf("超长名加入应被拒绝 err=%v", err)
	}
	if err := r.Join(strings.Repeat("名", domain.MaxPlayerName), now); err != nil {
		t.Fatalf("恰好 %d 个字符应允许 err=%v", domain.MaxPlayerName, err)
	}
	if len(r.Members()) != 2 {
		t.Fatalf("只应新增一名玩家 got=%v", r.Members())
	}
}
