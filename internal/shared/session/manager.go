package session

import (
	"sync"

	"Labyrinth/internal/shared/transport/ws"
)

// KickedMsg 同一玩家在别处重新进入房间时推给旧连接。
const KickedMsg = "kicked"

// Manager 房间维度的连接登记表：(room, player) -> conn。
// 断线只影响推送，不影响房间名单与回合顺序。
type Manager interface {
	Bind(room, player string, conn ws.WSConn)
	UnbindConn(conn ws.WSConn)
	GetConn(room, player string) (ws.WSConn, bool)
	Identity(conn ws.WSConn) (room, player string, ok bool)
	Publish(room, name string, data any)
	SendTo(room, player, name string, data any) bool
	Online(room string) []string
}

type member struct {
	room   string
	player string
}

type SessMgr struct {
	sync.RWMutex
	rooms     map[string]map[string]ws.WSConn
	conn2user map[ws.WSConn]member
	watched   map[ws.WSConn]struct{}
}

func NewSessMgr() *SessMgr {
	return &SessMgr{
		rooms:     make(map[string]map[string]ws.WSConn),
		conn2user: make(map[ws.WSConn]member),
		watched:   make(map[ws.WSConn]struct{}),
	}
}

func (s *SessMgr) Bind(room, player string, conn ws.WSConn) {
	if conn == nil || room == "" || player == "" {
		return
	}
	s.Lock()
	// 为每条连接只启动一次 watcher：连接关闭后自动解绑
	if _, ok := s.watched[conn]; !ok {
		s.watched[conn] = struct{}{}
		go s.watchConnDone(conn)
	}
	// 一条连接同一时间只属于一个房间
	if prev, ok := s.conn2user[conn]; ok {
		s.removeLocked(prev, conn)
	}
	members := s.rooms[room]
	if members == nil {
		members = make(map[string]ws.WSConn)
		s.rooms[room] = members
	}
	old := members[player]
	members[player] = conn
	s.conn2user[conn] = member{room: room, player: player}
	if old != nil && old != conn {
		delete(s.conn2user, old)
	}
	s.Unlock()

	conn.SetProperty(ws.ConnKeyRoom, room)
	conn.SetProperty(ws.ConnKeyPlayer, player)
	// 踢掉原来的那个
	if old != nil && old != conn {
		old.Push(KickedMsg, map[string]string{"room_id": room})
		old.Close()
	}
}

func (s *SessMgr) watchConnDone(conn ws.WSConn) {
	<-conn.Done()
	s.UnbindConn(conn)
	s.Lock()
	delete(s.watched, conn)
	s.Unlock()
}

func (s *SessMgr) UnbindConn(conn ws.WSConn) {
	s.Lock()
	defer s.Unlock()
	if m, ok := s.conn2user[conn]; ok {
		s.removeLocked(m, conn)
	}
}

func (s *SessMgr) removeLocked(m member, conn ws.WSConn) {
	delete(s.conn2user, conn)
	members := s.rooms[m.room]
	if members[m.player] == conn {
		delete(members, m.player)
	}
	if len(members) == 0 {
		delete(s.rooms, m.room)
	}
}

func (s *SessMgr) GetConn(room, player string) (ws.WSConn, bool) {
	s.RLock()
	defer s.RUnlock()
	conn, ok := s.rooms[room][player]
	return conn, ok
}

func (s *SessMgr) Identity(conn ws.WSConn) (string, string, bool) {
	s.RLock()
	defer s.RUnlock()
	m, ok := s.conn2user[conn]
	return m.room, m.player, ok
}

// Publish 向房间内所有在线连接推送。
func (s *SessMgr) Publish(room, name string, data any) {
	s.RLock()
	conns := make([]ws.WSConn, 0, len(s.rooms[room]))
	for _, c := range s.rooms[room] {
		conns = append(conns, c)
	}
	s.RUnlock()
	for _, c := range conns {
		c.Push(name, data)
	}
}

// SendTo 只推给房间里的某个玩家，玩家不在线时返回 false。
func (s *SessMgr) SendTo(room, player, name string, data any) bool {
	conn, ok := s.GetConn(room, player)
	if !ok {
		return false
	}
	conn.Push(name, data)
	return true
}

func (s *SessMgr) Online(room string) []string {
	s.RLock()
	defer s.RUnlock()
	out := make([]string, 0, len(s.rooms[room]))
	for p := range s.rooms[room] {
		out = append(out, p)
	}
	return out
}
