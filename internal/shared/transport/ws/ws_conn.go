package ws

// 控制消息名与连接属性键。
const (
	HandshakeMsg = "handshake"
	HeartbeatMsg = "heartbeat"

	SecretKey = "secretKey"

	// 连接 join 房间后由 session 写入，路由日志从这里取 room_id/player。
	ConnKeyRoom   = "room_id"
	ConnKeyPlayer = "player"
)

// ReqBody 客户端帧：{"seq":1,"name":"game.action","msg":{...}}。seq 原样回在应答里。
type ReqBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Msg  any    `json:"msg"`
}

// RespBody 应答与推送共用；推送的 seq 为 0，code 为 transport.BizCode。
type RespBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Code int    `json:"code"`
	Msg  any    `json:"msg"`
}

type WsMsgReq struct {
	Body *ReqBody
	Conn WSConn
}

type WsMsgResp struct {
	Body *RespBody
}

// WSConn 房间 session 看到的连接。
type WSConn interface {
	ID() string
	Addr() string
	SetProperty(key string, value any)
	GetProperty(key string) any
	RemoveProperty(key string)
	Push(name string, data any)
	Close()
	// Done 在连接关闭时被 close。
	Done() <-chan struct{}
}

type Handshake struct {
	Key string `json:"key"`
}

// Heartbeat ctime 由客户端填，stime 由服务端回填。
type Heartbeat struct {
	CTime int64 `json:"ctime"`
	STime int64 `json:"stime"`
}

func PropString(conn WSConn, key string) string {
	if conn == nil {
		return ""
	}
	s, _ := conn.GetProperty(key).(string)
	return s
}
