package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-think/openssl"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Labyrinth/internal/shared/security"
	"Labyrinth/internal/shared/utils"
	"Labyrinth/modules/kit/errx"
	"Labyrinth/modules/kit/logx"
)

const (
	outChanSize  = 1000
	writeTimeout = 10 * time.Second
)

type WsServer struct {
	id         string
	conn       *websocket.Conn
	router     *Router
	outChan    chan *WsMsgResp
	needSecret bool
	property   map[string]any
	sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(wsConn *websocket.Conn, l logx.Logger, needSecret bool) *WsServer {
	id := uuid.NewString()
	l = logx.With(logx.Or(l), zap.String("conn_id", id))
	return &WsServer{
		id:         id,
		conn:       wsConn,
		outChan:    make(chan *WsMsgResp, outChanSize),
		needSecret: needSecret,
		property:   make(map[string]any),
		done:       make(chan struct{}),
		log:        l,
	}
}

func (s *WsServer) ID() string {
	return s.id
}

func (s *WsServer) Router(router *Router) {
	s.router = router
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

// Push 服务端主动推送。写缓冲满或连接已关闭时丢弃，不阻塞调用方（房间 actor）。
func (s *WsServer) Push(name string, data any) {
	s.enqueue(&WsMsgResp{Body: &RespBody{Name: name, Msg: data}})
}

func (s *WsServer) enqueue(msg *WsMsgResp) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.outChan <- msg:
	case <-s.done:
	default:
		s.log.Warn("ws_server out chan full, drop msg", zap.String("name", msg.Body.Name))
	}
}

type transportReason string

func (r transportReason) ReasonCode() string { return string(r) }

const (
	reasonRead   transportReason = "WS_READ_FAILED"
	reasonDecode transportReason = "WS_DECODE_FAILED"
	reasonEncode transportReason = "WS_ENCODE_FAILED"
	reasonWrite  transportReason = "WS_WRITE_FAILED"
)

// transportErr 收发失败只影响这条连接，按系统错误上报。
func (s *WsServer) transportErr(reason transportReason, err error) {
	e := errx.ErrTransport.WithReason(reason).WithData("conn_id", s.id).WithCause(err)
	logx.ReportSysErrorWithLoggerContext(context.Background(), s.log, logx.NewSysLog("ws.transport", e))
}

func (s *WsServer) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("ws readMsgLoop panic", zap.String("err", fmt.Sprintf("%v", err)))
		}
		s.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.transportErr(reasonRead, err)
			}
			return
		}

		raw, ok := s.decode(data)
		if !ok {
			continue
		}

		reqBody := ReqBody{}
		if err := json.Unmarshal(raw, &reqBody); err != nil {
			s.log.Warn("ws_server readMsgLoop unmarshal json error", zap.Error(err))
			continue
		}

		req := WsMsgReq{Body: &reqBody, Conn: s}
		// req 和 resp 的 Seq 必须一致
		resp := WsMsgResp{Body: &RespBody{Seq: reqBody.Seq, Name: reqBody.Name}}
		if reqBody.Name == HeartbeatMsg {
			h := &Heartbeat{}
			_ = mapstructure.Decode(reqBody.Msg, h)
			h.STime = time.Now().UnixMilli()
			resp.Body.Msg = h
		} else {
			s.log.Debug("ws_server read msg", zap.Any("data", reqBody))
			s.router.Dispatch(&req, &resp)
		}

		s.enqueue(&resp)
	}
}

// decode 明文模式原样返回；加密模式先解压再解密。
func (s *WsServer) decode(data []byte) ([]byte, bool) {
	if !s.needSecret {
		return data, true
	}
	secretData, err := security.UnZip(data)
	if err != nil {
		s.transportErr(reasonDecode, err)
		return nil, false
	}
	key, _ := s.GetProperty(SecretKey).(string)
	if key == "" {
		s.log.Warn("ws_server readMsgLoop not found secretKey")
		return nil, false
	}
	decrypted, err := security.AesCBCDecrypt(secretData, []byte(key), []byte(key), openssl.ZEROS_PADDING)
	if err != nil {
		s.transportErr(reasonDecode, err)
		// 出错后重新握手
		s.handshake()
		return nil, false
	}
	return decrypted, true
}

func (s *WsServer) writeMsgLoop() {
	for {
		select {
		case msg := <-s.outChan:
			if msg.Body.Name != HeartbeatMsg {
				s.log.Debug("ws_server write msg", zap.String("name", msg.Body.Name), zap.Int("code", msg.Body.Code))
			}
			s.write(msg)
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}

func (s *WsServer) write(msg *WsMsgResp) {
	marshal, err := json.Marshal(msg.Body)
	if err != nil {
		s.transportErr(reasonEncode, err)
		return
	}

	if !s.needSecret {
		s.writeFrame(websocket.TextMessage, marshal)
		return
	}

	key, _ := s.GetProperty(SecretKey).(string)
	if key == "" {
		s.log.Warn("ws_server write not found secretKey", zap.String("name", msg.Body.Name))
		return
	}
	encrypted, err := security.AesCBCEncrypt(marshal, []byte(key), []byte(key), openssl.ZEROS_PADDING)
	if err != nil {
		s.transportErr(reasonEncode, err)
		return
	}
	zipped, err := security.Zip(encrypted)
	if err != nil {
		s.transportErr(reasonEncode, err)
		return
	}
	// 压缩后的密文是二进制字节流，必须走 BinaryMessage
	s.writeFrame(websocket.BinaryMessage, zipped)
}

// writeFrame gorilla 的连接不支持并发写，握手与写循环共用 writeMu。
func (s *WsServer) writeFrame(messageType int, data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.transportErr(reasonWrite, err)
		s.Close()
	}
}

func (s *WsServer) handshake() {
	secretKey, _ := s.GetProperty(SecretKey).(string)
	if secretKey == "" {
		secretKey = utils.RandSeq(16)
		s.SetProperty(SecretKey, secretKey)
	}

	data, err := json.Marshal(&RespBody{Name: HandshakeMsg, Msg: &Handshake{Key: secretKey}})
	if err != nil {
		s.log.Error("ws_server handshake marshal json error", zap.Error(err))
		return
	}
	zipData, err := security.Zip(data)
	if err != nil {
		s.log.Error("ws_server handshake zip error", zap.Error(err))
		return
	}
	s.writeFrame(websocket.BinaryMessage, zipData)
}
