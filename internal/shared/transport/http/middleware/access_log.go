package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"Labyrinth/internal/shared/transport"
	"Labyrinth/modules/kit/logx"
	"Labyrinth/modules/kit/tracex"
)

// 响应体只保留前 maxCapture 字节，业务码总在开头。
const maxCapture = 4 << 10

type captureWriter struct {
	gin.ResponseWriter
	head bytes.Buffer
}

func (w *captureWriter) keep(p []byte) {
	if room := maxCapture - w.head.Len(); room > 0 {
		w.head.Write(p[:min(room, len(p))])
	}
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.keep(p)
	return w.ResponseWriter.Write(p)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.keep([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

// AccessLog 每个请求一条访问日志。handler 经 transport.SetErrorReason 回填拒绝原因，
// 业务码取自响应体的 code 字段，没有时按 HTTP 状态推断。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx := transport.NewContextWithParent(c.Request.Context(), c.Request.Method+" "+route)
		if room := c.Param("room_id"); room != "" {
			ctx = tracex.WithRoom(ctx, room)
		}
		c.Request = c.Request.WithContext(ctx)

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		transport.SetBizCode(ctx, resolveCode(cw.head.Bytes(), cw.Status()))
		transport.WriteAccessLog(ctx, log)
	}
}

func resolveCode(body []byte, status int) transport.BizCode {
	var payload struct {
		Code *int `json:"code"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil && payload.Code != nil {
		return transport.BizCode(*payload.Code)
	}
	switch {
	case status == http.StatusNotFound:
		return transport.RouteNotFound
	case status >= http.StatusBadRequest:
		return transport.SystemError
	default:
		return transport.OK
	}
}
