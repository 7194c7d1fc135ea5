package dto

import "Labyrinth/internal/shared/transport"

// Response REST 统一包裹：{code,msg,data}。
type Response struct {
	Code transport.BizCode `json:"code"`
	Msg  string            `json:"msg"`
	Data any               `json:"data,omitempty"`
}

func Success(code transport.BizCode, data any) Response {
	return Response{Code: code, Msg: code.String(), Data: data}
}

func Error(code transport.BizCode, msg string) Response {
	if msg == "" {
		msg = code.String()
	}
	return Response{Code: code, Msg: msg}
}
