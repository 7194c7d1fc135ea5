package app

type Reason struct {
	Code    string
	Message string
}

func (r Reason) ReasonCode() string {
	return r.Code
}

func NewReason(c, m string) Reason {
	return Reason{
		Code:    c,
		Message: m,
	}
}

var (
	ReasonTokenInvalid  = NewReason("TOKEN_INVALID", "凭证校验失败")
	ReasonTokenMismatch = NewReason("TOKEN_ROOM_MISMATCH", "凭证与房间不匹配")
	ReasonTokenIssue    = NewReason("TOKEN_ISSUE_FAILED", "凭证签发失败")
	ReasonNotAttached   = NewReason("NOT_ATTACHED", "连接尚未进入房间")
	ReasonRoomArchived  = NewReason("ROOM_ARCHIVED", "房间已归档，只能查询")
	ReasonBadAction     = NewReason("BAD_ACTION", "未知动作")
	ReasonBadDirection  = NewReason("BAD_DIRECTION", "未知方向")
	ReasonEmptyName     = NewReason("EMPTY_NAME", "名称不能为空")
	ReasonIDIssue       = NewReason("ROOM_ID_ISSUE_FAILED", "房间号生成失败")
	ReasonReviewLocked  = NewReason("REVIEW_LOCKED", "对局结束前仅创建者可查看全图")

	ReasonRuntimeTimeout = NewReason("ROOM_RUNTIME_TIMEOUT", "房间处理超时")
	ReasonRepoFailed     = NewReason("ROOM_REPO_FAILED", "房间存储不可用")
)
