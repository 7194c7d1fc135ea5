package http

import (
	"context"
	nethttp "net/http"
	"strings"

	"Labyrinth/internal/room/app/model"
	"Labyrinth/internal/room/interfaces/handler"
	"Labyrinth/internal/room/interfaces/handler/http/dto"
	"Labyrinth/internal/shared/transport"

	"github.com/gin-gonic/gin"
)

const badParamMsg = "参数有误"

type HttpHandler struct {
	room *handler.Room
}

func NewHttpHandler(r *handler.Room) *HttpHandler {
	return &HttpHandler{room: r}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	roomGroup := group.Group("/rooms")
	roomGroup.POST("", h.CreateRoom)
	roomGroup.POST("/:room_id/join", h.JoinRoom)
	roomGroup.GET("/:room_id", h.RoomInfo)
	roomGroup.GET("/:room_id/field", h.FieldReview)

	group.GET("/game_data/:room_id", h.GameData)
	group.GET("/players_stat/:room_id", h.PlayersStat)
}

// CreateRoom 未给出的规则字段沿用服务端默认值。
func (h *HttpHandler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()

	rules := h.room.RoomService.DefaultRules()
	req := model.CreateRoomReq{Rules: &rules}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, badParamMsg)
		return
	}

	resp, err := h.room.RoomService.CreateRoom(ctx, req)
	if err != nil {
		h.error(ctx, c, "http.create_room", err)
		return
	}
	h.ok(c, resp)
}

func (h *HttpHandler) JoinRoom(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.JoinRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, transport.InvalidParam, badParamMsg)
		return
	}

	resp, err := h.room.RoomService.JoinRoom(ctx, model.JoinRoomReq{
		RoomID: c.Param("room_id"),
		Player: req.Player,
	})
	if err != nil {
		h.error(ctx, c, "http.join_room", err)
		return
	}
	h.ok(c, resp)
}

func (h *HttpHandler) RoomInfo(c *gin.Context) {
	ctx := c.Request.Context()

	view, err := h.room.RoomService.RoomInfo(ctx, c.Param("room_id"))
	if err != nil {
		h.error(ctx, c, "http.room_info", err)
		return
	}
	h.ok(c, view)
}

// FieldReview 凭证取 Authorization: Bearer，或 ?token=。
func (h *HttpHandler) FieldReview(c *gin.Context) {
	ctx := c.Request.Context()

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		token = c.Query("token")
	}
	review, err := h.room.RoomService.FieldReview(ctx, model.ReviewReq{
		RoomID: c.Param("room_id"),
		Token:  token,
	})
	if err != nil {
		h.error(ctx, c, "http.field_review", err)
		return
	}
	h.ok(c, review)
}

func (h *HttpHandler) GameData(c *gin.Context) {
	ctx := c.Request.Context()

	data, err := h.room.RoomService.GameData(ctx, c.Param("room_id"))
	if err != nil {
		h.error(ctx, c, "http.game_data", err)
		return
	}
	h.ok(c, data)
}

func (h *HttpHandler) PlayersStat(c *gin.Context) {
	ctx := c.Request.Context()

	stat, err := h.room.RoomService.PlayersStat(ctx, c.Param("room_id"))
	if err != nil {
		h.error(ctx, c, "http.players_stat", err)
		return
	}
	h.ok(c, dto.PlayersStatResp{PlayersData: stat})
}

func (h *HttpHandler) ok(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, dto.Success(transport.OK, data))
}

func (h *HttpHandler) fail(c *gin.Context, code transport.BizCode, msg string) {
	c.JSON(nethttp.StatusOK, dto.Error(code, msg))
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, action string, err error) {
	code, msg := h.room.Report(ctx, action, err)
	h.fail(c, code, msg)
}
