package dto

import "Labyrinth/internal/maze/domain"

type JoinRoomReq struct {
	Player string `json:"player" binding:"required"`
}

type PlayersStatResp struct {
	PlayersData []domain.PlayerView `json:"players_data"`
}
