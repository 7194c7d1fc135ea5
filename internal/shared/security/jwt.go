package security

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTSecretMissing = errors.New("JWT_SECRET is not set")
	ErrRoomClaims       = errors.New("room token missing room_id or player")
)

// RoomTokenTTL 房间令牌有效期，覆盖一局游戏的正常时长。
const RoomTokenTTL = 24 * time.Hour

// RoomClaims 房间入场凭证：谁（player）可以进入哪个房间（room_id）。
type RoomClaims struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
	jwt.RegisteredClaims
}

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrJWTSecretMissing
	}
	return []byte(secret), nil
}

// AwardRoomToken 签发房间令牌。
func AwardRoomToken(roomID, player string) (string, error) {
	if roomID == "" || player == "" {
		return "", ErrRoomClaims
	}
	key, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &RoomClaims{
		RoomID: roomID,
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player,
			ExpiresAt: jwt.NewNumericDate(now.Add(RoomTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseRoomToken 解析并验证房间令牌。
func ParseRoomToken(tokenStr string) (*RoomClaims, error) {
	key, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	claims := &RoomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.RoomID == "" || claims.Player == "" {
		return nil, ErrRoomClaims
	}
	return claims, nil
}

// RoomTokens 以包级函数实现房间凭证的签发与校验。
type RoomTokens struct{}

func (RoomTokens) Award(roomID, player string) (string, error) {
	return AwardRoomToken(roomID, player)
}

func (RoomTokens) Parse(token string) (string, string, error) {
	c, err := ParseRoomToken(token)
	if err != nil {
		return "", "", err
	}
	return c.RoomID, c.Player, nil
}
