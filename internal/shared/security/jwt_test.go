package security

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAwardRoomToken_缺少JWT_SECRET应失败(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := AwardRoomToken("r-1", "alice"); err == nil {
		t.Fatalf("期望 JWT_SECRET 为空时返回错误")
	}
}

func TestAwardParse_正常签发并解析(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")

	token, err := AwardRoomToken("r-1", "alice")
	if err != nil {
		t.Fatalf("AwardRoomToken err=%v", err)
	}
	claims, err := ParseRoomToken(token)
	if err != nil {
		t.Fatalf("ParseRoomToken err=%v", err)
	}
	if claims.RoomID != "r-1" || claims.Player != "alice" {
		t.Fatalf("claims 错误 %+v", claims)
	}
}

func TestParseRoomToken_换密钥后失效(t *testing.T) {
	t.Setenv("JWT_SECRET", "k1")
	token, err := AwardRoomToken("r-1", "alice")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	t.Setenv("JWT_SECRET", "k2")
	if _, err := ParseRoomToken(token); err == nil {
		t.Fatalf("密钥不同应解析失败")
	}
}

func TestParseRoomToken_拒绝非HS256(t *testing.T) {
	t.Setenv("JWT_SECRET", "k1")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, &RoomClaims{RoomID: "r-1", Player: "alice"})
	s, err := tok.SignedString([]byte("k1"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := ParseRoomToken(s); err == nil {
		t.Fatalf("非 HS256 令牌应被拒绝")
	}
}

func TestAwardRoomToken_空参数(t *testing.T) {
	t.Setenv("JWT_SECRET", "k1")
	if _, err := AwardRoomToken("", "alice"); err != ErrRoomClaims {
		t.Fatalf("期望 ErrRoomClaims got=%v", err)
	}
}
