package db

import (
	"strings"
	"testing"

	drivermysql "github.com/go-sql-driver/mysql"

	"Labyrinth/internal/shared/serverconfig"
)

func TestDSN_默认字符集与UTC(t *testing.T) {
	dsn := DSN(serverconfig.MySQLConfig{Host: "db", Port: 3306, User: "maze", Password: "p@ss", DBName: "labyrinth"})

	c, err := drivermysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("dsn 无法解析 %q err=%v", dsn, err)
	}
	if c.Addr != "db:3306" || c.User != "maze" || c.Passwd != "p@ss" || c.DBName != "labyrinth" {
		t.Fatalf("连接参数不对 %+v", c)
	}
	if !c.ParseTime || c.Loc.String() != "UTC" {
		t.Fatalf("应按 UTC 解析时间 parseTime=%v loc=%v", c.ParseTime, c.Loc)
	}
	if !strings.Contains(dsn, "charset=utf8mb4") {
		t.Fatalf("缺默认字符集 %q", dsn)
	}
}

func TestDSN_自定义字符集(t *testing.T) {
	dsn := DSN(serverconfig.MySQLConfig{Host: "127.0.0.1", Port: 3307, Charset: "utf8"})
	if !strings.Contains(dsn, "charset=utf8") || strings.Contains(dsn, "utf8mb4") {
		t.Fatalf("字符集未生效 %q", dsn)
	}
}
