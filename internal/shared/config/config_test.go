package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConf struct {
	Game struct {
		Port    int      `mapstructure:"port"`
		Rivers  []int    `mapstructure:"rivers"`
		Tags    []string `mapstructure:"tags"`
		Timeout string   `mapstructure:"timeout"`
	} `mapstructure:"game"`
}

func writeConf(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "configs", "conf.yml")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir err=%v", err)
	}
	body := "game:\n  port: 8004\n  rivers: [5, 3]\n  tags: [a, b]\n  timeout: 3s\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write err=%v", err)
	}
	return p
}

func TestLoad_显式路径(t *testing.T) {
	dir := t.TempDir()
	p := writeConf(t, dir)

	var c testConf
	if err := Load(p, &c); err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if c.Game.Port != 8004 || len(c.Game.Rivers) != 2 || c.Game.Rivers[0] != 5 || c.Game.Timeout != "3s" {
		t.Fatalf("解码结果错误 %+v", c)
	}
}

func TestLoad_环境变量覆盖(t *testing.T) {
	dir := t.TempDir()
	p := writeConf(t, dir)
	t.Setenv("LABYRINTH_GAME_PORT", "9100")

	var c testConf
	if err := Load(p, &c); err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if c.Game.Port != 9100 {
		t.Fatalf("环境变量应覆盖配置 port=%d", c.Game.Port)
	}
}

func TestResolve_向上查找(t *testing.T) {
	dir := t.TempDir()
	want := writeConf(t, dir)
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir err=%v", err)
	}
	t.Chdir(sub)

	got, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve err=%v", err)
	}
	if got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

func TestResolve_找不到(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Resolve("nope.yml"); err == nil {
		t.Fatalf("应返回 NotFoundError")
	}
}
