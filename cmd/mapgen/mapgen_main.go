package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/maze/engine"
	"Labyrinth/internal/maze/generator"
	"Labyrinth/internal/shared/serverconfig"
)

// mapgen 按种子生成一张地图并以 JSON 输出，用于复盘和调试生成规则。
func main() {
	cfgPath := flag.String("config", "", "config file, game.generator_rules used as base rules")
	seed := flag.Int64("seed", 0, "seed, 0 means current time")
	rows := flag.Int("rows", 0, "rows, 0 keeps configured value")
	cols := flag.Int("cols", 0, "cols, 0 keeps configured value")
	rect := flag.Bool("rect", false, "force rectangular field")
	flag.Parse()

	rules := domain.DefaultRules()
	if *cfgPath != "" {
		if err := serverconfig.Load(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		rules = serverconfig.Conf.Game
	}

	g := rules.Generator
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	g.Seed = *seed
	if *rows > 0 {
		g.Rows = *rows
	}
	if *cols > 0 {
		g.Cols = *cols
	}
	if *rect {
		g.IsRect = true
	}
	rules.Generator = g
	if err := rules.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid rules: %v\n", err)
		os.Exit(2)
	}

	field, treasures, err := generator.Generate(g.Seed, g.Rows, g.Cols, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate seed=%d: %v\n", g.Seed, err)
		os.Exit(2)
	}

	out := struct {
		Rules domain.Rules `json:"rules"`
		engine.Snapshot
	}{
		Rules:    rules,
		Snapshot: engine.NewState(field, treasures, rules).Snapshot(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
