package generator

import (
	"Labyrinth/internal/maze/domain"
	"math/rand"
	"slices"
)

const (
	stageHoles     = "holes"
	stageRivers    = "rivers"
	stageArmory    = "armory"
	stageClinic    = "clinic"
	stageTreasures = "treasures"
	stageWalls     = "walls"
	stageExit      = "exit"

	// holeRatio 非矩形地图挖掉的格子比例上限。
	holeRatio = 8
	// riverStepBudget 单条河流回溯搜索的最大步数。
	riverStepBudget = 200000
)

// Generate 按种子与规则生成迷宫。相同输入得到完全相同的地图与宝藏。
func Generate(seed int64, rows, cols int, rules domain.GeneratorRules) (*domain.Field, []domain.Treasure, error) {
	if rows < domain.MinSide || cols < domain.MinSide || rows > domain.MaxSide || cols > domain.MaxSide {
		return nil, nil, domain.ErrGeneration.WithReason(domain.ReasonBadSize).
			WithData("rows", rows).WithData("cols", cols)
	}
	if err := rules.Validate(domain.ErrGeneration); err != nil {
		return nil, nil, err
	}
	need := rules.SpecialCells()

	var holes map[domain.Position]bool
	if !rules.IsRect {
		holes = punchHoles(stageRand(seed, stageHoles), rows, cols, need)
	}
	g := &gen{
		seed:  seed,
		rules: rules,
		field: domain.NewField(rows, cols, holes),
	}
	g.free = g.field.GridCells()
	if need > len(g.free) {
		return nil, nil, domain.ErrGeneration.WithReason(domain.ReasonCapacity).
			WithData("need", need).WithData("capacity", len(g.free))
	}

	if err := g.layRivers(); err != nil {
		return nil, nil, err
	}
	g.placeArmories()
	g.placeClinics()
	treasures := g.placeTreasures()
	g.carveWalls()
	if err := g.placeExit(); err != nil {
		return nil, nil, err
	}
	if !Connected(g.field) {
		return nil, nil, domain.ErrGeneration.WithReason(domain.ReasonDisconnected)
	}
	return g.field, treasures, nil
}

type gen struct {
	seed  int64
	rules domain.GeneratorRules
	field *domain.Field
	free  []int // 仍是普通地面的格子 id，保持升序
}

func (g *gen) take(id int) {
	if i, ok := slices.BinarySearch(g.free, id); ok {
		g.free = slices.Delete(g.free, i, i+1)
	}
}

func (g *gen) isFree(id int) bool {
	_, ok := slices.BinarySearch(g.free, id)
	return ok
}

func (g *gen) pick(r *rand.Rand) int {
	id := g.free[r.Intn(len(g.free))]
	g.take(id)
	return id
}

func (g *gen) layRivers() error {
	r := stageRand(g.seed, stageRivers)
	for i, length := range g.rules.RiverRules {
		sources := slices.Clone(g.free)
		r.Shuffle(len(sources), func(a, b int) { sources[a], sources[b] = sources[b], sources[a] })

		budget := riverStepBudget
		var path []int
		for _, src := range sources {
			path = g.riverFrom(r, []int{src}, length, &budget)
			if path != nil || budget <= 0 {
				break
			}
		}
		if path == nil {
			return domain.ErrGeneration.WithReason(domain.ReasonRiverNotLaid).
				WithData("river", i).WithData("length", length)
		}
		for _, id := range path {
			g.take(id)
		}
		g.field.AddRiver(path)
	}
	return nil
}

// riverFrom 从 path 末端做随机深度优先延伸，直到长度满足。
func (g *gen) riverFrom(r *rand.Rand, path []int, length int, budget *int) []int {
	if len(path) == length {
		return path
	}
	*budget--
	if *budget <= 0 {
		return nil
	}
	last := path[len(path)-1]
	next := make([]int, 0, 4)
	for _, d := range domain.Directions {
		n, ok := g.field.Neighbour(last, d)
		if ok && g.isFree(n) && !slices.Contains(path, n) {
			next = append(next, n)
		}
	}
	r.Shuffle(len(next), func(a, b int) { next[a], next[b] = next[b], next[a] })
	for _, n := range next {
		if res := g.riverFrom(r, append(path, n), length, budget); res != nil {
			return res
		}
		if *budget <= 0 {
			return nil
		}
	}
	return nil
}

func (g *gen) placeArmories() {
	r := stageRand(g.seed, stageArmory)
	for i := 0; i < g.rules.Armory.Amount; i++ {
		if g.rules.Armory.Separated {
			g.field.SetType(g.pick(r), domain.CellArmoryWeapon)
			g.field.SetType(g.pick(r), domain.CellArmoryExplosive)
			continue
		}
		g.field.SetType(g.pick(r), domain.CellArmory)
	}
}

func (g *gen) placeClinics() {
	r := stageRand(g.seed, stageClinic)
	for i := 0; i < g.rules.Clinics; i++ {
		g.field.SetType(g.pick(r), domain.CellClinic)
	}
}

// placeTreasures 宝藏只放在普通地面上，id 按 真/假/雷 的顺序分配。
func (g *gen) placeTreasures() []domain.Treasure {
	r := stageRand(g.seed, stageTreasures)
	t := g.rules.Treasures
	out := make([]domain.Treasure, 0, t.Total())
	add := func(kind domain.TreasureKind, n int) {
		for i := 0; i < n; i++ {
			out = append(out, domain.Treasure{ID: len(out), Kind: kind, Cell: g.pick(r)})
		}
	}
	add(domain.TreasureGenuine, t.Genuine)
	add(domain.TreasureSpurious, t.Spurious)
	add(domain.TreasureMined, t.Mined)
	return out
}

type edge struct {
	a, b int
	dir  domain.Direction // 从 a 看过去的方向
}

// carveWalls 随机 Kruskal：河道边强制进入生成树，只有生成树之外的边才可能砌墙，
// 因此任何墙的组合都不会破坏连通性。
func (g *gen) carveWalls() {
	w := g.rules.Walls
	if !w.HasWalls || (!w.Concrete && !w.Rubber) || w.Density <= 0 {
		return
	}
	r := stageRand(g.seed, stageWalls)
	uf := newUnionFind(g.field.Len())

	var edges []edge
	for _, id := range g.field.GridCells() {
		for _, d := range []domain.Direction{domain.Right, domain.Bottom} {
			n, ok := g.field.Neighbour(id, d)
			if !ok {
				continue
			}
			if g.field.SameRiverNeighbours(id, n) {
				uf.union(id, n)
				continue
			}
			edges = append(edges, edge{a: id, b: n, dir: d})
		}
	}
	r.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })

	for _, e := range edges {
		if uf.union(e.a, e.b) {
			continue
		}
		if r.Float64() >= w.Density {
			continue
		}
		wt := domain.WallConcrete
		switch {
		case w.Concrete && w.Rubber:
			if r.Intn(2) == 1 {
				wt = domain.WallRubber
			}
		case w.Rubber:
			wt = domain.WallRubber
		}
		g.field.SetWall(e.a, e.dir, wt)
	}
}

func (g *gen) placeExit() error {
	r := stageRand(g.seed, stageExit)
	type slot struct {
		cell int
		dir  domain.Direction
	}
	var slots []slot
	for _, id := range g.field.GridCells() {
		pos := g.field.MustCell(id).Pos
		for _, d := range domain.Directions {
			// 出口只开在网格边界上，不开向内部空洞。
			if !inBounds(g.field, pos.Step(d)) && g.field.WallType(id, d) == domain.WallOuter {
				slots = append(slots, slot{cell: id, dir: d})
			}
		}
	}
	if len(slots) == 0 {
		return domain.ErrGeneration.WithReason(domain.ReasonExitNotPlaced)
	}
	s := slots[r.Intn(len(slots))]
	if _, err := g.field.AttachExit(s.cell, s.dir); err != nil {
		return domain.ErrGeneration.WithReason(domain.ReasonExitNotPlaced).WithCause(err)
	}
	return nil
}

func inBounds(f *domain.Field, p domain.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < f.Cols() && p.Y < f.Rows()
}

// Connected 网格内所有格子经由可通行的墙互相可达（不含出口格）。
func Connected(f *domain.Field) bool {
	cells := f.GridCells()
	if len(cells) == 0 {
		return false
	}
	seen := make([]bool, f.Len())
	queue := []int{cells[0]}
	seen[cells[0]] = true
	count := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		count++
		for _, d := range domain.Directions {
			n, ok := f.Neighbour(cur, d)
			if !ok || seen[n] || n == f.Exit() || !f.WallType(cur, d).Passable() {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return count == len(cells)
}
