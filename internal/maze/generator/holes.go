package generator

import (
	"Labyrinth/internal/maze/domain"
	"math/rand"
)

// punchHoles 在矩形上随机挖洞得到不规则关卡形状。
// 每挖一个洞都检查剩余格子仍然四连通，并保证剩余容量不少于 need。
func punchHoles(r *rand.Rand, rows, cols, need int) map[domain.Position]bool {
	total := rows * cols
	target := total / holeRatio
	if total-target < need {
		target = total - need
	}
	holes := make(map[domain.Position]bool, max(target, 0))
	if target <= 0 {
		return holes
	}

	order := r.Perm(total)
	for _, i := range order {
		if len(holes) >= target {
			break
		}
		p := domain.Position{X: i % cols, Y: i / cols}
		holes[p] = true
		if !gridConnected(rows, cols, holes) {
			delete(holes, p)
		}
	}
	return holes
}

func gridConnected(rows, cols int, holes map[domain.Position]bool) bool {
	var start *domain.Position
	alive := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := domain.Position{X: x, Y: y}
			if holes[p] {
				continue
			}
			alive++
			if start == nil {
				start = &p
			}
		}
	}
	if start == nil {
		return false
	}
	seen := map[domain.Position]bool{*start: true}
	queue := []domain.Position{*start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range domain.Directions {
			n := cur.Step(d)
			if n.X < 0 || n.Y < 0 || n.X >= cols || n.Y >= rows || holes[n] || seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return len(seen) == alive
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union 合并两个集合，已经在同一集合时返回 false。
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}
