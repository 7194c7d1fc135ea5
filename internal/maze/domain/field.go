package domain

import "fmt"

// Field 是迷宫地图。墙以竞技场方式存放：每条边只存一份，
// 相邻格子通过下标共享，因此从一侧修改的墙在另一侧立即可见。
type Field struct {
	rows   int
	cols   int
	cells  []Cell
	grid   []int // rows*cols，值为 cell id，-1 表示空洞
	walls  []Wall
	rivers [][]int
	exit   int
}

// NewField 构建 rows*cols 的地面格子，holes 中的位置不生成格子。
// 内部边为空墙，与边界或空洞相邻的边为外墙。
func NewField(rows, cols int, holes map[Position]bool) *Field {
	f := &Field{
		rows: rows,
		cols: cols,
		grid: make([]int, rows*cols),
		exit: -1,
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pos := Position{X: x, Y: y}
			if holes[pos] {
				f.grid[y*cols+x] = -1
				continue
			}
			id := len(f.cells)
			f.cells = append(f.cells, Cell{
				ID:    id,
				Pos:   pos,
				Type:  CellGround,
				Walls: [4]int{-1, -1, -1, -1},
				River: -1,
			})
			f.grid[y*cols+x] = id
		}
	}
	for id := range f.cells {
		for _, d := range Directions {
			if f.cells[id].Walls[d] >= 0 {
				continue
			}
			nid, _ := f.CellAt(f.cells[id].Pos.Step(d))
			wt := WallEmpty
			if nid < 0 {
				wt = WallOuter
			}
			wid := len(f.walls)
			f.walls = append(f.walls, Wall{Type: wt, A: id, B: nid})
			f.cells[id].Walls[d] = wid
			if nid >= 0 {
				f.cells[nid].Walls[d.Opposite()] = wid
			}
		}
	}
	return f
}

func (f *Field) Rows() int { return f.rows }
func (f *Field) Cols() int { return f.cols }

// Len 包含出口格。
func (f *Field) Len() int { return len(f.cells) }

// CellAt 返回网格内格子的 id，网格外、空洞返回 (-1, false)。出口格不在网格内。
func (f *Field) CellAt(p Position) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= f.cols || p.Y >= f.rows {
		return -1, false
	}
	id := f.grid[p.Y*f.cols+p.X]
	return id, id >= 0
}

func (f *Field) Cell(id int) (Cell, bool) {
	if id < 0 || id >= len(f.cells) {
		return Cell{}, false
	}
	return f.cells[id], true
}

func (f *Field) MustCell(id int) Cell {
	c, ok := f.Cell(id)
	if !ok {
		panic(fmt.Sprintf("cell %d out of range", id))
	}
	return c
}

// GridCells 按行优先返回网格内全部格子 id（不含出口格）。
func (f *Field) GridCells() []int {
	out := make([]int, 0, len(f.cells))
	for _, id := range f.grid {
		if id >= 0 {
			out = append(out, id)
		}
	}
	return out
}

func (f *Field) WallType(cellID int, d Direction) WallType {
	return f.walls[f.cells[cellID].Walls[d]].Type
}

// SetWall 修改共享墙，两侧同时生效。
func (f *Field) SetWall(cellID int, d Direction, t WallType) {
	f.walls[f.cells[cellID].Walls[d]].Type = t
}

// Neighbour 返回墙另一侧的格子 id（不看墙是否可通过）。
func (f *Field) Neighbour(cellID int, d Direction) (int, bool) {
	other := f.walls[f.cells[cellID].Walls[d]].other(cellID)
	return other, other >= 0
}

// Open 两格之间是否存在可通行的公共墙。
func (f *Field) Open(a, b int) bool {
	for _, d := range Directions {
		if n, ok := f.Neighbour(a, d); ok && n == b {
			return f.WallType(a, d).Passable()
		}
	}
	return false
}

func (f *Field) SetType(cellID int, t CellType) {
	f.cells[cellID].Type = t
}

// AddRiver 按源头到河口的顺序登记一条河，最后一格为河口。
func (f *Field) AddRiver(path []int) int {
	idx := len(f.rivers)
	river := append([]int(nil), path...)
	f.rivers = append(f.rivers, river)
	for i, id := range river {
		f.cells[id].Type = CellRiver
		f.cells[id].River = idx
		f.cells[id].RiverIdx = i
	}
	f.cells[river[len(river)-1]].Type = CellRiverMouth
	return idx
}

func (f *Field) Rivers() [][]int {
	out := make([][]int, len(f.rivers))
	for i, r := range f.rivers {
		out[i] = append([]int(nil), r...)
	}
	return out
}

// RiverAdvance 沿河向下游移动 steps 格，到河口为止；非河流格原样返回。
func (f *Field) RiverAdvance(cellID, steps int) int {
	c := f.cells[cellID]
	if c.River < 0 || steps <= 0 {
		return cellID
	}
	river := f.rivers[c.River]
	idx := min(c.RiverIdx+steps, len(river)-1)
	return river[idx]
}

// SameRiverNeighbours a、b 在同一条河上且相邻。
func (f *Field) SameRiverNeighbours(a, b int) bool {
	ca, cb := f.cells[a], f.cells[b]
	if ca.River < 0 || ca.River != cb.River {
		return false
	}
	diff := ca.RiverIdx - cb.RiverIdx
	return diff == 1 || diff == -1
}

// RiverDir 河流格指向下游的方向，河口为 "mouth"，非河流为空串。
func (f *Field) RiverDir(cellID int) string {
	c := f.cells[cellID]
	if c.River < 0 {
		return ""
	}
	river := f.rivers[c.River]
	if c.RiverIdx == len(river)-1 {
		return "mouth"
	}
	next := f.cells[river[c.RiverIdx+1]]
	for _, d := range Directions {
		if c.Pos.Step(d) == next.Pos {
			return d.String()
		}
	}
	return ""
}

// AttachExit 把 cellID 在 d 方向上的外墙改为出口墙，并在墙外创建出口格。
func (f *Field) AttachExit(cellID int, d Direction) (int, error) {
	if f.exit >= 0 {
		return -1, fmt.Errorf("exit already attached at cell %d", f.exit)
	}
	w := f.walls[f.cells[cellID].Walls[d]]
	if w.Type != WallOuter || w.other(cellID) >= 0 {
		return -1, fmt.Errorf("cell %d has no outer wall on %s", cellID, d)
	}
	exitID := len(f.cells)
	exit := Cell{
		ID:    exitID,
		Pos:   f.cells[cellID].Pos.Step(d),
		Type:  CellExit,
		Walls: [4]int{-1, -1, -1, -1},
		River: -1,
	}
	wid := f.cells[cellID].Walls[d]
	f.walls[wid] = Wall{Type: WallExit, A: cellID, B: exitID}
	exit.Walls[d.Opposite()] = wid
	for _, od := range Directions {
		if exit.Walls[od] >= 0 {
			continue
		}
		exit.Walls[od] = len(f.walls)
		f.walls = append(f.walls, Wall{Type: WallOuter, A: exitID, B: -1})
	}
	f.cells = append(f.cells, exit)
	f.exit = exitID
	return exitID, nil
}

// Exit 返回出口格 id，未设置时为 -1。
func (f *Field) Exit() int {
	return f.exit
}

// Clone 深拷贝可变部分（格子与墙）。河流登记在生成后不再变化，直接共享。
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	return &Field{
		rows:   f.rows,
		cols:   f.cols,
		cells:  append([]Cell(nil), f.cells...),
		grid:   append([]int(nil), f.grid...),
		walls:  append([]Wall(nil), f.walls...),
		rivers: f.rivers,
		exit:   f.exit,
	}
}

func (f *Field) CellView(id int) CellView {
	c := f.cells[id]
	return CellView{
		X:    c.Pos.X,
		Y:    c.Pos.Y,
		Type: c.Type,
		Walls: WallsView{
			Top:    f.WallType(id, Top),
			Right:  f.WallType(id, Right),
			Bottom: f.WallType(id, Bottom),
			Left:   f.WallType(id, Left),
		},
		RiverDir: f.RiverDir(id),
	}
}

// Views 按行优先输出网格格子，出口格放在最后。
func (f *Field) Views() []CellView {
	out := make([]CellView, 0, len(f.cells))
	for _, id := range f.GridCells() {
		out = append(out, f.CellView(id))
	}
	if f.exit >= 0 {
		out = append(out, f.CellView(f.exit))
	}
	return out
}

type FieldView struct {
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells []CellView `json:"cells"`
}

func (f *Field) View() FieldView {
	return FieldView{Rows: f.rows, Cols: f.cols, Cells: f.Views()}
}
