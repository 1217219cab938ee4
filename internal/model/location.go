package model

// Location — координаты юнита в подземелье.
// Value type, передаётся по значению (immutable).
// The combat core only reads locations supplied by the positioning system.
type Location struct {
	X int32
	Y int32
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(x, y int32) Location {
	return Location{X: x, Y: y}
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (l Location) DistanceSquared(other Location) int64 {
	dx := int64(l.X - other.X)
	dy := int64(l.Y - other.Y)
	return dx*dx + dy*dy
}

// Chebyshev returns the grid distance (king moves) between two tiles.
func (l Location) Chebyshev(other Location) int32 {
	dx := l.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := l.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}
