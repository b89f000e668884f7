package geometry

// Corner colors for the unit box.
var (
	colorWhite   = [4]float32{1, 1, 1, 1}
	colorBlack   = [4]float32{0, 0, 0, 1}
	colorRed     = [4]float32{1, 0, 0, 1}
	colorGreen   = [4]float32{0, 1, 0, 1}
	colorBlue    = [4]float32{0, 0, 1, 1}
	colorYellow  = [4]float32{1, 1, 0, 1}
	colorCyan    = [4]float32{0, 1, 1, 1}
	colorMagenta = [4]float32{1, 0, 1, 1}
)

// Box returns a 2x2x2 box centered at the origin, one distinctly colored
// vertex per corner, faces wound clockwise for a left-handed view.
func Box() Geometry {
	return Geometry{
		Vertices: []Vertex{
			{Position: [3]float32{-1, -1, -1}, Color: colorWhite},
			{Position: [3]float32{-1, +1, -1}, Color: colorBlack},
			{Position: [3]float32{+1, +1, -1}, Color: colorRed},
			{Position: [3]float32{+1, -1, -1}, Color: colorGreen},
			{Position: [3]float32{-1, -1, +1}, Color: colorBlue},
			{Position: [3]float32{-1, +1, +1}, Color: colorYellow},
			{Position: [3]float32{+1, +1, +1}, Color: colorCyan},
			{Position: [3]float32{+1, -1, +1}, Color: colorMagenta},
		},
		Indices: []uint16{
			// front
			0, 1, 2,
			0, 2, 3,
			// back
			4, 6, 5,
			4, 7, 6,
			// left
			4, 5, 1,
			4, 1, 0,
			// right
			3, 2, 6,
			3, 6, 7,
			// top
			1, 5, 6,
			1, 6, 2,
			// bottom
			4, 0, 3,
			4, 3, 7,
		},
	}
}
