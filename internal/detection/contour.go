package detection

import (
	"image"
	"math"
)

// Contour is an ordered, closed sequence of border pixel centers.
//
// Straight horizontal, vertical and diagonal runs are compressed to their end
// points, which changes neither the enclosed area nor the perimeter.
type Contour []image.Point

// RetrievalMode selects which borders FindContours returns.
type RetrievalMode int

const (
	// RetrieveTree returns every border: outer borders and hole borders at
	// any nesting depth.
	RetrieveTree RetrievalMode = iota

	// RetrieveExternal returns only outer borders that are not enclosed by
	// any other shape.
	RetrieveExternal
)

// ContourNode is one border of a binary mask together with its place in the
// nesting hierarchy.
type ContourNode struct {
	Points Contour

	// Hole is true for the inner border of a shape (the edge of a hole).
	Hole bool

	// Parent indexes the enclosing border in the same slice, or -1 when the
	// border is enclosed only by the image frame.
	Parent int
}

// chainDeltas are the 8-neighbor steps in chain-code order: E, NE, N, NW, W,
// SW, S, SE. Increasing codes turn counterclockwise on screen.
var chainDeltas = [8]image.Point{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

// FindContours extracts borders of the non-zero pixels of mask.
//
// Pixels on the outermost row and column of the mask are treated as
// background, so every shape is closed and borders never leave the image.
// Connectivity is 8-way for foreground pixels.
func FindContours(mask *image.Gray, mode RetrievalMode) []Contour {
	nodes := FindContourTree(mask)
	contours := make([]Contour, 0, len(nodes))
	for _, n := range nodes {
		if mode == RetrieveExternal && (n.Hole || n.Parent != -1) {
			continue
		}
		contours = append(contours, n.Points)
	}
	return contours
}

// FindContourTree traces every border of mask using Suzuki–Abe border
// following and records the outer/hole nesting of the borders.
//
// Borders are returned in raster order of their starting pixel.
func FindContourTree(mask *image.Gray) []ContourNode {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 3 || height < 3 {
		return nil
	}

	t := &borderTracer{
		labels: make([]int32, width*height),
		width:  width,
		origin: bounds.Min,
	}
	for y := 1; y < height-1; y++ {
		row := mask.Pix[mask.PixOffset(bounds.Min.X, bounds.Min.Y+y):][:width]
		for x := 1; x < width-1; x++ {
			if row[x] != 0 {
				t.labels[y*width+x] = 1
			}
		}
	}

	nodes := make([]ContourNode, 0)
	// Border number 1 is the image frame; node k carries border number k+2.
	nbd := int32(1)

	for y := 1; y < height-1; y++ {
		lnbd := int32(1)
		for x := 1; x < width-1; x++ {
			idx := y*width + x
			v := t.labels[idx]
			if v == 0 {
				continue
			}

			var hole bool
			var from int
			switch {
			case v == 1 && t.labels[idx-1] == 0:
				from = 4
			case v >= 1 && t.labels[idx+1] == 0:
				hole = true
				from = 0
				if v > 1 {
					lnbd = v
				}
			default:
				if v != 1 {
					lnbd = abs32(v)
				}
				continue
			}

			nbd++
			parent := borderParent(nodes, hole, lnbd)
			points := t.follow(idx, from, nbd)
			nodes = append(nodes, ContourNode{Points: points, Hole: hole, Parent: parent})

			if v := t.labels[idx]; v != 1 {
				lnbd = abs32(v)
			}
		}
	}
	return nodes
}

// borderParent decides the parent of a new border from the last border met
// on the current scan line.
func borderParent(nodes []ContourNode, hole bool, lnbd int32) int {
	lastHole := true
	lastParent := -1
	lastIdx := -1
	if lnbd > 1 {
		lastIdx = int(lnbd - 2)
		lastHole = nodes[lastIdx].Hole
		lastParent = nodes[lastIdx].Parent
	}
	if hole == lastHole {
		return lastParent
	}
	return lastIdx
}

type borderTracer struct {
	labels []int32
	width  int
	origin image.Point
}

func (t *borderTracer) step(idx, code int) int {
	d := chainDeltas[code&7]
	return idx + d.Y*t.width + d.X
}

func (t *borderTracer) point(idx int) image.Point {
	return image.Point{X: idx%t.width + t.origin.X, Y: idx/t.width + t.origin.Y}
}

// follow traces one border starting at idx. from is the chain code pointing
// at the background neighbor that revealed the border.
func (t *borderTracer) follow(start, from int, nbd int32) Contour {
	// Look clockwise for the first foreground neighbor.
	s := from
	found := false
	for n := 0; n < 8; n++ {
		s = (s + 7) & 7
		if t.labels[t.step(start, s)] != 0 {
			found = true
			break
		}
	}
	if !found {
		t.labels[start] = -nbd
		return Contour{t.point(start)}
	}

	last := t.step(start, s)
	cur := start
	prev := s ^ 4
	contour := make(Contour, 0, 16)

	for {
		end := s
		next := cur
		for n := 0; n < 8; n++ {
			s++
			next = t.step(cur, s)
			if t.labels[next] != 0 {
				break
			}
		}
		s &= 7

		// The east neighbor was passed over as background: this pixel is a
		// right-hand end of the border on its row.
		if s >= 1 && s-1 < end {
			t.labels[cur] = -nbd
		} else if t.labels[cur] == 1 {
			t.labels[cur] = nbd
		}

		if s != prev {
			contour = append(contour, t.point(cur))
			prev = s
		}

		if next == start && cur == last {
			break
		}
		cur = next
		s = (s + 4) & 7
	}
	return contour
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// ContourArea returns the area enclosed by the closed polygon through the
// contour points (shoelace formula, orientation ignored).
func ContourArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	sum := 0
	prev := c[len(c)-1]
	for _, p := range c {
		sum += prev.X*p.Y - p.X*prev.Y
		prev = p
	}
	return math.Abs(float64(sum)) / 2
}

// ArcLength returns the length of the polyline through the contour points.
// When closed is true the segment from the last point back to the first is
// included.
func ArcLength(c Contour, closed bool) float64 {
	if len(c) < 2 {
		return 0
	}
	length := 0.0
	for i := 1; i < len(c); i++ {
		length += dist(c[i-1], c[i])
	}
	if closed {
		length += dist(c[len(c)-1], c[0])
	}
	return length
}

func dist(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// BoundingRect returns the smallest upright rectangle containing every
// contour point. Width and height count pixels, so a single point yields a
// 1×1 box.
func BoundingRect(c Contour) BoundingBox {
	if len(c) == 0 {
		return BoundingBox{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := c[0].X, c[0].Y
	for _, p := range c[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
