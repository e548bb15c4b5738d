package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/smasonuk/hemesh"
)

const (
	screenWidth  = 960
	screenHeight = 720

	cameraDistance = 420.0
	focalLength    = 600.0
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

type shape int

const (
	shapeSphere shape = iota
	shapeTerrain
	shapeHull
)

func buildShape(s shape) hemesh.TriMesh {
	switch s {
	case shapeTerrain:
		tm := hemesh.Terrain(16, 16, 20, 40, 7)
		// center the grid on the origin
		for i, p := range tm.Positions {
			tm.Positions[i] = p.Sub(mgl64.Vec3{160, 0, 160})
		}
		return tm
	case shapeHull:
		random := rand.New(rand.NewSource(11))
		points := make([]mgl64.Vec3, 300)
		for i := range points {
			v := mgl64.Vec3{
				random.Float64()*2 - 1,
				random.Float64()*2 - 1,
				random.Float64()*2 - 1,
			}
			points[i] = v.Normalize().Mul(90 + random.Float64()*40)
		}
		tm, err := hemesh.ConvexHull(points)
		if err != nil {
			log.Fatal(err)
		}
		return tm
	default:
		return hemesh.UVSphere(130, 24, 16)
	}
}

type Game struct {
	mesh      *hemesh.HalfEdgeMesh
	shape     shape
	nextID    int
	angleX    float64
	angleY    float64
	wireframe bool

	lastX, lastY int
	dragged      bool
}

func NewGame() *Game {
	g := &Game{}
	g.load(shapeSphere)
	return g
}

func (g *Game) load(s shape) {
	log.Printf("building shape %d...", s)
	m, err := hemesh.NewHalfEdgeMesh(buildShape(s))
	if err != nil {
		log.Fatal(err)
	}
	g.mesh = m
	g.shape = s
	g.nextID = 0
	for id := range m.Vertices() {
		if id >= g.nextID {
			g.nextID = id + 1
		}
	}
	log.Printf("mesh ready: %d vertices, %d half-edges, %d faces",
		len(m.Vertices()), len(m.Edges()), len(m.Faces()))
}

// collapseShortest runs one step of the midpoint policy: contract the
// shortest edge the mesh accepts. The policy lives here, not in the
// library.
func (g *Game) collapseShortest() bool {
	type candidate struct {
		key    hemesh.EdgeKey
		length float64
	}
	candidates := make([]candidate, 0, len(g.mesh.Edges())/2)
	for key, he := range g.mesh.Edges() {
		if key.Src > key.Dst {
			continue
		}
		candidates = append(candidates, candidate{key: key, length: he.Length()})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].length < candidates[j].length
	})

	for _, c := range candidates {
		he, ok := g.mesh.Edges()[c.key]
		if !ok {
			continue
		}
		mid := he.Vertex().Position.Add(he.Flip().Vertex().Position).Mul(0.5)
		if err := g.mesh.Contract(he, hemesh.Vertex{ID: g.nextID, Position: mid}); err != nil {
			continue
		}
		g.nextID++
		return true
	}
	return false
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		g.load(shapeSphere)
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		g.load(shapeTerrain)
	}
	if inpututil.IsKeyJustPressed(ebiten.Key3) {
		g.load(shapeHull)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.load(g.shape)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.wireframe = !g.wireframe
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		for i := 0; i < 10; i++ {
			if !g.collapseShortest() {
				log.Println("no contractible edge left")
				break
			}
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if g.dragged {
			g.angleY += float64(x-g.lastX) * 0.01
			g.angleX += float64(y-g.lastY) * 0.01
		}
		g.lastX, g.lastY = x, y
		g.dragged = true
	} else {
		g.dragged = false
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.angleY -= 0.02
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.angleY += 0.02
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.angleX -= 0.02
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.angleX += 0.02
	}

	return nil
}

type paintFace struct {
	p     [3]mgl64.Vec3
	depth float64
	shade float64
}

func (g *Game) Draw(screen *ebiten.Image) {
	rot := mgl64.Rotate3DX(g.angleX).Mul3(mgl64.Rotate3DY(g.angleY))
	lightVec := mgl64.Vec3{0.577, 0.577, -0.577}

	painted := make([]paintFace, 0, len(g.mesh.Faces()))
	for _, f := range g.mesh.Faces() {
		pf := paintFace{
			p: [3]mgl64.Vec3{
				toCamera(rot, f.V0().Position),
				toCamera(rot, f.V1().Position),
				toCamera(rot, f.V2().Position),
			},
		}
		pf.depth = (pf.p[0].Z() + pf.p[1].Z() + pf.p[2].Z()) / 3

		normal := rot.Mul3x1(f.Normal())
		shade := normal.Dot(lightVec)
		if shade < 0 {
			shade = 0
		}
		pf.shade = 0.2 + 0.8*shade
		painted = append(painted, pf)
	}

	// painter's order: farthest faces first
	sort.Slice(painted, func(i, j int) bool {
		return painted[i].depth > painted[j].depth
	})

	for _, pf := range painted {
		var xp, yp [3]float32
		clipped := false
		for i, p := range pf.p {
			if p.Z() <= 1 {
				clipped = true
				break
			}
			xp[i] = float32((focalLength*p.X())/p.Z() + screenWidth/2)
			yp[i] = float32(-(focalLength*p.Y())/p.Z() + screenHeight/2)
		}
		if clipped {
			continue
		}
		if g.wireframe {
			strokeTriangle(screen, xp, yp, color.RGBA{R: 90, G: 220, B: 140, A: 255})
		} else {
			fillTriangle(screen, xp, yp, shaded(color.RGBA{R: 90, G: 160, B: 220, A: 255}, pf.shade))
		}
	}

	msg := fmt.Sprintf(
		"V %d  E %d  F %d\n[space] collapse 10 edges  [w] wireframe  [r] reset  [1] sphere [2] terrain [3] hull",
		len(g.mesh.Vertices()), len(g.mesh.Edges()), len(g.mesh.Faces()))
	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func toCamera(rot mgl64.Mat3, p mgl64.Vec3) mgl64.Vec3 {
	q := rot.Mul3x1(p)
	return mgl64.Vec3{q.X(), q.Y(), q.Z() + cameraDistance}
}

func shaded(c color.RGBA, intensity float64) color.RGBA {
	scale := func(v uint8) uint8 {
		s := float64(v) * intensity
		if s > 255 {
			s = 255
		}
		return uint8(s)
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

func fillTriangle(screen *ebiten.Image, xp, yp [3]float32, clr color.RGBA) {
	cr := float32(clr.R) / 255.0
	cg := float32(clr.G) / 255.0
	cb := float32(clr.B) / 255.0
	ca := float32(clr.A) / 255.0

	vertices := make([]ebiten.Vertex, 3)
	for i := range vertices {
		vertices[i] = ebiten.Vertex{
			DstX:   xp[i],
			DstY:   yp[i],
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}

	op := &ebiten.DrawTrianglesOptions{}
	screen.DrawTriangles(vertices, []uint16{0, 1, 2}, whiteSub, op)
}

func strokeTriangle(screen *ebiten.Image, xp, yp [3]float32, clr color.RGBA) {
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		vector.StrokeLine(screen, xp[i], yp[i], xp[j], yp[j], 1, clr, true)
	}
}

func main() {
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("hemesh viewer")
	if err := ebiten.RunGame(NewGame()); err != nil {
		log.Fatal(err)
	}
}
