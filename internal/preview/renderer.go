package preview

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/overmap/internal/world"
)

// ErrNilMap reports a preview call without a map.
var ErrNilMap = errors.New("preview: map is required")

// Renderer draws a map's tiles and a status line to a screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the full tile map with the status line underneath.
func (r *Renderer) Render(m *world.MapData) {
	r.screen.Clear()

	tiles := m.TileMap()
	for y, row := range tiles {
		for x, tile := range row {
			r.screen.SetContent(x, y, tile.Rune(), tileStyle(tile))
		}
	}

	status := fmt.Sprintf("map %s  seed %d  rooms %d  corridors %d  [any key exits]",
		m.MapID, m.Seed, len(m.Rooms), len(m.Corridors))
	r.RenderMessage(status, len(tiles)+1)
	r.screen.Show()
}

// RenderMessage displays a message line at the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range msg {
		r.screen.SetContent(i, y, ch, style)
	}
}

// tileStyle returns the style each tile kind is drawn with.
func tileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.TileCorridor:
		return tcell.StyleDefault.Foreground(tcell.ColorTeal)
	case world.TilePlayer:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case world.TileSpawn:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case world.TileResource:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	default:
		return tcell.StyleDefault
	}
}

// Show opens a terminal screen, renders the map, and blocks until a key
// is pressed. Resizes redraw the map.
func Show(m *world.MapData) error {
	if m == nil {
		return ErrNilMap
	}
	screen, err := NewScreen()
	if err != nil {
		return err
	}
	defer screen.Close()

	r := NewRenderer(screen)
	r.Render(m)
	for {
		switch screen.PollEvent().(type) {
		case *tcell.EventKey:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			r.Render(m)
		}
	}
}
