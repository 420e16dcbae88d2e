// Package canvas renders a workspace snapshot as a text diagram for
// terminal output.
package canvas

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"

	"github.com/canopyreview/canopy/workspace"
)

const (
	// DefaultWidth is used when the terminal width cannot be detected.
	DefaultWidth = 80

	minRenderWidth  = 20
	minRenderHeight = 8

	// Terminal cells are roughly twice as tall as wide.
	cellAspect = 0.45
)

var (
	frameBorder = lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	frameStyle  = lipgloss.NewStyle().Border(frameBorder).BorderForeground(lipgloss.Color("238"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// DetectWidth returns the terminal width, or DefaultWidth when stdout is
// not a terminal.
func DetectWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minRenderWidth {
		return DefaultWidth
	}
	return width
}

// Renderer draws workspace snapshots at a fixed character width.
type Renderer struct {
	// Width is the total output width in characters, frame included.
	Width int
}

// Render returns a diagram of the snapshot's canvas followed by a legend
// listing each document.
func (r Renderer) Render(snap workspace.Snapshot) string {
	width := r.Width
	if width < minRenderWidth {
		width = DefaultWidth
	}

	// Interior size, leaving room for the frame.
	cols := width - 2
	rows := int(math.Round(float64(cols) * (snap.Workspace.Size.Height / snap.Workspace.Size.Width) * cellAspect))
	if rows < minRenderHeight {
		rows = minRenderHeight
	}

	grid := newGrid(cols, rows)
	sx := float64(cols) / snap.Workspace.Size.Width
	sy := float64(rows) / snap.Workspace.Size.Height

	docs := append([]workspace.Document(nil), snap.Documents...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].ZIndex < docs[j].ZIndex })

	for i, doc := range docs {
		if !doc.Visible {
			continue
		}
		grid.drawDocument(doc, i+1, sx, sy)
	}

	var out strings.Builder
	out.WriteString(titleStyle.Render(header(snap)))
	out.WriteByte('\n')
	out.WriteString(frameStyle.Render(grid.String()))
	out.WriteByte('\n')
	out.WriteString(legend(snap))
	return out.String()
}

func header(snap workspace.Snapshot) string {
	name := snap.Workspace.Name
	if name == "" {
		name = snap.Workspace.ID
	}
	return fmt.Sprintf("%s  [%s]  %.0fx%.0f",
		name, snap.Workspace.Mode, snap.Workspace.Size.Width, snap.Workspace.Size.Height)
}

func legend(snap workspace.Snapshot) string {
	var out strings.Builder
	for i, doc := range snap.Documents {
		line := fmt.Sprintf("%d. %s  (%.0f,%.0f) %.0fx%.0f z=%d",
			i+1, doc.Title, doc.Position.X, doc.Position.Y,
			doc.Dimensions.Width, doc.Dimensions.Height, doc.ZIndex)
		switch {
		case doc.State == workspace.DocumentError:
			line = errorStyle.Render(line + "  error: " + doc.ErrorMessage)
		case doc.Active:
			line = activeStyle.Render(line + "  active")
		case !doc.Visible:
			line = mutedStyle.Render(line + "  hidden")
		default:
			line = mutedStyle.Render(line)
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

type grid struct {
	cols  int
	rows  int
	cells [][]rune
}

func newGrid(cols, rows int) *grid {
	cells := make([][]rune, rows)
	for y := range cells {
		row := make([]rune, cols)
		for x := range row {
			row[x] = ' '
		}
		cells[y] = row
	}
	return &grid{cols: cols, rows: rows, cells: cells}
}

// drawDocument paints one document box onto the grid. The active document
// gets a heavier border so it stands out without color.
func (g *grid) drawDocument(doc workspace.Document, ordinal int, sx, sy float64) {
	x0 := clampInt(int(math.Round(doc.Position.X*sx)), 0, g.cols-1)
	y0 := clampInt(int(math.Round(doc.Position.Y*sy)), 0, g.rows-1)
	x1 := clampInt(int(math.Round((doc.Position.X+doc.Dimensions.Width)*sx))-1, x0+1, g.cols-1)
	y1 := clampInt(int(math.Round((doc.Position.Y+doc.Dimensions.Height)*sy))-1, y0+1, g.rows-1)

	horizontal, vertical := '-', '|'
	if doc.Active {
		horizontal, vertical = '=', '#'
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case (y == y0 || y == y1) && (x == x0 || x == x1):
				g.cells[y][x] = '+'
			case y == y0 || y == y1:
				g.cells[y][x] = horizontal
			case x == x0 || x == x1:
				g.cells[y][x] = vertical
			default:
				g.cells[y][x] = ' '
			}
		}
	}

	g.drawLabel(doc, ordinal, x0, y0, x1)
}

func (g *grid) drawLabel(doc workspace.Document, ordinal int, x0, y0, x1 int) {
	room := x1 - x0 - 1
	if room < 1 {
		return
	}

	label := fmt.Sprintf("%d:%s", ordinal, doc.Title)
	label = truncate.StringWithTail(label, uint(room), "~")
	x := x0 + 1
	for _, r := range label {
		if x > x1-1 {
			break
		}
		g.cells[y0][x] = r
		x++
	}
}

func (g *grid) String() string {
	lines := make([]string, g.rows)
	for y, row := range g.cells {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
