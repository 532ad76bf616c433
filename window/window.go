// Package window presents an osd framebuffer in a desktop window using
// Ebiten. The caller keeps drawing into the framebuffer's pixel buffer
// between frames; the window uploads the buffer every frame.
package window

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/osd"
)

// ErrStopped is returned when the loop is terminated via context
// cancellation rather than by closing the window.
var ErrStopped = errors.New("window: stopped")

// EventKind identifies a pointer event delivered to the event callback.
type EventKind int

const (
	// EventPointerDown fires when the primary button is pressed.
	EventPointerDown EventKind = iota
	// EventPointerUp fires when the primary button is released.
	EventPointerUp
	// EventPointerMove fires when the cursor moves while pressed.
	EventPointerMove
)

// Config describes the window.
type Config struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// RenderFunc is called once per frame before the framebuffer is
// uploaded. Returning a non-nil error stops the loop and is returned
// from Run.
type RenderFunc func(fb *osd.Framebuffer) error

// EventFunc receives pointer events in framebuffer coordinates. May be
// nil.
type EventFunc func(kind EventKind, x, y int)

type game struct {
	ctx    context.Context
	fb     *osd.Framebuffer
	render RenderFunc
	event  EventFunc

	img     *ebiten.Image
	width   int
	height  int
	pressed bool
	lastX   int
	lastY   int
	err     error
}

func (g *game) Update() error {
	if g.ctx != nil {
		select {
		case <-g.ctx.Done():
			return ErrStopped
		default:
		}
	}
	if g.render != nil {
		if err := g.render(g.fb); err != nil {
			g.err = err
			return err
		}
	}
	g.dispatchPointer()
	return nil
}

func (g *game) dispatchPointer() {
	if g.event == nil {
		return
	}
	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pressed = true
		g.lastX, g.lastY = x, y
		g.event(EventPointerDown, x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.pressed = false
		g.event(EventPointerUp, x, y)
	case g.pressed && (x != g.lastX || y != g.lastY):
		g.lastX, g.lastY = x, y
		g.event(EventPointerMove, x, y)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(g.width, g.height)
	}
	g.img.WritePixels(g.fb.Pixels())
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens a window sized to the framebuffer and drives the frame
// loop until the window closes, the context is cancelled, or the
// render callback fails. It must be called from the main goroutine and
// blocks until the loop ends.
func Run(ctx context.Context, cfg Config, fb *osd.Framebuffer, render RenderFunc, event EventFunc) error {
	if fb == nil {
		return errors.New("window: nil framebuffer")
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		width, height = fb.Width(), fb.Height()
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(cfg.Title)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	g := &game{
		ctx:    ctx,
		fb:     fb,
		render: render,
		event:  event,
		width:  fb.Width(),
		height: fb.Height(),
	}
	err := ebiten.RunGame(g)
	if err != nil && g.err != nil {
		err = g.err
	}
	return err
}
