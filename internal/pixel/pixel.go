// Package pixel owns the display and keyboard collaborators: a pixelgl
// window, the hex keypad mapping, and the renderer that turns the VM's
// framebuffer into filled rectangles. Drawing is done in XOR mode by
// the VM itself; this package only presents the resulting pixels.
package pixel

import (
	"fmt"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/bradford-hamilton/gr8/internal/chip8"
)

const screenWidth float64 = 1024
const screenHeight float64 = 768

// Window embeds a pixelgl window and holds the keymapping of hex keypad
// index -> pixelgl.Button.
type Window struct {
	*pixelgl.Window
	KeyMap map[byte]pixelgl.Button
}

// NewWindow handles creating a new pixelgl window config, initializing the
// window, and returning a pointer to a Window with an embedded *pixelgl.Window
func NewWindow() (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  "gr8",
		Bounds: pixel.R(0, 0, screenWidth, screenHeight),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	// Left half of a qwerty keyboard, the usual layout for the 4x4 keypad.
	km := map[byte]pixelgl.Button{
		0x1: pixelgl.Key1, 0x2: pixelgl.Key2,
		0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
		0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW,
		0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
		0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS,
		0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
		0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX,
		0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
	}
	return &Window{
		Window: w,
		KeyMap: km,
	}, nil
}

// DrawGraphics renders the 64x32 framebuffer, scaling each set pixel to a
// filled rectangle. The VM's row 0 is the top of the screen, pixelgl's
// origin is bottom-left, hence the vertical flip.
func (w *Window) DrawGraphics(gfx [chip8.DisplayWidth * chip8.DisplayHeight]byte) {
	w.Clear(colornames.Black)
	imDraw := imdraw.New(nil)
	imDraw.Color = pixel.RGB(1, 1, 1)
	width := screenWidth / chip8.DisplayWidth
	height := screenHeight / chip8.DisplayHeight

	for i := 0; i < chip8.DisplayWidth; i++ {
		for j := 0; j < chip8.DisplayHeight; j++ {
			if gfx[(chip8.DisplayHeight-1-j)*chip8.DisplayWidth+i] == 1 {
				imDraw.Push(pixel.V(width*float64(i), height*float64(j)))
				imDraw.Push(pixel.V(width*float64(i)+width, height*float64(j)+height))
				imDraw.Rectangle(0)
			}
		}
	}

	imDraw.Draw(w)
	w.Update()
}
