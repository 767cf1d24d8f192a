// Package hal is the SDL2 presentation layer: window, keypad mapping and
// the beeper. It consumes the core's framebuffer and sound state and feeds
// key events back through a callback; it never touches core state directly.
package hal

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/ananin/chip8vm/internal/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512
)

type HAL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	audio    sdl.AudioDeviceID
	tone     []byte
	beeping  bool
	hasAudio bool
}

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

func New() (*HAL, error) {
	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	window, err := sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, WindowWidth, WindowHeight, sdl.WINDOW_SHOWN|sdl.WINDOW_UTILITY)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window")
	window.Show()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	err = renderer.SetLogicalSize(WindowWidth, WindowHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, chip8.ScreenWidth, chip8.ScreenHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	h := &HAL{
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, chip8.ScreenWidth*chip8.ScreenHeight),
		backBufferPitch: int(chip8.ScreenWidth) * int(unsafe.Sizeof(uint32(0))),
	}

	// A machine without audio still runs, just silently.
	if err := h.initAudio(); err != nil {
		slog.Error("hal: no audio device, beeper disabled", "err", err)
	}

	return h, nil
}

func (hal *HAL) initAudio() error {
	const (
		sampleRate = 44100
		toneHz     = 440
	)

	spec := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S8,
		Channels: 1,
		Samples:  2048,
	}

	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return fmt.Errorf("failed to open sdl audio device: %w", err)
	}
	slog.Debug("hal: open audio device")

	// One second of square wave, re-queued while the beeper is on.
	hal.tone = make([]byte, sampleRate)
	halfPeriod := sampleRate / toneHz / 2
	for i := range hal.tone {
		if (i/halfPeriod)%2 == 0 {
			hal.tone[i] = 0x20
		} else {
			hal.tone[i] = 0xE0
		}
	}

	hal.audio = dev
	hal.hasAudio = true
	return nil
}

func (hal *HAL) Shutdown() {
	if hal.hasAudio {
		sdl.CloseAudioDevice(hal.audio)
	}

	if err := hal.texture.Destroy(); err != nil {
		slog.Error("failed to destroy sdl texture", "err", err)
	}

	if err := hal.renderer.Destroy(); err != nil {
		slog.Error("failed to destroy sdl renderer", "err", err)
	}

	if err := hal.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

// ReadInput drains pending SDL events, forwarding mapped keypad changes to
// setKey. It returns ErrQuit when the window closes and ErrReboot on
// Backspace.
func (hal *HAL) ReadInput(setKey func(key uint8, down bool)) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return ErrQuit

		case sdl.KEYDOWN:
			ke := e.(*sdl.KeyboardEvent)
			if ke.Keysym.Scancode == sdl.SCANCODE_BACKSPACE {
				return ErrReboot
			}
			if key, ok := keyMap(ke); ok {
				setKey(key, true)
			}

		case sdl.KEYUP:
			if key, ok := keyMap(e.(*sdl.KeyboardEvent)); ok {
				setKey(key, false)
			}
		}
	}

	return nil
}

func keyMap(e *sdl.KeyboardEvent) (uint8, bool) {
	// Physical                Logical
	// ================        =================
	// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
	// | q | w | e | r |       | 4 | 5 | 6 | D |
	// | a | s | d | e |  <=>  | 7 | 8 | 9 | E |
	// | z | x | c | v |       | A | 0 | B | F |
	// ================        =================

	switch e.Keysym.Scancode {
	case sdl.SCANCODE_X:
		return 0x0, true
	case sdl.SCANCODE_1:
		return 0x1, true
	case sdl.SCANCODE_2:
		return 0x2, true
	case sdl.SCANCODE_3:
		return 0x3, true
	case sdl.SCANCODE_Q:
		return 0x4, true
	case sdl.SCANCODE_W:
		return 0x5, true
	case sdl.SCANCODE_E:
		return 0x6, true
	case sdl.SCANCODE_A:
		return 0x7, true
	case sdl.SCANCODE_S:
		return 0x8, true
	case sdl.SCANCODE_D:
		return 0x9, true
	case sdl.SCANCODE_Z:
		return 0xA, true
	case sdl.SCANCODE_C:
		return 0xB, true
	case sdl.SCANCODE_4:
		return 0xC, true
	case sdl.SCANCODE_R:
		return 0xD, true
	case sdl.SCANCODE_F:
		return 0xE, true
	case sdl.SCANCODE_V:
		return 0xF, true
	default:
		return 0, false
	}
}

// Draw uploads the framebuffer (one byte per pixel, row-major) to the
// window.
func (hal *HAL) Draw(gfx []uint8) error {
	const (
		bgColor = uint32(0x000000)
		fgColor = uint32(0xbea700)
	)

	for y := 0; y < chip8.ScreenHeight; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			i := x + y*chip8.ScreenWidth

			color := bgColor
			if gfx[i] != 0 {
				color = fgColor
			}

			hal.backBuffer[i] = color
		}
	}

	backBufferPtr := unsafe.Pointer(&hal.backBuffer[0])
	if err := hal.texture.Update(nil, backBufferPtr, hal.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := hal.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := hal.renderer.Copy(hal.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	hal.renderer.Present()
	hal.window.SetAlwaysOnTop(true)
	return nil
}

// SetBeep switches the beeper on or off to track the core's sound state.
func (hal *HAL) SetBeep(on bool) error {
	if !hal.hasAudio {
		return nil
	}

	if on {
		// Keep the queue topped up while the tone plays.
		if sdl.GetQueuedAudioSize(hal.audio) < uint32(len(hal.tone)/2) {
			if err := sdl.QueueAudio(hal.audio, hal.tone); err != nil {
				return fmt.Errorf("failed to queue sdl audio: %w", err)
			}
		}
		if !hal.beeping {
			sdl.PauseAudioDevice(hal.audio, false)
			hal.beeping = true
		}
		return nil
	}

	if hal.beeping {
		sdl.PauseAudioDevice(hal.audio, true)
		sdl.ClearQueuedAudio(hal.audio)
		hal.beeping = false
	}
	return nil
}
