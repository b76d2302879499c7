// Command gbcore-term is a minimal terminal frontend for gbcore: it loads a
// ROM, runs the machine at the native frame rate, and renders the
// framebuffer as shaded block characters. It is a host, not part of the
// core (spec.md 1's "rendering... is explicitly external to the core").
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"
	"github.com/pixelpocket/gbcore"
	"github.com/pixelpocket/gbcore/joypad"
	"github.com/pixelpocket/gbcore/model"
)

const (
	width  = 160
	height = 144

	// Terminal characters are taller than wide; scale the width more to
	// keep the on-screen aspect ratio close to correct.
	scaleX = 2
	scaleY = 1

	frameTime = time.Second / 60
)

// shadeChars goes darkest to lightest, indexed by a 2-bit grayscale value.
var shadeChars = []rune{'█', '▓', '▒', '░'}

// keymap binds letter keys to the A and B buttons; arrowKeymap below covers
// the d-pad. Start and Select are not bound.
var keymap = map[rune]joypad.Key{
	'z': joypad.B,
	'x': joypad.A,
}

var arrowKeymap = map[tcell.Key]joypad.Key{
	tcell.KeyUp:    joypad.Up,
	tcell.KeyDown:  joypad.Down,
	tcell.KeyLeft:  joypad.Left,
	tcell.KeyRight: joypad.Right,
}

type terminalRenderer struct {
	screen  tcell.Screen
	machine *gbcore.Machine
	running bool
}

func newTerminalRenderer(m *gbcore.Machine) (*terminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	return &terminalRenderer{screen: screen, machine: m, running: true}, nil
}

func (t *terminalRenderer) Run() error {
	defer func() {
		slog.Info("finishing terminal")
		t.screen.Fini()
	}()

	t.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for t.running {
		select {
		case <-ticker.C:
			t.machine.RunFrame()
			t.render()
			t.screen.Show()
		case <-signals:
			t.running = false
			slog.Info("received signal to stop")
			return nil
		}
	}

	return nil
}

func (t *terminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				t.running = false
				return
			}
			if gbKey, ok := arrowKeymap[ev.Key()]; ok {
				t.machine.SetKeyState(gbKey, true)
				break
			}
			if gbKey, ok := keymap[ev.Rune()]; ok {
				t.machine.SetKeyState(gbKey, true)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *terminalRenderer) render() {
	fb := t.machine.GetCurrentFrame()

	t.screen.Clear()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := fb.GetPixel(uint(x), uint(y))
			shade := 3 - (pixel>>24)/64
			if shade > 3 {
				shade = 3
			}

			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			char := shadeChars[shade]

			screenX := x * scaleX
			screenY := y * scaleY
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "gbcore-term"
	app.Description = "A terminal frontend for the gbcore emulation engine"
	app.Usage = "gbcore-term [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "cgb",
			Usage: "Run in Game Boy Color mode",
		},
		cli.StringFlag{
			Name:  "color-correction",
			Usage: "CGB color correction: disabled, curves, modern, or preserve-brightness",
			Value: "disabled",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	cfg := gbcore.DefaultConfig()
	if c.Bool("cgb") {
		cfg.Model = model.CGB
	}
	switch c.String("color-correction") {
	case "curves":
		cfg.ColorCorrection = gbcore.ColorCorrectionCorrectCurves
	case "modern":
		cfg.ColorCorrection = gbcore.ColorCorrectionModern
	case "preserve-brightness":
		cfg.ColorCorrection = gbcore.ColorCorrectionPreserveBrightness
	}

	m, err := gbcore.New(&cfg)
	if err != nil {
		return err
	}
	if err := m.LoadROMFile(romPath); err != nil {
		return err
	}

	renderer, err := newTerminalRenderer(m)
	if err != nil {
		return err
	}

	return renderer.Run()
}
