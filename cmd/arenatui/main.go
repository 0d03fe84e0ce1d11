// Command arenatui runs the arena in a terminal. Each cell stands for a
// rectangle of the arena; critters draw as 'o' and the destroyer as '@'.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
)

const frameInterval = 33 * time.Millisecond

var (
	styleCritter   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDestroyer = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

type viewer struct {
	screen tcell.Screen
	game   *game.Game
}

func main() {
	configPath := flag.String("config", "", "Path to a .yaml or .toml config (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and summary")
	logFile := flag.String("log-file", "", "Write JSON logs here (empty = discard, the terminal is in use)")
	snapshotPath := flag.String("snapshot", "", "Start from a saved snapshot_<tick>.json")
	flag.Parse()

	var w io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, nil)))

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(config.Cfg(), game.Options{Seed: *seed, OutputDir: *outputDir}, *snapshotPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts game.Options, snapshotPath string) error {
	g, err := game.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}
	defer g.Close()

	if snapshotPath != "" {
		if err := restore(g, snapshotPath); err != nil {
			return fmt.Errorf("failed to restore snapshot: %w", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer screen.Fini()

	v := &viewer{screen: screen, game: g}
	v.run()
	return nil
}

func restore(g *game.Game, path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	return g.Restore(snap)
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			if !v.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			v.game.Update(now.Sub(last).Seconds())
			last = now
			v.draw()
		}
	}
}

// handleInput returns false when the viewer should exit.
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.game.TogglePause()
			case 'r':
				v.game.Restart()
			case 's':
				if _, err := v.game.SaveSnapshot(); err != nil {
					slog.Warn("snapshot_failed", "error", err)
				}
			case ',':
				v.game.SetSpeed(v.game.Speed() - 1)
			case '.':
				v.game.SetSpeed(v.game.Speed() + 1)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) draw() {
	s := v.screen
	s.Clear()

	width, height := s.Size()
	// Last row is the status line; the rest is the arena inside a border.
	cols, rows := width-2, height-3
	if cols < 1 || rows < 1 {
		s.Show()
		return
	}
	drawBorder(s, cols+2, rows+2)

	b := v.game.Bounds()
	active := 0
	for a := range v.game.ActiveAgents() {
		active++
		x, y := cell(a.Pos.X, b.Width, cols), cell(a.Pos.Y, b.Height, rows)
		if a.Destroyer {
			s.SetContent(x+1, y+1, '@', nil, styleDestroyer)
		} else {
			s.SetContent(x+1, y+1, 'o', nil, styleCritter)
		}
	}

	_, available := v.game.PoolStats()
	status := statusLine(v.game.Ticks(), v.game.SimTime(), active, available, v.game.Speed(), v.game.Paused())
	drawText(s, 0, height-1, width, status, styleStatus)

	s.Show()
}

// statusLine renders the bottom row. active counts every agent on the board,
// the destroyer included; free is the number of idle pool slots.
func statusLine(tick int64, simTime float64, active, free, speed int, paused bool) string {
	status := fmt.Sprintf(" tick %d  t=%.1fs  pool %d (%d free)  speed %dx ",
		tick, simTime, active, free, speed)
	if paused {
		status += " PAUSED "
	}
	return status + " [space] pause [r] restart [s] snapshot [,/.] speed [q] quit"
}

// cell maps a world coordinate in [0, extent] to a cell index in [0, n).
func cell(pos, extent float64, n int) int {
	if extent <= 0 {
		return 0
	}
	c := int(pos / extent * float64(n))
	return max(0, min(c, n-1))
}

func drawBorder(s tcell.Screen, w, h int) {
	for x := 1; x < w-1; x++ {
		s.SetContent(x, 0, tcell.RuneHLine, nil, styleBorder)
		s.SetContent(x, h-1, tcell.RuneHLine, nil, styleBorder)
	}
	for y := 1; y < h-1; y++ {
		s.SetContent(0, y, tcell.RuneVLine, nil, styleBorder)
		s.SetContent(w-1, y, tcell.RuneVLine, nil, styleBorder)
	}
	s.SetContent(0, 0, tcell.RuneULCorner, nil, styleBorder)
	s.SetContent(w-1, 0, tcell.RuneURCorner, nil, styleBorder)
	s.SetContent(0, h-1, tcell.RuneLLCorner, nil, styleBorder)
	s.SetContent(w-1, h-1, tcell.RuneLRCorner, nil, styleBorder)
}

func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			return
		}
		s.SetContent(x+col, y, r, nil, style)
		col++
	}
	for ; col < maxWidth; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}
