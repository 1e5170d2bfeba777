package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"honnef.co/go/curve"

	"DotDrawer/internal/config"
	"DotDrawer/internal/share"
	"DotDrawer/internal/state"
	"DotDrawer/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "TOML config file (defaults when empty)")
	scriptPath := flag.String("script", "-", "command script, - for stdin")
	outDir := flag.String("out", "", "output directory (overrides output_dir)")
	shareLive := flag.Bool("share", false, "serve a live preview until interrupted")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	board := ui.NewBoard(cfg)
	if *shareLive {
		stop, err := startSharing(cfg, board)
		if err != nil {
			log.Fatalf("Failed to start sharing: %v", err)
		}
		defer stop()
	}

	script := io.Reader(os.Stdin)
	if *scriptPath != "-" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			log.Fatalf("Failed to open script: %v", err)
		}
		defer f.Close()
		script = f
	}
	if failed := runScript(script, board, cfg.OutputDir); failed > 0 {
		log.Printf("%d commands failed", failed)
	}

	if *shareLive {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		log.Println("Sharing, press Ctrl-C to stop")
		<-sig
	}
}

func startSharing(cfg config.Config, board *ui.Board) (stop func(), err error) {
	hub := share.NewHub()
	cancel := board.Model().Subscribe(hub)
	// viewers joining before the first tap still get an empty drawing
	hub.DrawingChanged(board.Model().Snapshot())

	srv, _, err := share.Serve(fmt.Sprintf(":%d", cfg.Share.Port), hub)
	if err != nil {
		cancel()
		return nil, err
	}

	fmt.Println("Live preview:", share.Link(share.OutgoingIP(), cfg.Share.Port))

	var closers []func()
	if cfg.Share.Advertise {
		mdnsServer, err := share.Advertise(cfg.Share.Port)
		if err != nil {
			log.Printf("mDNS advertisement disabled: %v", err)
		} else {
			closers = append(closers, func() { mdnsServer.Shutdown() })
		}
	}

	return func() {
		for _, c := range closers {
			c()
		}
		cancel()
		hub.Close()
		ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		srv.Shutdown(ctx)
	}, nil
}

// runScript executes one command per line and returns how many failed.
// Failures are logged and do not stop the script.
func runScript(r io.Reader, board *ui.Board, dir string) int {
	failed := 0
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := execLine(board, line, dir); err != nil {
			log.Printf("line %d: %q: %v", n, line, err)
			failed++
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("reading script: %v", err)
		failed++
	}
	return failed
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func execLine(board *ui.Board, line, dir string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "tap":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		if _, ok := board.Tap(curve.Pt(v[0], v[1])); !ok {
			return fmt.Errorf("tap rejected")
		}
		return nil
	case "cell":
		if len(args) != 2 {
			return fmt.Errorf("want 2 arguments, got %d", len(args))
		}
		col, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad column %q: %w", args[0], err)
		}
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad row %q: %w", args[1], err)
		}
		if !board.TapCell(state.Cell{Col: col, Row: row}) {
			return fmt.Errorf("tap rejected")
		}
		return nil
	case "scroll":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		board.ScrollTo(curve.Pt(v[0], v[1]))
		return nil
	case "content":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		board.LayoutContent(curve.Sz(v[0], v[1]))
		return nil
	case "minimap-tap":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		fmt.Println("offset", board.MinimapTap(curve.Pt(v[0], v[1])))
		return nil
	case "minimap-drag":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		fmt.Println("offset", board.MinimapDrag(curve.Vec(v[0], v[1])))
		return nil
	case "overview":
		if len(args) != 0 {
			return fmt.Errorf("overview takes no arguments")
		}
		_, err := board.SaveOverview(dir)
		return err
	}

	btn, ok := ui.ParseButton(cmd)
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	if len(args) != 0 {
		return fmt.Errorf("%s takes no arguments", cmd)
	}
	return board.Press(btn, dir)
}
