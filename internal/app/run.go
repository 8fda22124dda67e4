package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"spikeradar/internal/metrics"
	"spikeradar/internal/model"
	"spikeradar/internal/service"
	"spikeradar/internal/view"
)

// relabelInterval re-renders so elapsed labels stay current between refreshes.
const relabelInterval = 30 * time.Second

const clearScreen = "\033[H\033[2J"

const helpText = `commands:
  a <id>   act on an alert
  d <id>   dismiss an alert
  e <id>   expand or collapse an alert
  s        scan competitors now
  r        refresh alerts and feed
  q        quit`

// Run executes the long-running dashboard session.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redraw := make(chan struct{}, 1)
	onChange := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}

	dash, closeSession, err := a.session(ctx, a.Config, onChange)
	if err != nil {
		return err
	}
	defer closeSession()

	if a.Config.Metrics.Enabled {
		a.serveMetrics(ctx, dash)
	}

	a.Logger.Info().Str("session_id", dash.SessionID().String()).Msg("starting dashboard session")
	dash.Start(ctx)

	var commands <-chan string
	if opts.Interactive {
		commands = a.readCommands(ctx)
	}

	ticker := time.NewTicker(relabelInterval)
	defer ticker.Stop()

	var status string
	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("dashboard session stopped")
			return nil
		case <-redraw:
		case <-ticker.C:
		case line, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			quit, msg := handleCommand(dash, line)
			if quit {
				return nil
			}
			status = msg
		}
		if err := a.render(dash, opts, status); err != nil {
			return err
		}
	}
}

func (a *App) serveMetrics(ctx context.Context, dash *service.Dashboard) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(registry)

	srv := metrics.NewServer(a.Logger, registry, dash.Health)
	go func() {
		if err := srv.Serve(ctx, a.Config.Metrics.Addr); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("metrics server terminated with error")
		}
	}()
}

func (a *App) render(dash *service.Dashboard, opts RunOptions, status string) error {
	if opts.Clear {
		fmt.Fprint(a.Out, clearScreen)
	}
	if err := view.Dashboard(a.Out, dash.View(), a.viewOptions()); err != nil {
		return err
	}
	if opts.Interactive {
		fmt.Fprintln(a.Out)
		if status != "" {
			fmt.Fprintln(a.Out, status)
		}
		fmt.Fprint(a.Out, "> ")
	}
	return nil
}

// readCommands streams input lines until EOF. The reader goroutine is not
// interruptible and exits with the process when blocked on stdin.
func (a *App) readCommands(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(a.In)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// handleCommand applies one input line and returns whether to quit and a
// status message for the prompt.
func handleCommand(dash *service.Dashboard, line string) (bool, string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, ""
	}
	verb := strings.ToLower(fields[0])
	var id model.AlertID
	if len(fields) > 1 {
		id = model.AlertID(fields[1])
	}

	needsID := func() (bool, string) { return false, fmt.Sprintf("usage: %s <id>", verb) }

	switch verb {
	case "q", "quit", "exit":
		return true, ""
	case "h", "help", "?":
		return false, helpText
	case "r", "refresh":
		dash.Refresh()
		return false, "refreshing..."
	case "s", "scan":
		if !dash.TriggerScan() {
			return false, "a scan is already running"
		}
		return false, ""
	case "a", "act":
		if id == "" {
			return needsID()
		}
		if _, ok := dash.Alert(id); !ok {
			return false, fmt.Sprintf("alert %s not found", id)
		}
		if !dash.Act(id) {
			return false, fmt.Sprintf("alert %s is not pending", id)
		}
		return false, fmt.Sprintf("alert %s acted on", id)
	case "d", "dismiss":
		if id == "" {
			return needsID()
		}
		if _, ok := dash.Alert(id); !ok {
			return false, fmt.Sprintf("alert %s not found", id)
		}
		if !dash.Dismiss(id) {
			return false, fmt.Sprintf("alert %s is not pending", id)
		}
		return false, fmt.Sprintf("alert %s dismissed", id)
	case "e", "x", "expand":
		if id == "" {
			return needsID()
		}
		if _, ok := dash.Alert(id); !ok {
			return false, fmt.Sprintf("alert %s not found", id)
		}
		dash.ToggleExpand(id)
		return false, ""
	default:
		return false, fmt.Sprintf("unknown command %q; type h for help", verb)
	}
}
