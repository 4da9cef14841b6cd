// Command egg-timer is a kitchen egg timer. It runs as a terminal UI or
// as a daemon with push buttons, a buzzer, an HTTP status page and MQTT
// events.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sweeney/egg-timer/internal/gpio"
	"github.com/sweeney/egg-timer/internal/history"
	"github.com/sweeney/egg-timer/internal/logic"
	"github.com/sweeney/egg-timer/internal/mqtt"
	"github.com/sweeney/egg-timer/internal/prefs"
	"github.com/sweeney/egg-timer/internal/status"
	"github.com/sweeney/egg-timer/internal/tui"
	"github.com/sweeney/egg-timer/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// paths holds the per-user file locations shared by every subcommand.
type paths struct {
	prefs   string
	history string
}

func (p *paths) resolve() error {
	dir, err := prefs.DefaultDir()
	if err != nil {
		return err
	}
	if p.prefs == "" {
		if p.prefs, err = prefs.DefaultPath(); err != nil {
			return err
		}
	}
	if p.history == "" {
		p.history = filepath.Join(dir, "history.db")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var p paths

	root := &cobra.Command{
		Use:          "egg-timer",
		Short:        "Kitchen egg timer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return p.resolve()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(p)
		},
	}
	root.PersistentFlags().StringVar(&p.prefs, "prefs", "", "preferences file (default ~/.egg-timer/prefs.yaml)")
	root.PersistentFlags().StringVar(&p.history, "history", "", "boil history database (default ~/.egg-timer/history.db)")

	root.AddCommand(newTUICmd(&p), newRunCmd(&p), newPrefsCmd(&p), newHistoryCmd(&p))
	return root
}

func newTUICmd(p *paths) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the timer in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(*p)
		},
	}
}

func runTUI(p paths) error {
	store := prefs.NewStore(p.prefs)
	pr, err := store.Load()
	if err != nil {
		log.Printf("prefs: %v, using default", err)
		pr = prefs.Preferences{}
	}
	return tui.Run(store, pr)
}

// daemonConfig holds the flags of the run subcommand.
type daemonConfig struct {
	poll        time.Duration
	debounce    time.Duration
	heartbeat   time.Duration
	ring        time.Duration
	broker      string
	clientID    string
	httpAddr    string
	webControls bool
	gpio        bool
	pins        gpio.Pins
}

func newRunCmd(p *paths) *cobra.Command {
	cfg := daemonConfig{pins: gpio.DefaultPins()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer daemon with buttons, buzzer, HTTP and MQTT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(*p, cfg)
		},
	}
	f := cmd.Flags()
	f.DurationVar(&cfg.poll, "poll", 20*time.Millisecond, "GPIO polling interval")
	f.DurationVar(&cfg.debounce, "debounce", 50*time.Millisecond, "Button debounce duration")
	f.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.DurationVar(&cfg.ring, "ring", 2*time.Second, "How long the buzzer sounds when a boil finishes")
	f.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	f.StringVar(&cfg.clientID, "client-id", "", "MQTT client ID (default egg-timer-<random>)")
	f.StringVar(&cfg.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	f.BoolVar(&cfg.webControls, "web-controls", true, "Allow start/stop/reset/prefs from the status page")
	f.BoolVar(&cfg.gpio, "gpio", true, "Use GPIO push buttons and buzzer")
	f.IntVar(&cfg.pins.Start, "pin-start", gpio.DefaultPinStart, "BCM pin number for the start button")
	f.IntVar(&cfg.pins.Stop, "pin-stop", gpio.DefaultPinStop, "BCM pin number for the stop button")
	f.IntVar(&cfg.pins.Reset, "pin-reset", gpio.DefaultPinReset, "BCM pin number for the reset button")
	f.IntVar(&cfg.pins.Buzzer, "pin-buzzer", gpio.DefaultPinBuzzer, "BCM pin number for the buzzer")
	return cmd
}

func runDaemon(p paths, cfg daemonConfig) error {
	store := prefs.NewStore(p.prefs)
	pr, err := store.Load()
	if err != nil {
		log.Printf("prefs: %v, using default", err)
		pr = prefs.Preferences{}
	}

	hist, err := history.Open(p.history)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	var reader gpio.Reader
	var buzzer gpio.Buzzer
	if cfg.gpio {
		r, err := gpio.NewRealReader(cfg.pins)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer r.Close()
		reader = r

		b, err := gpio.NewRealBuzzer(cfg.pins.Buzzer)
		if err != nil {
			return fmt.Errorf("init buzzer: %w", err)
		}
		defer b.Close()
		buzzer = b
	}

	clientID := cfg.clientID
	if clientID == "" {
		clientID = "egg-timer-" + uuid.NewString()[:8]
	}
	publisher := mqtt.NewRealPublisher(cfg.broker, clientID)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), pr.SelectedDuration(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		DebounceMs:  cfg.debounce.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
		GPIO:        cfg.gpio,
	})

	ticks := &clockTicks{}
	d := newDaemon(ticks, store, pr, tracker, time.Now)
	d.publisher = publisher
	d.mqttStatus = publisher
	d.buzzer = buzzer
	d.history = hist
	d.ring = cfg.ring

	if err := publisher.PublishSystem(d.systemEvent("STARTUP", "", true)); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	requests := make(chan command)
	if cfg.httpAddr != "" {
		var ctl web.Controller
		if cfg.webControls {
			ctl = loopController{requests: requests}
		}
		srv := web.New(cfg.httpAddr, tracker, ctl)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	var poll <-chan time.Time
	if reader != nil {
		pollTicker := time.NewTicker(cfg.poll)
		defer pollTicker.Stop()
		poll = pollTicker.C
	}

	var heartbeat <-chan time.Time
	if cfg.heartbeat > 0 {
		hb := time.NewTicker(cfg.heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("started: boil=%s poll=%v debounce=%v broker=%s heartbeat=%v gpio=%v",
		prefs.Describe(pr.SelectedMinutes()), cfg.poll, cfg.debounce, cfg.broker, cfg.heartbeat, cfg.gpio)

	return runLoop(d, reader, logic.NewDetector(cfg.debounce), requests, poll, heartbeat, sigCh)
}

func newPrefsCmd(p *paths) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show the preferred boil time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pr, err := prefs.NewStore(p.prefs).Load()
			if err != nil {
				return err
			}
			printPrefs(cmd, pr)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <minutes>",
		Short: "Set the preferred boil time in minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("minutes: %w", err)
			}
			pr, err := prefs.NewStore(p.prefs).Update(func(pr *prefs.Preferences) error {
				return pr.SetMinutes(minutes)
			})
			if err != nil {
				return err
			}
			printPrefs(cmd, pr)
			return nil
		},
	})
	return cmd
}

func printPrefs(cmd *cobra.Command, pr prefs.Preferences) {
	m := pr.SelectedMinutes()
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", prefs.Describe(m), prefs.PresetFor(m))
}

func newHistoryCmd(p *paths) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent boils",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := history.Open(p.history)
			if err != nil {
				return err
			}
			defer hist.Close()
			return printHistory(cmd, hist, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of boils to show")
	return cmd
}

func printHistory(cmd *cobra.Command, hist *history.Store, limit int) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	recs, err := hist.Recent(ctx, limit)
	if err != nil {
		return err
	}
	st, err := hist.Stats(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "no boils yet")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tBOIL\tSESSION")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.FinishedAt.Local().Format("2006-01-02 15:04"), logic.FormatRemaining(r.Duration), r.SessionID)
	}
	w.Flush()
	fmt.Fprintf(out, "%d boils, average %s\n", st.Count, logic.FormatRemaining(st.Average.Round(time.Second)))
	return nil
}
