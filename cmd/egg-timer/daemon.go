package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/egg-timer/internal/gpio"
	"github.com/sweeney/egg-timer/internal/history"
	"github.com/sweeney/egg-timer/internal/logic"
	"github.com/sweeney/egg-timer/internal/mqtt"
	"github.com/sweeney/egg-timer/internal/prefs"
	"github.com/sweeney/egg-timer/internal/status"
)

// boilLog records finished boils.
type boilLog interface {
	Add(ctx context.Context, r *history.Record) error
}

// command is a control request waiting for the loop's answer.
type command struct {
	req   logic.Request
	reply chan error
}

// loopController hands web requests to the control loop.
type loopController struct {
	requests chan<- command
}

func (c loopController) Submit(ctx context.Context, req logic.Request) error {
	reply := make(chan error, 1)
	select {
	case c.requests <- command{req: req, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// daemon owns the countdown and fans its events out to the status
// tracker, MQTT, the buzzer and the boil history. All methods run on the
// control loop goroutine.
type daemon struct {
	countdown  *logic.Countdown
	ticks      tickSource
	store      *prefs.Store
	prefs      prefs.Preferences
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	buzzer     gpio.Buzzer
	history    boilLog
	tracker    *status.Tracker
	now        func() time.Time
	newID      func() string
	ring       time.Duration

	session string
	started time.Time
	target  time.Duration
}

func newDaemon(ticks tickSource, store *prefs.Store, p prefs.Preferences, tracker *status.Tracker, now func() time.Time) *daemon {
	d := &daemon{
		ticks:   ticks,
		store:   store,
		prefs:   p,
		tracker: tracker,
		now:     now,
		newID:   uuid.NewString,
		ring:    2 * time.Second,
	}
	d.countdown = logic.NewCountdown(ticks, d.onEvent)
	if err := d.countdown.SetDefault(p.SelectedDuration()); err != nil {
		log.Printf("prefs: %v, using %v", err, d.countdown.Default())
	}
	return d
}

func (d *daemon) onEvent(ev logic.Event) {
	if ev.Type == logic.EventProgress {
		switch {
		case ev.State == logic.StateRunning && d.session == "":
			d.session = d.newID()
			d.started = ev.Timestamp
			d.target = d.countdown.Duration()
		case ev.State == logic.StateStopped:
			d.session = ""
		}
	}

	if ev.Type == logic.EventFinished {
		log.Printf("event: %s session=%s", ev.Type, d.session)
	} else if ev.State != logic.StateRunning {
		log.Printf("event: %s %s remaining=%v", ev.Type, ev.State, ev.Remaining)
	}

	if d.tracker != nil {
		d.tracker.Update(ev.State, ev.Remaining, d.countdown.Duration(), d.countdown.Counts())
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
	}

	selected := d.prefs.SelectedDuration()
	if d.session != "" {
		selected = d.target
	}
	if d.publisher != nil {
		te := mqtt.TimerEvent{Event: ev, SessionID: d.session, Selected: selected}
		if err := d.publisher.Publish(te); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	if ev.Type == logic.EventFinished {
		d.finished(ev.Timestamp)
	}
}

// finished sounds the buzzer and logs the boil. Failures never reach
// the countdown.
func (d *daemon) finished(at time.Time) {
	if d.buzzer != nil {
		if err := d.buzzer.Ring(d.ring); err != nil {
			log.Printf("buzzer error: %v", err)
		}
	}
	if d.history != nil && d.session != "" {
		rec := &history.Record{
			SessionID:  d.session,
			Duration:   d.target,
			StartedAt:  d.started,
			FinishedAt: at,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.history.Add(ctx, rec); err != nil {
			log.Printf("history error: %v", err)
		}
		cancel()
	}
	d.session = ""
}

// handle applies one control request to the countdown.
func (d *daemon) handle(req logic.Request) error {
	now := d.now()

	if req.Type == logic.CommandSetDuration {
		return d.setDuration(req, now)
	}
	if !logic.ControlsFor(d.countdown.State()).Allows(req.Type) {
		return logic.ErrControlDisabled
	}

	switch req.Type {
	case logic.CommandStart:
		return d.countdown.StartOrResume(d.prefs.SelectedDuration(), now)
	case logic.CommandStop:
		d.countdown.Stop(now)
	case logic.CommandReset:
		d.countdown.Reset(now)
	default:
		return fmt.Errorf("unknown command %q", req.Type)
	}
	return nil
}

// setDuration changes the preferred boil time. A boil in progress is
// only reset when the request says so.
func (d *daemon) setDuration(req logic.Request, now time.Time) error {
	if req.Duration <= 0 {
		return logic.ErrInvalidDuration
	}
	if req.Duration%time.Minute != 0 {
		return fmt.Errorf("%w: %v is not a whole number of minutes", logic.ErrInvalidDuration, req.Duration)
	}
	p := d.prefs
	if err := p.SetMinutes(int(req.Duration / time.Minute)); err != nil {
		return err
	}
	if d.countdown.IsRunning() && !req.Force {
		return logic.ErrTimerRunning
	}
	if d.store != nil {
		if err := d.store.Save(p); err != nil {
			return fmt.Errorf("save prefs: %w", err)
		}
	}

	d.prefs = p
	if err := d.countdown.SetDefault(p.SelectedDuration()); err != nil {
		return err
	}
	if d.tracker != nil {
		d.tracker.SetSelected(p.SelectedDuration())
	}
	log.Printf("prefs: boil time %s", prefs.Describe(p.SelectedMinutes()))
	d.countdown.Reset(now)
	return nil
}

// systemEvent builds a lifecycle event carrying the current status.
func (d *daemon) systemEvent(name, reason string, retained bool) mqtt.SystemEvent {
	ev := mqtt.SystemEvent{
		Timestamp: d.now(),
		Event:     name,
		Reason:    reason,
		Retained:  retained,
	}
	if d.tracker != nil {
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), name, reason)
	}
	return ev
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// runLoop is the single goroutine that owns the countdown. It returns
// after publishing SHUTDOWN when a signal arrives.
func runLoop(d *daemon, reader gpio.Reader, detector *logic.Detector, requests <-chan command, poll, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			d.ticks.Stop()
			name := signalName(s)
			if err := d.publisher.PublishSystem(d.systemEvent("SHUTDOWN", name, true)); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case t := <-d.ticks.C():
			d.countdown.Tick(t)

		case cmd := <-requests:
			err := d.handle(cmd.req)
			if err != nil {
				log.Printf("command %s rejected: %v", cmd.req.Type, err)
			}
			if cmd.reply != nil {
				cmd.reply <- err
			}

		case <-poll:
			b, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}
			presses := detector.Process(logic.Input{
				Start: b.Start,
				Stop:  b.Stop,
				Reset: b.Reset,
				Time:  d.now(),
			})
			for _, p := range presses {
				log.Printf("button: %s", p.Button)
				if err := d.handle(logic.Request{Type: p.Button.Command()}); err != nil {
					log.Printf("button %s ignored: %v", p.Button, err)
				}
			}

		case <-heartbeat:
			snap := d.tracker.Snapshot()
			log.Printf("heartbeat: uptime=%v state=%s starts=%d finishes=%d",
				snap.Uptime().Truncate(time.Second), snap.State, snap.Counts.Starts, snap.Counts.Finishes)
			if err := d.publisher.PublishSystem(d.systemEvent("HEARTBEAT", "", false)); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}
