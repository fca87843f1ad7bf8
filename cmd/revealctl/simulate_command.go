package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/reveal/internal/experience"
	"github.com/playperu/reveal/internal/gate"
	"github.com/playperu/reveal/internal/playback"
	"github.com/playperu/reveal/internal/scene"
	"github.com/playperu/reveal/internal/session"
	"github.com/playperu/reveal/internal/timer"
)

type simulateOptions struct {
	step     float64
	answers  string
	code     string
	wish     string
	duration float64
	progress bool
}

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate FILE",
		Short: "Play an experience offline and print every signal",
		Long: "Runs a session against a simulated media element: plays the restricted range\n" +
			"in steps, blows out and cuts the cake, then solves the gift challenge.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.step <= 0 {
				return fmt.Errorf("--step must be positive, got %g", opts.step)
			}
			exp, err := experience.Load(args[0])
			if err != nil {
				return err
			}
			answers, err := parseAnswers(opts.answers, exp.Gate.Questions)
			if err != nil {
				return err
			}
			code := opts.code
			if code == "" {
				code = exp.Gate.Secret
			}
			return simulate(cmd.Context(), cmd.OutOrStdout(), ctx.logger(cmd), exp, simulation{
				step:     opts.step,
				duration: sourceDuration(exp, opts.duration),
				answers:  answers,
				code:     code,
				wish:     opts.wish,
				progress: opts.progress,
			})
		},
	}

	cmd.Flags().Float64Var(&opts.step, "step", 1, "Seconds of playback per position update")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "Comma-separated quiz option indexes (default: the correct ones)")
	cmd.Flags().StringVar(&opts.code, "code", "", "Code to enter at the lock (default: the secret)")
	cmd.Flags().StringVar(&opts.wish, "wish", "", "Wish to make before cutting the cake")
	cmd.Flags().Float64Var(&opts.duration, "duration", 0, "Source length in seconds (default: range end, or the last window end)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Also print progress and playback signals")
	return cmd
}

func parseAnswers(raw string, questions []gate.Question) ([]int, error) {
	if raw == "" {
		out := make([]int, len(questions))
		for i, q := range questions {
			out[i] = q.Correct
		}
		return out, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("--answers: %q is not an option index", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// sourceDuration picks the simulated media length. An open-ended range
// plays to the end of the source, so something must bound it.
func sourceDuration(exp *experience.Experience, flag float64) float64 {
	if flag > 0 {
		return flag
	}
	if exp.Range.End > 0 {
		return exp.Range.End
	}
	end := exp.Memories.Span().End
	if lines := exp.Lyrics.Lines(); len(lines) > 0 {
		end = max(end, lines[len(lines)-1].End)
	}
	return max(end, exp.Range.Start+1)
}

type simulation struct {
	step     float64
	duration float64
	answers  []int
	code     string
	wish     string
	progress bool
}

// signalPrinter writes one line per signal. It runs on the session loop.
type signalPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	progress bool
	count    int
}

func (p *signalPrinter) Emit(sig session.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	if !p.progress && (sig.Type == session.SignalProgress || sig.Type == session.SignalPlayback) {
		return
	}
	data, err := json.Marshal(sig.Data)
	if err != nil {
		data = []byte(err.Error())
	}
	fmt.Fprintf(p.out, "%5d  %-20s %s\n", sig.Seq, sig.Type, data)
}

func (p *signalPrinter) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func simulate(ctx context.Context, out io.Writer, logger *slog.Logger, exp *experience.Experience, sim simulation) error {
	clock := timer.NewManual()
	media := playback.NewSimMedia(sim.duration)
	printer := &signalPrinter{out: out, progress: sim.progress}

	// The countdown target is treated as reached.
	now := time.Now()
	if !exp.Countdown.Target.IsZero() {
		now = exp.Countdown.Target
	}

	s, err := session.New(exp, session.Options{
		Scheduler: clock,
		Media:     media,
		Sink:      printer,
		Logger:    logger,
		Now:       func() time.Time { return now },
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	g.Go(func() error { return s.Run(runCtx) })

	var final session.State
	g.Go(func() error {
		defer stop()
		d := &driver{ctx: gctx, s: s, clock: clock}
		st, err := d.run(media, exp, sim)
		final = st
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("simulation finished", "slug", exp.Slug, "stage", final.Stage, "signals", printer.total())
	fmt.Fprintln(out, renderTable("Result", []string{"Field", "Value"}, [][]string{
		{"stage", final.Stage.String()},
		{"gate", final.Gate.Stage.String()},
		{"position", seconds(final.Playback.Position)},
		{"wish", final.Cake.Wish},
		{"signals", strconv.Itoa(printer.total())},
	}, nil))

	if final.Stage != scene.StageEnd {
		return fmt.Errorf("simulation stopped in %s (gate %s)", final.Stage, final.Gate.Stage)
	}
	return nil
}

// driver feeds events to the session the way a viewer's browser would.
type driver struct {
	ctx   context.Context
	s     *session.Session
	clock *timer.Manual
	st    session.State
}

func (d *driver) send(evs ...session.Event) error {
	for _, ev := range evs {
		st, err := d.s.Dispatch(d.ctx, ev)
		if err != nil {
			return fmt.Errorf("%s: %w", ev.Type, err)
		}
		d.st = st
	}
	return nil
}

// wait advances virtual time so scroll and error timers fire.
func (d *driver) wait(dt time.Duration) error {
	d.clock.Advance(dt)
	st, err := d.s.Snapshot(d.ctx)
	if err != nil {
		return err
	}
	d.st = st
	return nil
}

func (d *driver) run(media *playback.SimMedia, exp *experience.Experience, sim simulation) (session.State, error) {
	if err := d.wait(0); err != nil {
		return d.st, err
	}
	if d.st.Stage == scene.StageCountdown {
		if err := d.send(session.Event{Type: session.EventSkip}); err != nil {
			return d.st, err
		}
	}

	err := d.send(
		session.Event{Type: session.EventMediaReady, Duration: media.Duration()},
		session.Event{Type: session.EventStart},
	)
	if err != nil {
		return d.st, err
	}

	step := time.Duration(sim.step * float64(time.Second))
	for !d.st.Playback.HasEnded {
		if !d.st.Playback.IsPlaying {
			return d.st, fmt.Errorf("playback stopped at %s", seconds(d.st.Playback.Position))
		}
		pos, ended := media.Advance(sim.step)
		if err := d.send(session.Event{Type: session.EventMediaPosition, Position: pos}); err != nil {
			return d.st, err
		}
		if ended {
			if err := d.send(session.Event{Type: session.EventMediaEnded}); err != nil {
				return d.st, err
			}
		}
		if err := d.wait(step); err != nil {
			return d.st, err
		}
		if ended && !d.st.Playback.HasEnded {
			return d.st, fmt.Errorf("media ended at %s but playback did not", seconds(pos))
		}
	}

	for range d.st.Cake.Required {
		if err := d.send(session.Event{Type: session.EventBlow}); err != nil {
			return d.st, err
		}
	}
	if sim.wish != "" {
		if err := d.send(session.Event{Type: session.EventWish, Text: sim.wish}); err != nil {
			return d.st, err
		}
	}
	if err := d.send(session.Event{Type: session.EventCut}); err != nil {
		return d.st, err
	}
	if err := d.wait(time.Second); err != nil {
		return d.st, err
	}

	for range exp.Gate.RequiredTaps {
		if err := d.send(session.Event{Type: session.EventTap}); err != nil {
			return d.st, err
		}
	}
	for _, a := range sim.answers {
		if d.st.Gate.Stage != gate.StageQuiz {
			break
		}
		if err := d.send(session.Event{Type: session.EventAnswer, Index: a}); err != nil {
			return d.st, err
		}
	}
	err = d.send(
		session.Event{Type: session.EventCode, Code: sim.code},
		session.Event{Type: session.EventSubmitCode},
		session.Event{Type: session.EventTap},
		session.Event{Type: session.EventOpenRealGift},
	)
	if err != nil {
		return d.st, err
	}
	// Let any error feedback clear before reporting.
	return d.st, d.wait(exp.Gate.QuizErrorFor + exp.Gate.CodeErrorFor)
}
