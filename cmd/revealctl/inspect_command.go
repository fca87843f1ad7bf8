package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/playperu/reveal/internal/experience"
	"github.com/playperu/reveal/internal/playback"
)

func newInspectCommand() *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the timeline, quiz and gate of an experience",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := experience.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSummary(out, exp)
			if cmd.Flags().Changed("at") {
				printPosition(out, exp, at)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Show what is active at this position in seconds")
	return cmd
}

func printSummary(out io.Writer, exp *experience.Experience) {
	countdown := "none"
	if !exp.Countdown.Target.IsZero() {
		countdown = exp.Countdown.Target.Format(time.RFC3339)
	}
	span := exp.Memories.Span()
	rows := [][]string{
		{"slug", exp.Slug},
		{"title", exp.Title},
		{"media", exp.MediaURL},
		{"range", seconds(exp.Range.Start) + " - " + seconds(exp.Range.End)},
		{"memory span", seconds(span.Start) + " - " + seconds(span.End)},
		{"countdown", countdown},
		{"protected", strconv.FormatBool(exp.Protected())},
		{"themes", strings.Join(exp.Themes, ", ")},
	}
	fmt.Fprintln(out, renderTable("Experience", []string{"Field", "Value"}, rows, nil))

	rows = rows[:0]
	for i, w := range exp.Lyrics.Lines() {
		rows = append(rows, []string{
			strconv.Itoa(i), seconds(w.Start), seconds(w.End), string(w.Payload.Kind), w.Payload.Text,
		})
	}
	fmt.Fprintln(out, renderTable("Lyrics",
		[]string{"#", "Start", "End", "Kind", "Text"}, rows,
		[]columnAlignment{alignRight, alignRight, alignRight}))

	rows = rows[:0]
	for i, w := range exp.Memories.Moments() {
		video := ""
		if w.Payload.IsVideo {
			video = "video"
		}
		rows = append(rows, []string{
			strconv.Itoa(i), w.Payload.ID, seconds(w.Start), seconds(w.End), w.Payload.MediaURL, video,
		})
	}
	fmt.Fprintln(out, renderTable("Memories",
		[]string{"#", "ID", "Start", "End", "Media", ""}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight}))

	rows = rows[:0]
	for i, q := range exp.Gate.Questions {
		rows = append(rows, []string{
			strconv.Itoa(i), q.Text, strconv.Itoa(len(q.Options)), q.Options[q.Correct],
		})
	}
	fmt.Fprintln(out, renderTable("Quiz",
		[]string{"#", "Question", "Options", "Answer"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight}))

	fmt.Fprintf(out, "Gate: %d taps, %d digit code, quiz error %s, code error %s\n",
		exp.Gate.RequiredTaps, exp.Gate.CodeLength, exp.Gate.QuizErrorFor, exp.Gate.CodeErrorFor)
}

func printPosition(out io.Writer, exp *experience.Experience, pos float64) {
	lm := exp.Lyrics.Match(pos)
	mm := exp.Memories.Match(pos)

	lyric, memory := "-", "-"
	if lm.Current != nil {
		lyric = fmt.Sprintf("#%d %q", lm.Index, lm.Current.Payload.Text)
	} else if lm.Next != nil {
		lyric = fmt.Sprintf("gap, next %q at %s", lm.Next.Payload.Text, seconds(lm.Next.Start))
	}
	if mm.Current != nil {
		memory = fmt.Sprintf("#%d %s", mm.Index, mm.Current.Payload.ID)
	} else if mm.Next != nil {
		memory = fmt.Sprintf("gap, next %s at %s", mm.Next.Payload.ID, seconds(mm.Next.Start))
	}

	// Global progress is over the whole source, which inspect only knows
	// up to the range end.
	st := playback.State{Position: pos, Duration: exp.Range.End}
	rows := [][]string{
		{"lyric", lyric},
		{"memory", memory},
		{"memory progress", percent(mm.LocalProgress)},
		{"global progress", percent(st.Progress())},
		{"in range", strconv.FormatBool(pos >= exp.Range.Start && pos < exp.Range.End)},
	}
	fmt.Fprintln(out, renderTable("At "+seconds(pos)+"s", []string{"Field", "Value"}, rows, nil))
}
