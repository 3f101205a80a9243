package main

import (
	"fmt"
	"io"
	"time"

	"github.com/activewin/activewin/internal/models"
	"github.com/activewin/activewin/pkg/window"

	"github.com/fatih/color"
)

var (
	colorKey     = color.New(color.FgCyan).SprintfFunc()
	colorValue   = color.New(color.FgWhite, color.Bold).SprintfFunc()
	colorWarning = color.New(color.FgYellow).SprintfFunc()
	colorError   = color.New(color.FgRed, color.Bold).SprintfFunc()
	colorMuted   = color.New(color.FgHiBlack).SprintfFunc()
)

type resultOutput struct {
	*window.Result
	Error string `json:"error,omitempty"`
}

func printResult(w io.Writer, res *window.Result, err error, jsonOutput bool) {
	if res == nil {
		res = &window.Result{Reason: window.EnumerationUnavailable}
	}

	if jsonOutput {
		out := resultOutput{Result: res}
		if err != nil {
			out.Error = err.Error()
		}
		fmt.Fprintln(w, encodeJSON(out))
		return
	}

	switch res.Reason {
	case window.Found:
		d := res.Window
		fmt.Fprintf(w, "%s %s\n", colorKey("App:"), colorValue("%s", d.OwnerName))
		fmt.Fprintf(w, "%s %d\n", colorKey("PID:"), d.OwnerPID)
		if d.Title != "" {
			fmt.Fprintf(w, "%s %s\n", colorKey("Title:"), d.Title)
		}
		fmt.Fprintf(w, "%s %.0fx%.0f at %.0f,%.0f\n", colorKey("Bounds:"),
			d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y)
		if d.ID != 0 {
			fmt.Fprintf(w, "%s %d\n", colorKey("Window:"), d.ID)
		}
	case window.NoFrontmostApplication:
		fmt.Fprintln(w, colorWarning("No frontmost application"))
	case window.NoQualifyingWindow:
		fmt.Fprintln(w, colorWarning("No qualifying window for frontmost pid %d", res.FrontmostPID))
	case window.EnumerationUnavailable:
		msg := "Window enumeration unavailable"
		if err != nil {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		fmt.Fprintln(w, colorError("%s", msg))
	}

	if len(res.Verdicts) > 0 {
		fmt.Fprintln(w, colorKey("Verdicts:"))
		for i, v := range res.Verdicts {
			if v == window.VerdictNotReached {
				fmt.Fprintf(w, "  %3d %s\n", i, colorMuted("%s", v))
				continue
			}
			fmt.Fprintf(w, "  %3d %s\n", i, v)
		}
	}
}

func printFailures(w io.Writer, failures []*models.FailureLog, now time.Time) {
	if len(failures) == 0 {
		fmt.Fprintln(w, colorWarning("No failures recorded."))
		return
	}

	for _, f := range failures {
		fmt.Fprintf(w, "%s  %-10s %s %s\n",
			f.Timestamp.Format(time.DateTime),
			f.Platform,
			colorError("%s", f.ErrorMsg),
			colorMuted("(%s)", formatAge(f.Timestamp, now)))
	}
}
