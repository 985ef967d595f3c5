package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/pkg/corrector"
)

var correctOpts struct {
	maxLength int
	json      bool
}

var correctCmd = &cobra.Command{
	Use:   "correct [file|-]",
	Short: "Segment a document and run it through the correction backend",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCorrect,
}

func init() {
	correctCmd.Flags().IntVar(&correctOpts.maxLength, "max-length", 0, "maximum segment length in characters (1-500)")
	correctCmd.Flags().BoolVar(&correctOpts.json, "json", false, "print segments as a JSON array")
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("segments"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// correctionProgress drives the bar from OnProgress. Segments finish on
// several goroutines, so counts can arrive out of order; the bar only moves
// forward.
type correctionProgress struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	shown int
}

func (p *correctionProgress) report(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = getProgressBar(total, "Correcting")
	}
	if done > p.shown {
		p.shown = done
		p.bar.Set(done)
	}
}

// finish completes the bar and reports whether one was shown.
func (p *correctionProgress) finish() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return false
	}
	p.bar.Finish()
	return true
}

func runCorrect(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("max-length") {
		cfg.Corrector.MaxSegmentLength = correctOpts.maxLength
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := models.ValidateText(text); err != nil {
		return err
	}

	backend, err := newCorrector(cfg.Corrector)
	if err != nil {
		return err
	}
	if backend == nil {
		logger.Warn("No correction backend configured, segments are returned unchanged")
	}

	progress := &correctionProgress{}
	oc := cfg.OrchestratorConfig()
	oc.Logger = logger
	oc.OnProgress = progress.report
	o := corrector.NewWithConfig(backend, oc)

	segments := corrector.SegmentAndCorrect(cmd.Context(), text, cfg.Corrector.MaxSegmentLength, o)
	if progress.finish() {
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	out := cmd.OutOrStdout()
	if correctOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(segments)
	}
	fmt.Fprintln(out, strings.Join(segments, "\n"))
	return nil
}
