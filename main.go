// Terminal spectrogram player: renders a scrolling time-frequency view of a
// sound file while it plays, with pause, reverse, and speed control.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/olivier-w/spectro/internal/audio"
	"github.com/olivier-w/spectro/internal/dsp"
	"github.com/olivier-w/spectro/internal/media"
	"github.com/olivier-w/spectro/internal/player"
	"github.com/olivier-w/spectro/internal/spectrogram"
	"github.com/olivier-w/spectro/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:          "spectro <sound-file>",
	Short:        "Scrolling spectrogram player for the terminal",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		windowMs, _ := cmd.Flags().GetInt("window-ms")
		stepMs, _ := cmd.Flags().GetInt("step-ms")
		width, _ := cmd.Flags().GetInt("width")
		taperName, _ := cmd.Flags().GetString("taper")
		speed, _ := cmd.Flags().GetFloat64("speed")
		out, _ := cmd.Flags().GetString("out")
		return run(args[0], windowMs, stepMs, width, taperName, speed, out)
	},
}

func init() {
	rootCmd.Flags().Int("window-ms", 20, "fourier window width in milliseconds")
	rootCmd.Flags().Int("step-ms", 5, "step between window starts in milliseconds")
	rootCmd.Flags().Int("width", 1024, "spectrogram display width in windows")
	rootCmd.Flags().String("taper", "none", "taper window: "+strings.Join(dsp.Tapers(), ", "))
	rootCmd.Flags().Float64("speed", 1.0, "initial playback speed multiplier (0.25-4)")
	rootCmd.Flags().StringP("out", "o", "", "export the full spectrogram to a PNG file and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, windowMs, stepMs, width int, taperName string, speed float64, out string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	taper, err := dsp.ParseTaper(taperName)
	if err != nil {
		return err
	}

	dec, err := audio.ReadFile(path)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	// Window geometry is given in milliseconds and converted at the file's
	// native rate.
	windowWidth := windowMs * dec.SampleRate / 1000
	windowStep := stepMs * dec.SampleRate / 1000

	spec, err := spectrogram.New(dec.Samples, windowWidth, windowStep, spectrogram.WithTaper(taper))
	if err != nil {
		return err
	}

	if out != "" {
		return spectrogram.SavePNG(out, spec.Image())
	}

	view := spectrogram.NewView(spec, width)

	p, err := player.New(dec)
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	defer p.Close()
	p.SetSpeed(speed)

	meta := audio.ReadMetadata(path)
	savePath := strings.TrimSuffix(filepath.Base(path), ext) + "-spectrogram.png"

	model := ui.New(p, spec, view, meta, savePath)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
