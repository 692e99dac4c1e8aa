package display

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// ASCII brightness ramp from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

// colorMode describes how intensities are rendered.
type colorMode uint8

const (
	colorOff     colorMode = iota // NO_COLOR or dumb terminal
	colorANSI16                   // basic 16-color
	colorANSI256                  // 256-color grayscale ramp
	colorTrue                     // 24-bit truecolor
)

var (
	detectOnce sync.Once
	termColor  colorMode
)

// detectColorMode checks terminal capabilities once.
func detectColorMode() colorMode {
	detectOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			termColor = colorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		ct := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
			termColor = colorTrue
		case strings.Contains(term, "256color"):
			termColor = colorANSI256
		case term == "", term == "dumb":
			termColor = colorOff
		default:
			termColor = colorANSI16
		}
	})
	return termColor
}

// brightnessChar maps a 0-255 intensity to an ASCII character.
func brightnessChar(v uint8) byte {
	return asciiRamp[int(v)*(len(asciiRamp)-1)/255]
}

const ansiReset = "\x1b[0m"

// grayFgSeq returns an ANSI foreground escape for a gray level.
func grayFgSeq(mode colorMode, v uint8) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", v, v, v)
	case colorANSI256:
		return fmt.Sprintf("\x1b[38;5;%dm", grayIndex256(v))
	case colorANSI16:
		return fmt.Sprintf("\x1b[%dm", 30+gray16(v))
	default:
		return ""
	}
}

// grayBgSeq returns an ANSI background escape for a gray level.
func grayBgSeq(mode colorMode, v uint8) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", v, v, v)
	case colorANSI256:
		return fmt.Sprintf("\x1b[48;5;%dm", grayIndex256(v))
	case colorANSI16:
		return fmt.Sprintf("\x1b[%dm", 40+gray16(v))
	default:
		return ""
	}
}

// grayIndex256 maps a gray level onto the xterm 256-color grayscale ramp
// (232 darkest through 255 brightest).
func grayIndex256(v uint8) int {
	return 232 + int(v)*23/255
}

// gray16 picks the nearest of the four gray-ish ANSI 16 colors, returned as
// an offset from the foreground base (30).
func gray16(v uint8) int {
	switch {
	case v < 64:
		return 0 // black
	case v < 128:
		return 60 // bright black
	case v < 192:
		return 7 // white
	default:
		return 67 // bright white
	}
}
