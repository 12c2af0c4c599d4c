package output

import (
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

const (
	escSeq = "\x1b["
)

var (
	haveColor int32 = 1
	styles          = map[string][]string{
		"NORMAL":  {"normal"},
		"GOOD":    {"green"},
		"WARN":    {"yellow"},
		"BAD":     {"red"},
		"HILITE":  {"teal"},
		"BRACKET": {"blue"},
		"INFORM":  {"darkgreen"},
	}
	codes = map[string]string{
		"normal": escSeq + "0m", "reset": escSeq + "39;49;00m",
		"bold": escSeq + "01m", "faint": escSeq + "02m",
		"underline": escSeq + "04m", "reverse": escSeq + "07m",
	}
	ansiCodes = []string{"30m", "30;01m", "31m", "31;01m",
		"32m", "32;01m", "33m", "33;01m", "34m", "34;01m",
		"35m", "35;01m", "36m", "36;01m", "37m", "37;01m"}

	rgbAnsiColors = []string{"0x000000", "0x555555", "0xAA0000", "0xFF5555", "0x00AA00",
		"0x55FF55", "0xAA5500", "0xFFFF55", "0x0000AA", "0x5555FF", "0xAA00AA",
		"0xFF55FF", "0x00AAAA", "0x55FFFF", "0xAAAAAA", "0xFFFFFF"}
)

func init() {
	for x := range rgbAnsiColors {
		codes[rgbAnsiColors[x]] = escSeq + ansiCodes[x]
	}
	for name, rgb := range map[string]string{
		"black": "0x000000", "darkgray": "0x555555",
		"red": "0xFF5555", "darkred": "0xAA0000",
		"green": "0x55FF55", "darkgreen": "0x00AA00",
		"yellow": "0xFFFF55", "brown": "0xAA5500",
		"blue": "0x5555FF", "darkblue": "0x0000AA",
		"fuchsia": "0xFF55FF", "purple": "0xAA00AA",
		"turquoise": "0x55FFFF", "teal": "0x00AAAA",
		"white": "0xFFFFFF", "lightgray": "0xAAAAAA",
	} {
		codes[name] = codes[rgb]
	}
}

func NoColor() {
	atomic.StoreInt32(&haveColor, 0)
}

func SetColor(on bool) {
	if on {
		atomic.StoreInt32(&haveColor, 1)
	} else {
		NoColor()
	}
}

// NoColorEnv reports whether NOCOLOR asks for plain output.
func NoColorEnv() bool {
	noColor := strings.ToLower(os.Getenv("NOCOLOR"))
	return noColor == "yes" || noColor == "true"
}

func styleToAnsiCode(style string) string {
	ret := ""
	for _, attrName := range styles[style] {
		if r, ok := codes[attrName]; ok {
			ret += r
		} else {
			ret += attrName
		}
	}
	return ret
}

// Colorize wraps text in the escape codes of a color name or style key.
func Colorize(colorKey, text string) string {
	if atomic.LoadInt32(&haveColor) == 0 {
		return text
	}
	if c, ok := codes[colorKey]; ok {
		return c + text + codes["reset"]
	} else if _, ok := styles[colorKey]; ok {
		return styleToAnsiCode(colorKey) + text + codes["reset"]
	}
	return text
}

func NewCreateColorFunc(colorKey string) func(text string) string {
	return func(text string) string { return Colorize(colorKey, text) }
}

var (
	Bold   = NewCreateColorFunc("bold")
	Good   = NewCreateColorFunc("GOOD")
	Warn   = NewCreateColorFunc("WARN")
	Bad    = NewCreateColorFunc("BAD")
	Hilite = NewCreateColorFunc("HILITE")
)

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	_, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	return err == nil
}

// TermSize returns the rows and columns of the terminal at fd, or zeros when
// fd is not a terminal.
func TermSize(fd int) (int, int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0
	}
	return int(ws.Row), int(ws.Col)
}
