package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tanq16/resumer/internal/utils"
	"golang.org/x/term"
)

func progressBar(percent float64, width int) string {
	if width <= 0 {
		width = 30
	}
	percent = min(max(percent, 0), 100)
	filled := min(int(percent/100*float64(width)), width)
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	bar += strings.Repeat(" ", width-filled)
	bar += StyleSymbols["bullet"]
	return fmt.Sprintf("%s %.1f%%", bar, percent)
}

// progressLine renders bar, transferred bytes, speed and ETA on one line.
func progressLine(percent float64, downloaded, total, speed, eta int64, width int) string {
	parts := []string{
		progressBar(percent, width),
		fmt.Sprintf("%s / %s", utils.FormatBytes(uint64(max(downloaded, 0))), utils.FormatBytes(uint64(max(total, 0)))),
		utils.FormatSpeed(speed),
	}
	if eta > 0 {
		parts = append(parts, "ETA "+(time.Duration(eta)*time.Second).String())
	}
	return strings.Join(parts, " "+StyleSymbols["bullet"]+" ")
}

func barWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 30
	}
	// room for indentation and the byte/speed/ETA columns
	return min(max(width-70, 10), 40)
}
