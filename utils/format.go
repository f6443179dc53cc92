package utils

import (
	"fmt"
	"time"
)

// MessageType selects the color of a CLI message.
type MessageType int

// The message types printed by the CLI. WarningMessage marks images
// where no eye pair was found and the fallback crop was written.
const (
	DefaultMessage MessageType = iota
	SuccessMessage
	WarningMessage
	ErrorMessage
	StatusMessage
)

// Terminal colors of the message types.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	WarningColor = "\x1b[33m"
	ErrorColor   = "\x1b[31m"
)

var palette = map[MessageType]string{
	DefaultMessage: DefaultColor,
	SuccessMessage: SuccessColor,
	WarningMessage: WarningColor,
	ErrorMessage:   ErrorColor,
	StatusMessage:  StatusColor,
}

// DecorateText colors s by its message type. Unknown types are returned as is.
func DecorateText(s string, msgType MessageType) string {
	color, ok := palette[msgType]
	if !ok {
		return s
	}
	return color + s + DefaultColor
}

// FormatTime formats the duration of a run. Runs under a minute keep
// two decimals, longer ones are rounded to the second.
func FormatTime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
