package bonus

import (
	"strconv"
	"strings"
)

// Tooltip collects a line per contributing bonus. A nil Tooltip discards
// everything written to it.
type Tooltip struct {
	sb strings.Builder
}

// NewTooltip creates an empty tooltip
func NewTooltip() *Tooltip {
	return &Tooltip{}
}

// Add records one contribution as "\n<source> [+N]"
func (t *Tooltip) Add(source string, amount float64) {
	if t == nil {
		return
	}
	t.sb.WriteByte('\n')
	t.sb.WriteString(source)
	t.sb.WriteString(" [")
	t.sb.WriteString(FormatAmount(amount))
	t.sb.WriteByte(']')
}

// String returns the accumulated text
func (t *Tooltip) String() string {
	if t == nil {
		return ""
	}
	return t.sb.String()
}

// FormatAmount renders a signed amount, dropping a zero fraction
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v >= 0 {
		return "+" + s
	}
	return s
}
