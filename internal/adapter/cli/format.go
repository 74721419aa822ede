package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/number"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (a *App) money(d decimal.Decimal) string {
	return a.printer.Sprintf("$%v", number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func (a *App) count(n int) string {
	return a.printer.Sprintf("%v", number.Decimal(n))
}

// status renders the shared label, tinted with the status color when the
// output supports it.
func (a *App) status(s domain.OrderStatus) string {
	d := s.Display()
	if !a.color {
		return d.Label
	}
	r, g, b, ok := parseHexColor(d.Color)
	if !ok {
		return d.Label
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, d.Label)
}

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(s string) (r, g, b uint8, ok bool) {
	hex, found := strings.CutPrefix(s, "#")
	if !found {
		return 0, 0, 0, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
