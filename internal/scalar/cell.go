package scalar

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	Absent Kind = iota
	Null
	Integer
	Float
	Text
)

// Cell is the first column of the first row of a query result, tagged with
// the underlying type the driver handed back. It only lives for the span of
// one request.
type Cell struct {
	kind       Kind
	intValue   int64
	floatValue float64
	textValue  string
}

// AbsentCell is the canonical zero cell for a result set with no rows.
func AbsentCell() Cell { return Cell{kind: Absent} }

// FromValue classifies a value scanned from database/sql. Integer and
// float widths are collapsed to their 64-bit forms; anything unrecognized
// is carried as text so normalization can still try to parse it.
func FromValue(value any) Cell {
	switch v := value.(type) {
	case nil:
		return Cell{kind: Null}
	case int64:
		return Cell{kind: Integer, intValue: v}
	case int32:
		return Cell{kind: Integer, intValue: int64(v)}
	case int:
		return Cell{kind: Integer, intValue: int64(v)}
	case uint64:
		return Cell{kind: Integer, intValue: int64(v)}
	case float64:
		return Cell{kind: Float, floatValue: v}
	case float32:
		return Cell{kind: Float, floatValue: float64(v)}
	case []byte:
		return Cell{kind: Text, textValue: string(v)}
	case string:
		return Cell{kind: Text, textValue: v}
	default:
		return Cell{kind: Text, textValue: fmt.Sprint(v)}
	}
}

func (c Cell) Kind() Kind { return c.kind }

// Normalize coerces the cell into a float64. The contract is total: absent
// and null cells map to 0, and text that does not parse as a number is
// logged and mapped to 0 rather than surfaced as an error.
func (c Cell) Normalize(logger *slog.Logger) float64 {
	switch c.kind {
	case Integer:
		return float64(c.intValue)
	case Float:
		return c.floatValue
	case Text:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c.textValue), 64)
		if err != nil {
			if logger != nil {
				logger.Warn("scalar result is not numeric", slog.String("value", c.textValue))
			}
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// Render formats an answer for the chat front end: mathematically integral
// values are rendered without a fractional part, everything else in full
// decimal form.
func Render(value float64) string {
	if value == math.Trunc(value) && math.Abs(value) < 1<<62 {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
