package records

import (
	"strconv"
	"time"
)

// Kind discriminates the typed cell values a column can produce.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
)

// Value is one typed cell produced by a column accessor. Missing or
// malformed record fields map to the null value, never to an error.
type Value struct {
	kind Kind
	str  string
	num  float64
	ts   time.Time
}

func Null() Value {
	return Value{kind: KindNull}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Time(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Value{kind: KindTime, ts: t}
}

// NumberPtr treats a missing numeric field as null rather than zero so that
// sorting can push it last; aggregation helpers still count it as zero.
func NumberPtr(f *float64) Value {
	if f == nil {
		return Null()
	}
	return Number(*f)
}

func TimePtr(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return Time(*t)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Num returns the numeric view of the value. Missing numerics are 0 and
// times collapse to epoch milliseconds so dates sort numerically.
func (v Value) Num() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindTime:
		return float64(v.ts.UnixMilli())
	default:
		return 0
	}
}

func (v Value) TimeValue() time.Time {
	if v.kind != KindTime {
		return time.Time{}
	}
	return v.ts
}

// Display renders the value for search matching and CSV cells. Nulls render
// blank so a malformed record degrades to an empty cell.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.ts.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}
