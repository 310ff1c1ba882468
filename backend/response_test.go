package backend

import (
	"strings"
	"testing"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func TestTimingInfoAbsent(t *testing.T) {
	r := &Response{Model: "m", Text: "hi", Done: true}
	if got := r.TimingInfo(); got != "No timing information available" {
		t.Errorf("expected unavailable message, got %q", got)
	}
}

func TestTimingInfoFull(t *testing.T) {
	r := &Response{
		Model:              "gemma3",
		Done:               true,
		TotalDuration:      i64(2_500_000_000),
		PromptEvalCount:    iptr(10),
		PromptEvalDuration: i64(500_000_000),
		EvalCount:          iptr(42),
		EvalDuration:       i64(1_000_000_000),
	}
	got := r.TimingInfo()

	for _, want := range []string{
		"total duration:       2.5000s",
		"prompt eval count:    10 token(s)",
		"prompt eval duration: 500.00ms",
		"prompt eval rate:     20.00 tokens/s",
		"eval count:           42 token(s)",
		"eval duration:        1.0000s",
		"eval rate:            42.00 tokens/s",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestTimingInfoUnitSelection(t *testing.T) {
	cases := []struct {
		nanos int64
		want  string
	}{
		{3_000_000_000, "3.0000s"},
		{42_000_000, "42.00ms"},
		{7_500, "7.50µs"},
		{999, "999ns"},
	}
	for _, tc := range cases {
		r := &Response{TotalDuration: i64(tc.nanos)}
		got := r.TimingInfo()
		if !strings.Contains(got, tc.want) {
			t.Errorf("duration %d: expected %q in %q", tc.nanos, tc.want, got)
		}
	}
}

func TestTimingInfoZeroCountOmitsRate(t *testing.T) {
	r := &Response{
		TotalDuration: i64(1_000_000_000),
		EvalCount:     iptr(0),
		EvalDuration:  i64(1_000_000_000),
	}
	got := r.TimingInfo()
	if strings.Contains(got, "eval rate") {
		t.Errorf("zero token count must not produce a rate line:\n%s", got)
	}
}
