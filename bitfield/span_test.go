package bitfield

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/bitreg/errors"
)

func TestSpanLengths(t *testing.T) {
	tests := []struct {
		name    string
		span    Span
		length  int
		byteLen int
	}{
		{"single 0", Single(0), 1, 1},
		{"single 1", Single(1), 1, 1},
		{"single 7", Single(7), 1, 1},
		{"single 8", Single(8), 1, 1},
		{"single 9", Single(9), 1, 1},
		{"single 15", Single(15), 1, 1},
		{"range 0..1", Range(0, 1), 1, 1},
		{"range 0..5", Range(0, 5), 5, 1},
		{"range 0..8", Range(0, 8), 8, 1},
		{"range 0..9", Range(0, 9), 9, 2},
		{"range 0..10", Range(0, 10), 10, 2},
		{"range 0..15", Range(0, 15), 15, 2},
		{"range 1..2", Range(1, 2), 1, 1},
		{"range 1..8", Range(1, 8), 7, 1},
		{"range 1..9", Range(1, 9), 8, 1},
		{"range 1..10", Range(1, 10), 9, 2},
		{"inclusive 0..0", Inclusive(0, 0), 1, 1},
		{"inclusive 6..9", Inclusive(6, 9), 4, 1},
		{"inclusive 0..255", Inclusive(0, 255), 256, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Len(); got != tt.length {
				t.Errorf("Len: got %d, want %d", got, tt.length)
			}
			if got := tt.span.ByteLen(); got != tt.byteLen {
				t.Errorf("ByteLen: got %d, want %d", got, tt.byteLen)
			}
		})
	}
}

func TestSpanBits(t *testing.T) {
	s := Range(6, 10)
	if s.FirstBit() != 6 || s.LastBit() != 9 || s.End() != 10 {
		t.Errorf("got first=%d last=%d end=%d, want 6, 9, 10", s.FirstBit(), s.LastBit(), s.End())
	}
	if s.RegisterSize() != 2 {
		t.Errorf("RegisterSize: got %d, want 2", s.RegisterSize())
	}

	b := Single(15)
	if b.FirstBit() != 15 || b.LastBit() != 15 || !b.IsSingle() {
		t.Errorf("Single(15): got first=%d last=%d single=%v", b.FirstBit(), b.LastBit(), b.IsSingle())
	}
	if b.RegisterSize() != 2 {
		t.Errorf("Single(15).RegisterSize: got %d, want 2", b.RegisterSize())
	}

	if Range(0, 8).RegisterSize() != 1 {
		t.Error("Range(0, 8) should fit one byte")
	}
}

func TestSpanBytes(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want []ByteRange
	}{
		{"single", Single(3), []ByteRange{{0, 3, 4}}},
		{"full byte", Range(8, 16), []ByteRange{{1, 0, 8}}},
		{"straddle", Range(6, 10), []ByteRange{{0, 6, 8}, {1, 0, 2}}},
		{"three bytes", Range(4, 20), []ByteRange{{0, 4, 8}, {1, 0, 8}, {2, 0, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.span.Bytes()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d ranges, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSpanValidate(t *testing.T) {
	tests := []struct {
		name string
		span Span
		ok   bool
	}{
		{"single", Single(200), true},
		{"range", Range(0, 1), true},
		{"inclusive top", Inclusive(250, 255), true},
		{"zero", Span{}, false},
		{"empty range", Range(4, 4), false},
		{"reversed", Range(5, 2), false},
	}

	target := &errors.Error{Phase: errors.PhaseDefine, Kind: errors.KindInvalidSpan}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.span.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !stderrors.Is(err, target) {
				t.Fatalf("got %v, want invalid_span", err)
			}
		})
	}
}

func TestSizeFor(t *testing.T) {
	tests := []struct {
		spans []Span
		want  int
	}{
		{nil, 0},
		{[]Span{Single(0)}, 1},
		{[]Span{Single(7)}, 1},
		{[]Span{Single(8)}, 2},
		{[]Span{Range(0, 8)}, 1},
		{[]Span{Single(0), Range(6, 10), Single(3)}, 2},
		{[]Span{Range(0, 32), Single(40)}, 6},
	}

	for _, tt := range tests {
		if got := SizeFor(tt.spans...); got != tt.want {
			t.Errorf("SizeFor(%v) = %d, want %d", tt.spans, got, tt.want)
		}
	}
}

func TestSpanOverlapsAndString(t *testing.T) {
	if !Range(0, 4).Overlaps(Single(3)) {
		t.Error("[0..3] should overlap @3")
	}
	if Range(0, 4).Overlaps(Range(4, 8)) {
		t.Error("[0..3] should not overlap [4..7]")
	}
	if got := Single(5).String(); got != "@5" {
		t.Errorf("got %q, want @5", got)
	}
	if got := Range(2, 6).String(); got != "[2..5]" {
		t.Errorf("got %q, want [2..5]", got)
	}
	if got := (Span{}).String(); got != "<none>" {
		t.Errorf("got %q, want <none>", got)
	}
}
