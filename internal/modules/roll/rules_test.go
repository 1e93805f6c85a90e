package roll

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRowCount(t *testing.T) {
	cases := map[int]int{-4: 0, 0: 0, 1: 1, 2: 2, 57: 57, 100: 100, 101: 100, 250: 100}
	for l, want := range cases {
		if got := RowCount(l); got != want {
			t.Fatalf("RowCount(%d): want=%d got=%d", l, want, got)
		}
	}
}

func TestThicknessRowsShortRoll(t *testing.T) {
	for _, l := range []int{1, 2} {
		if diff := cmp.Diff([]int{1}, ThicknessRows(l)); diff != "" {
			t.Fatalf("ThicknessRows(%d) mismatch (-want +got):\n%s", l, diff)
		}
	}
	if rows := ThicknessRows(0); len(rows) != 0 {
		t.Fatalf("ThicknessRows(0): want none got=%v", rows)
	}
}

func TestThicknessRowsSequence(t *testing.T) {
	for l := 3; l <= 120; l++ {
		var want []int
		for r := 3; r <= RowCount(l); r += 5 {
			want = append(want, r)
		}
		if diff := cmp.Diff(want, ThicknessRows(l)); diff != "" {
			t.Fatalf("ThicknessRows(%d) mismatch (-want +got):\n%s", l, diff)
		}
		if IsThicknessRow(1, l) {
			t.Fatalf("IsThicknessRow(1, %d): want=false", l)
		}
	}
}

func TestIsThicknessRowBounds(t *testing.T) {
	if IsThicknessRow(8, 7) {
		t.Fatalf("row beyond target length must not be a measurement row")
	}
	if !IsThicknessRow(8, 8) {
		t.Fatalf("IsThicknessRow(8, 8): want=true")
	}
	if IsThicknessRow(0, 10) {
		t.Fatalf("row 0 must not be a measurement row")
	}
}

func TestTotalSlots(t *testing.T) {
	if got := TotalSlots(13); got != 18 {
		t.Fatalf("TotalSlots(13): want=18 got=%d", got)
	}
	if got := TotalSlots(2); got != 6 {
		t.Fatalf("TotalSlots(2): want=6 got=%d", got)
	}
}

func TestParseThickness(t *testing.T) {
	cases := []struct {
		in        string
		want      float64
		wantEmpty bool
		wantOK    bool
	}{
		{in: "5,4", want: 5.4, wantOK: true},
		{in: " 4.9 ", want: 4.9, wantOK: true},
		{in: "", wantEmpty: true},
		{in: "   ", wantEmpty: true},
		{in: "abc"},
		{in: "NaN"},
	}
	for _, tc := range cases {
		got, empty, ok := ParseThickness(tc.in)
		if empty != tc.wantEmpty || ok != tc.wantOK || (ok && got != tc.want) {
			t.Fatalf("ParseThickness(%q): want=(%v,%v,%v) got=(%v,%v,%v)", tc.in, tc.want, tc.wantEmpty, tc.wantOK, got, empty, ok)
		}
	}
}
