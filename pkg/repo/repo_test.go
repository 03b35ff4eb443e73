package repo

import "testing"

func TestFormatLimitOffset(t *testing.T) {
	cases := []struct {
		limit, offset int
		want          string
	}{
		{10, 20, "LIMIT 10 OFFSET 20"},
		{10, 0, "LIMIT 10"},
		{0, 20, "OFFSET 20"},
		{0, 0, ""},
		{-1, -1, ""},
	}
	for _, tc := range cases {
		if got := FormatLimitOffset(tc.limit, tc.offset); got != tc.want {
			t.Errorf("FormatLimitOffset(%d, %d) = %q, want %q", tc.limit, tc.offset, got, tc.want)
		}
	}
}
