package reading

import "testing"

func TestPercentForPage(t *testing.T) {
	cases := []struct {
		name  string
		page  int64
		total int64
		want  int64
	}{
		{"truncates", 300, 350, 85},
		{"exact", 300, 300, 100},
		{"zero page", 0, 300, 0},
		{"unknown total", 150, 0, 0},
		{"one third", 100, 300, 33},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PercentForPage(tc.page, tc.total); got != tc.want {
				t.Fatalf("PercentForPage(%d, %d) = %d, want %d", tc.page, tc.total, got, tc.want)
			}
		})
	}
}

func TestPageForPercent(t *testing.T) {
	if got := PageForPercent(42, 350); got != 147 {
		t.Fatalf("expected page 147, got %d", got)
	}
	if got := PageForPercent(50, 0); got != 0 {
		t.Fatalf("expected 0 for unknown total, got %d", got)
	}
}

func TestPagesReadFlooredAtZero(t *testing.T) {
	if got := PagesRead(150, 100); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if got := PagesRead(100, 150); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := PagesRead(100, 0); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"to-read", "read-next", "reading", "read", "dnf"} {
		if _, err := ParseStatus(raw); err != nil {
			t.Fatalf("ParseStatus(%q) failed: %v", raw, err)
		}
	}
	if _, err := ParseStatus("finished"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Fatal("expected error for empty status")
	}
}

func TestIsBackward(t *testing.T) {
	if !IsBackward(StatusReading, StatusToRead) {
		t.Fatal("reading -> to-read is backward")
	}
	if !IsBackward(StatusReading, StatusReadNext) {
		t.Fatal("reading -> read-next is backward")
	}
	if IsBackward(StatusReading, StatusRead) {
		t.Fatal("reading -> read is forward")
	}
	if IsBackward(StatusToRead, StatusReadNext) {
		t.Fatal("only movement out of reading archives")
	}
}
