package timezone_test

import (
	"pms/shared/timezone"
	"testing"
	"time"
)

func TestTimezoneInit(t *testing.T) {
	if timezone.Now().IsZero() {
		t.Error("Now() returned zero time")
	}

	if timezone.GetLocation() == nil {
		t.Error("GetLocation() returned nil")
	}
}

func TestDateOf(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "utc midday",
			in:   time.Date(2024, 7, 15, 12, 30, 0, 0, time.UTC),
			want: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "late evening in lima stays on the local date",
			in:   time.Date(2024, 7, 15, 23, 10, 0, 0, lima),
			want: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "already a date",
			in:   time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timezone.DateOf(tt.in); !got.Equal(tt.want) {
				t.Errorf("DateOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAndFormatDate(t *testing.T) {
	parsed, err := timezone.ParseDate("2024-07-15")
	if err != nil {
		t.Fatalf("ParseDate() failed: %v", err)
	}

	if got := timezone.FormatDate(parsed); got != "2024-07-15" {
		t.Errorf("FormatDate() = %s, want 2024-07-15", got)
	}

	if _, err := timezone.ParseDate("15/07/2024"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestFormat(t *testing.T) {
	formatted := timezone.Format(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "2006-01-02 15:04:05 MST")
	if formatted == "" {
		t.Error("Format() returned empty string")
	}
}
