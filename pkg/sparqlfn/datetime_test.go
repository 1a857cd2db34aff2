package sparqlfn

import "testing"

func TestFormatTimeFromEpoch(t *testing.T) {
	got, err := FormatTime(int64(0))
	if err != nil {
		t.Fatalf("FormatTime: %v", err)
	}
	if got != "1970-01-01T00:00:00Z" {
		t.Errorf("FormatTime(0) = %v, want epoch", got)
	}
}

func TestFormatTimeNil(t *testing.T) {
	got, err := FormatTime(nil)
	if err != nil || got != nil {
		t.Errorf("FormatTime(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestTimestampRoundTripsWithFormatTime(t *testing.T) {
	const iso = "2026-07-31T12:34:56Z"
	ts, err := Timestamp(iso)
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	back, err := FormatTime(ts)
	if err != nil {
		t.Fatalf("FormatTime: %v", err)
	}
	if back != iso {
		t.Errorf("format_time(timestamp(T)) = %v, want %v", back, iso)
	}
}

func TestTimeSortOrdering(t *testing.T) {
	a, err := TimeSort("2026-07-31T12:00:00.100000Z")
	if err != nil {
		t.Fatalf("TimeSort: %v", err)
	}
	b, err := TimeSort("2026-07-31T12:00:00.900000Z")
	if err != nil {
		t.Fatalf("TimeSort: %v", err)
	}
	if a.(int64) >= b.(int64) {
		t.Errorf("TimeSort not monotonic: a=%v b=%v", a, b)
	}
}

func TestTimezoneDurationAndString(t *testing.T) {
	secs, err := TimezoneDuration("2026-07-31T12:00:00+05:30")
	if err != nil {
		t.Fatalf("TimezoneDuration: %v", err)
	}
	if secs != int64(5*3600+30*60) {
		t.Errorf("TimezoneDuration = %v, want 19800", secs)
	}

	str, err := TimezoneString("2026-07-31T12:00:00+05:30")
	if err != nil {
		t.Fatalf("TimezoneString: %v", err)
	}
	if str != "+05:30" {
		t.Errorf("TimezoneString = %q, want +05:30", str)
	}

	zsecs, _ := TimezoneDuration("2026-07-31T12:00:00Z")
	if zsecs != int64(0) {
		t.Errorf("TimezoneDuration(Z) = %v, want 0", zsecs)
	}
}

func TestTimezoneReturnsDayTimeDuration(t *testing.T) {
	dur, err := Timezone("2026-07-31T12:00:00+05:30")
	if err != nil {
		t.Fatalf("Timezone: %v", err)
	}
	if dur != "PT5H30M" {
		t.Errorf("Timezone = %q, want PT5H30M", dur)
	}

	zero, _ := Timezone("2026-07-31T12:00:00Z")
	if zero != "PT0S" {
		t.Errorf("Timezone(Z) = %q, want PT0S", zero)
	}

	fromInt, _ := Timezone(int64(42))
	if fromInt != "PT0S" {
		t.Errorf("Timezone(int) = %q, want PT0S", fromInt)
	}
}
