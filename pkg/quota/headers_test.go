package quota

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestParseLimitWindows(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  LimitWindows
	}{
		{
			name:  "burst and per-minute",
			value: "1;w=1, 150;w=60",
			want:  LimitWindows{Burst: 1, PerMinute: 150},
		},
		{
			name:  "per-minute only",
			value: "700;w=60",
			want:  LimitWindows{PerMinute: 700},
		},
		{
			name:  "burst only",
			value: "10;w=1",
			want:  LimitWindows{Burst: 10},
		},
		{
			name:  "bare number defaults to per-minute",
			value: "150",
			want:  LimitWindows{PerMinute: 150},
		},
		{
			name:  "unknown window sizes ignored",
			value: "75;w=1, 9000;w=3600",
			want:  LimitWindows{Burst: 75},
		},
		{
			name:  "malformed items skipped",
			value: "garbage, 3;w=1, ;w=60",
			want:  LimitWindows{Burst: 3},
		},
		{
			name:  "empty",
			value: "",
			want:  LimitWindows{},
		},
		{
			name:  "whitespace tolerated",
			value: " 3 ; w=1 ,  60 ; w=60 ",
			want:  LimitWindows{Burst: 3, PerMinute: 60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLimitWindows(tt.value)
			if got != tt.want {
				t.Errorf("ParseLimitWindows(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseHeaders_RFCForm(t *testing.T) {
	h := http.Header{}
	h.Set("RateLimit-Limit", "150")
	h.Set("RateLimit-Remaining", "42")
	h.Set("RateLimit-Reset", "30")

	parsed := ParseHeaders(h)

	if parsed.Limit == nil || *parsed.Limit != 150 {
		t.Errorf("Limit = %v, want 150", parsed.Limit)
	}
	if parsed.Remaining == nil || *parsed.Remaining != 42 {
		t.Errorf("Remaining = %v, want 42", parsed.Remaining)
	}
	if parsed.Reset == nil {
		t.Fatal("Reset not parsed")
	}
	until := time.Until(*parsed.Reset)
	if until < 25*time.Second || until > 35*time.Second {
		t.Errorf("Reset %v from now, want ~30s", until)
	}
}

func TestParseHeaders_LegacyForm(t *testing.T) {
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "700")
	h.Set("X-RateLimit-Remaining", "0")

	parsed := ParseHeaders(h)

	if parsed.Limit == nil || *parsed.Limit != 700 {
		t.Errorf("Limit = %v, want 700", parsed.Limit)
	}
	if parsed.Remaining == nil || *parsed.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", parsed.Remaining)
	}
	if parsed.Reset != nil {
		t.Errorf("Reset = %v, want nil for absent header", parsed.Reset)
	}
}

func TestParseHeaders_RFCFormWins(t *testing.T) {
	h := http.Header{}
	h.Set("RateLimit-Limit", "150")
	h.Set("X-RateLimit-Limit", "700")

	parsed := ParseHeaders(h)
	if parsed.Limit == nil || *parsed.Limit != 150 {
		t.Errorf("Limit = %v, want RFC form value 150", parsed.Limit)
	}
}

func TestParseHeaders_CombinedPolicyValue(t *testing.T) {
	h := http.Header{}
	h.Set("RateLimit-Limit", "1;w=1, 150;w=60")

	parsed := ParseHeaders(h)
	if parsed.Limit == nil || *parsed.Limit != 150 {
		t.Errorf("Limit = %v, want per-minute figure 150", parsed.Limit)
	}
}

func TestParseHeaders_UnparseableFieldsOmitted(t *testing.T) {
	h := http.Header{}
	h.Set("RateLimit-Limit", "not-a-number")
	h.Set("RateLimit-Remaining", "many")
	h.Set("RateLimit-Reset", "-5")

	parsed := ParseHeaders(h)

	if parsed.Limit != nil {
		t.Errorf("Limit = %v, want nil for unparseable header", parsed.Limit)
	}
	if parsed.Remaining != nil {
		t.Errorf("Remaining = %v, want nil for unparseable header", parsed.Remaining)
	}
	if parsed.Reset != nil {
		t.Errorf("Reset = %v, want nil for negative value", parsed.Reset)
	}
}

func TestParseHeaders_ExplicitTier(t *testing.T) {
	h := http.Header{}
	h.Set("RateLimit-Tier", "m")

	parsed := ParseHeaders(h)
	if parsed.Tier == nil || *parsed.Tier != TierM {
		t.Errorf("Tier = %v, want M", parsed.Tier)
	}
}

func TestParseReset_EpochForm(t *testing.T) {
	now := time.Now()
	target := now.Add(90 * time.Second)

	got, ok := parseReset(strconv.FormatInt(target.Unix(), 10), now)
	if !ok {
		t.Fatal("epoch reset value did not parse")
	}
	if diff := got.Sub(target); diff < -time.Second || diff > time.Second {
		t.Errorf("parsed reset %v, want ~%v", got, target)
	}
}
