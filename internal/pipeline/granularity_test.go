package pipeline

import (
	"testing"

	"github.com/theirongolddev/finburn/internal/model"
)

func TestSelectGranularity(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  model.Granularity
	}{
		{"ten days", "2024/01/01", "2024/01/10", model.Daily},
		{"single day", "2024/01/01", "2024/01/01", model.Daily},
		{"31 days", "2024/01/01", "2024/01/31", model.Daily},
		{"32 days", "2024/01/01", "2024/02/01", model.Weekly},
		{"45 days", "2024/01/01", "2024/02/14", model.Weekly},
		{"90 days", "2024/01/01", "2024/03/30", model.Weekly},
		{"91 days", "2024/01/01", "2024/03/31", model.Monthly},
		{"120 days", "2024/01/01", "2024/04/29", model.Monthly},
		{"inverted", "2024/02/01", "2024/01/01", model.Daily},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectGranularity(mustRange(t, tt.start, tt.end)); got != tt.want {
				t.Errorf("SelectGranularity(%s..%s) = %s, want %s", tt.start, tt.end, got, tt.want)
			}
		})
	}

	if got := SelectGranularity(nil); got != model.Monthly {
		t.Errorf("SelectGranularity(nil) = %s, want monthly", got)
	}
	if got := SelectGranularity(&model.DateRange{Start: "2024/01/01"}); got != model.Monthly {
		t.Errorf("SelectGranularity(open range) = %s, want monthly", got)
	}
}

func TestParseGranularity(t *testing.T) {
	if g, ok := ParseGranularity("weekly"); !ok || g != model.Weekly {
		t.Errorf("ParseGranularity(weekly) = %s, %v", g, ok)
	}
	if g, ok := ParseGranularity("auto"); !ok || g != "" {
		t.Errorf("ParseGranularity(auto) = %s, %v", g, ok)
	}
	if _, ok := ParseGranularity("hourly"); ok {
		t.Error("ParseGranularity(hourly) accepted")
	}
}
