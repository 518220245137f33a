package dataset

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bobmcallan/etf-portal/internal/models"
)

func TestParseSeries(t *testing.T) {
	doc := `{
		"Date": ["1/3/20", "01/02/20", "1/6/20"],
		"NAV": ["30.5", 20, ""],
		"YHV": ["1000", "2000", "3000"]
	}`
	var raw RawSeries
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("failed to decode series: %v", err)
	}

	series, err := ParseSeries(&raw)
	if err != nil {
		t.Fatalf("ParseSeries failed: %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", series.Len())
	}

	wantDays := []string{"2020-01-02", "2020-01-03", "2020-01-06"}
	wantNAV := []string{"20", "30.5", "0"}
	wantVol := []string{"2000", "1000", "3000"}
	for i := range wantDays {
		if models.DayKey(series.Dates[i]) != wantDays[i] {
			t.Errorf("point %d: expected day %s, got %s", i, wantDays[i], models.DayKey(series.Dates[i]))
		}
		if series.NAV[i].String() != wantNAV[i] {
			t.Errorf("point %d: expected NAV %s, got %s", i, wantNAV[i], series.NAV[i])
		}
		if series.Volume[i].String() != wantVol[i] {
			t.Errorf("point %d: expected volume %s, got %s", i, wantVol[i], series.Volume[i])
		}
	}
}

func TestParseSeries_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  RawSeries
		want error
	}{
		{"length mismatch", RawSeries{
			Date: []string{"1/1/20", "1/2/20"},
			NAV:  []Numeric{"1"},
			YHV:  []Numeric{"1", "2"},
		}, ErrSeriesShape},
		{"duplicate day", RawSeries{
			Date: []string{"1/1/20", "01/01/20"},
			NAV:  []Numeric{"1", "2"},
			YHV:  []Numeric{"1", "2"},
		}, ErrDuplicateDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeries(&tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSeries_RejectsBadValues(t *testing.T) {
	bad := []RawSeries{
		{Date: []string{"2020-01-01"}, NAV: []Numeric{"1"}, YHV: []Numeric{"1"}},
		{Date: []string{"1/1/20"}, NAV: []Numeric{"abc"}, YHV: []Numeric{"1"}},
		{Date: []string{"1/1/20"}, NAV: []Numeric{"1"}, YHV: []Numeric{"1.2.3"}},
	}
	for i, raw := range bad {
		if _, err := ParseSeries(&raw); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if _, err := ParseSeries(nil); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestNumeric_UnmarshalNull(t *testing.T) {
	var raw RawSeries
	if err := json.Unmarshal([]byte(`{"Date":["1/1/20"],"NAV":[null],"YHV":[5]}`), &raw); err != nil {
		t.Fatal(err)
	}
	series, err := ParseSeries(&raw)
	if err != nil {
		t.Fatal(err)
	}
	if !series.NAV[0].IsZero() {
		t.Errorf("expected null NAV to coerce to zero, got %s", series.NAV[0])
	}
}
