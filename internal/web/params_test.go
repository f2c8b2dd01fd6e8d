package web

import (
	"math"
	"net/url"
	"reflect"
	"testing"

	"github.com/JonMunkholm/csvfilter/internal/core"
)

func TestParseSelections(t *testing.T) {
	q, _ := url.ParseQuery("first_name=Maria&sex=female&country=All&city=&byear_min=1980&followers_max=1000&message=can")
	sel := parseSelections(q)

	if sel.FirstName != "Maria" || sel.Sex != "female" || sel.Message != "can" {
		t.Errorf("text selections = %+v", sel)
	}
	if sel.BirthYear == nil {
		t.Fatal("BirthYear should be set")
	}
	if sel.BirthYear.Min != 1980 || !math.IsInf(sel.BirthYear.Max, 1) {
		t.Errorf("BirthYear = %+v, want [1980, +Inf]", *sel.BirthYear)
	}
	if sel.Followers == nil || !math.IsInf(sel.Followers.Min, -1) || sel.Followers.Max != 1000 {
		t.Errorf("Followers = %+v, want [-Inf, 1000]", sel.Followers)
	}
}

func TestParseSelections_Empty(t *testing.T) {
	sel := parseSelections(url.Values{})
	if !sel.IsZero() {
		t.Errorf("empty query should select everything: %+v", sel)
	}
}

func TestParseRange_IgnoresInvalid(t *testing.T) {
	q, _ := url.ParseQuery("byear_min=abc&byear_max=NaN&followers_min=Inf")
	if r := parseRange(q, paramBirthYear); r != nil {
		t.Errorf("invalid bounds should leave the range unset, got %+v", *r)
	}
	if r := parseRange(q, paramFollowers); r != nil {
		t.Errorf("infinite bound should be ignored, got %+v", *r)
	}
}

func TestParseDisplay(t *testing.T) {
	q, _ := url.ParseQuery("cols=first_name,%20id&cols=bdate&cols=")
	got := parseDisplay(q)
	want := []string{"first_name", "id", "bdate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseDisplay() = %v, want %v", got, want)
	}
}

func TestEncodeQuery_RoundTrip(t *testing.T) {
	lo, hi := 1985.0, 1993.0
	yr := core.NewRange(&lo, &hi)
	top := 1000.0
	fl := core.NewRange(nil, &top)
	sel := core.Selections{
		FirstName: "John",
		Sex:       "male",
		Country:   core.AllOption,
		BirthYear: &yr,
		Followers: &fl,
	}

	q := encodeQuery(sel, []string{"first_name", "id"})
	if q.Has(paramCountry) {
		t.Error("All should not be encoded")
	}
	if q.Has(paramFollowers + "_min") {
		t.Error("open bound should not be encoded")
	}

	back := parseSelections(q)
	if back.FirstName != "John" || back.Sex != "male" || back.Country != "" {
		t.Errorf("round trip text = %+v", back)
	}
	if back.BirthYear == nil || *back.BirthYear != yr {
		t.Errorf("round trip BirthYear = %+v, want %+v", back.BirthYear, yr)
	}
	if back.Followers == nil || back.Followers.Max != 1000 || !math.IsInf(back.Followers.Min, -1) {
		t.Errorf("round trip Followers = %+v", back.Followers)
	}
	if got := parseDisplay(q); !reflect.DeepEqual(got, []string{"first_name", "id"}) {
		t.Errorf("round trip display = %v", got)
	}
}
