package web

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Query parameter names. Range steps use <key>_min and <key>_max.
const (
	paramFirstName = "first_name"
	paramSex       = "sex"
	paramCountry   = "country"
	paramCity      = "city"
	paramBirthYear = "byear"
	paramFollowers = "followers"
	paramMessage   = "message"
	paramColumns   = "cols"
)

// datasetID parses the {datasetID} URL parameter. Malformed IDs are
// reported as missing datasets.
func datasetID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "datasetID"))
	if err != nil {
		return uuid.Nil, core.ErrDatasetNotFound
	}
	return id, nil
}

// parseSelections reads filter selections from a query. Missing, "All" and
// malformed values leave their step unset.
func parseSelections(q url.Values) core.Selections {
	return core.Selections{
		FirstName: q.Get(paramFirstName),
		Sex:       q.Get(paramSex),
		Country:   q.Get(paramCountry),
		City:      q.Get(paramCity),
		BirthYear: parseRange(q, paramBirthYear),
		Followers: parseRange(q, paramFollowers),
		Message:   q.Get(paramMessage),
	}
}

// parseRange returns nil when neither side of the range is given.
func parseRange(q url.Values, key string) *core.Range {
	lo := parseNumber(q.Get(key + "_min"))
	hi := parseNumber(q.Get(key + "_max"))
	if lo == nil && hi == nil {
		return nil
	}
	r := core.NewRange(lo, hi)
	return &r
}

func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseDisplay reads the chosen display columns. Both repeated parameters
// and comma-separated lists are accepted.
func parseDisplay(q url.Values) []string {
	var cols []string
	for _, v := range q[paramColumns] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// encodeQuery is the inverse of parseSelections and parseDisplay. Unset
// selections are omitted.
func encodeQuery(sel core.Selections, display []string) url.Values {
	q := url.Values{}
	set := func(key, v string) {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, core.AllOption) {
			q.Set(key, v)
		}
	}
	set(paramFirstName, sel.FirstName)
	set(paramSex, sel.Sex)
	set(paramCountry, sel.Country)
	set(paramCity, sel.City)
	encodeRange(q, paramBirthYear, sel.BirthYear)
	encodeRange(q, paramFollowers, sel.Followers)
	set(paramMessage, sel.Message)
	if len(display) > 0 {
		q.Set(paramColumns, strings.Join(display, ","))
	}
	return q
}

func encodeRange(q url.Values, key string, r *core.Range) {
	if r == nil {
		return
	}
	if !math.IsInf(r.Min, 0) {
		q.Set(key+"_min", strconv.FormatFloat(r.Min, 'f', -1, 64))
	}
	if !math.IsInf(r.Max, 0) {
		q.Set(key+"_max", strconv.FormatFloat(r.Max, 'f', -1, 64))
	}
}
