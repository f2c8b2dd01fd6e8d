package web

import (
	"math"
	"net/http"
	"time"

	"github.com/JonMunkholm/csvfilter/internal/core"
	mw "github.com/JonMunkholm/csvfilter/internal/web/middleware"
)

// uploadResponse is returned by POST /api/datasets.
type uploadResponse struct {
	ID       string   `json:"id"`
	FileName string   `json:"file_name"`
	Encoding string   `json:"encoding"`
	Records  int      `json:"records"`
	Columns  []string `json:"columns"`
	URL      string   `json:"url"`
}

// datasetResponse is the JSON view of one pipeline run.
type datasetResponse struct {
	ID            string       `json:"id"`
	FileName      string       `json:"file_name"`
	Encoding      string       `json:"encoding"`
	LoadedAt      time.Time    `json:"loaded_at"`
	Source        overviewJSON `json:"source"`
	Records       int          `json:"records"`
	Columns       []string     `json:"columns"`
	Display       []string     `json:"display_columns"`
	ActiveFilters int          `json:"active_filters"`
	Filters       []filterJSON `json:"filters"`
	Summary       summaryJSON  `json:"summary"`
	Exports       []exportLink `json:"exports"`
}

type overviewJSON struct {
	Records   int  `json:"records"`
	Columns   int  `json:"columns"`
	UniqueIDs *int `json:"unique_ids,omitempty"`
}

type filterJSON struct {
	Key      string       `json:"key"`
	Label    string       `json:"label"`
	Column   string       `json:"column"`
	Kind     string       `json:"kind"`
	Active   bool         `json:"active"`
	Selected string       `json:"selected,omitempty"`
	Options  []string     `json:"options,omitempty"`
	Choices  []choiceJSON `json:"choices,omitempty"`
	Bounds   *rangeJSON   `json:"bounds,omitempty"`
	Value    *rangeJSON   `json:"value,omitempty"`
}

type choiceJSON struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	Code  float64 `json:"code"`
}

type rangeJSON struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type summaryJSON struct {
	overviewJSON
	Gender       []genderJSON `json:"gender,omitempty"`
	TopCountries []countJSON  `json:"top_countries,omitempty"`
	Followers    *numbersJSON `json:"followers,omitempty"`
}

type genderJSON struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type countJSON struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type numbersJSON struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type exportLink struct {
	Format   string `json:"format"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// handleAPIUpload loads a file and answers with the new dataset's ID.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := core.ContextWithOrigin(r.Context(), mw.ClientIP(r))
	ds, err := s.service.LoadUpload(ctx, name, data)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:       ds.ID.String(),
		FileName: ds.FileName,
		Encoding: ds.Encoding(),
		Records:  ds.Source.Len(),
		Columns:  ds.Source.Names(),
		URL:      "/api/datasets/" + ds.ID.String(),
	})
}

// handleAPIDataset runs the pipeline and returns counts, options, bounds
// and statistics as JSON.
func (s *Server) handleAPIDataset(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	q := r.URL.Query()
	sel := parseSelections(q)
	view, err := s.service.View(r.Context(), id, sel, parseDisplay(q))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	res := view.Result
	resp := datasetResponse{
		ID:            id.String(),
		FileName:      view.Dataset.FileName,
		Encoding:      view.Dataset.Encoding(),
		LoadedAt:      view.Dataset.LoadedAt,
		Source:        overviewFrom(res.Source),
		Records:       res.Table.Len(),
		Columns:       res.Table.Names(),
		Display:       res.Display,
		ActiveFilters: res.ActiveFilters(),
		Filters:       []filterJSON{},
		Summary:       summaryFrom(res.Summary),
	}
	for _, st := range res.Steps {
		if st.Present {
			resp.Filters = append(resp.Filters, filterFrom(st))
		}
	}

	query := encodeQuery(sel, nil).Encode()
	for _, f := range core.Formats {
		link := exportLink{
			Format:   string(f),
			FileName: f.FileName(),
			URL:      "/api/datasets/" + id.String() + "/export/" + string(f),
		}
		if query != "" {
			link.URL += "?" + query
		}
		resp.Exports = append(resp.Exports, link)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports liveness and load limiter usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"datasets": s.service.DatasetCount(),
		"loads":    s.service.LoadStatus(),
	})
}

func overviewFrom(o core.Overview) overviewJSON {
	out := overviewJSON{Records: o.Records, Columns: o.Columns}
	if o.HasIDColumn {
		n := o.UniqueIDs
		out.UniqueIDs = &n
	}
	return out
}

func summaryFrom(s core.Summary) summaryJSON {
	out := summaryJSON{overviewJSON: overviewFrom(s.Overview)}
	for _, g := range s.Gender {
		out.Gender = append(out.Gender, genderJSON{Code: g.Code, Label: g.Label, Count: g.Count})
	}
	for _, c := range s.TopCountries {
		out.TopCountries = append(out.TopCountries, countJSON{Value: c.Value, Count: c.Count})
	}
	if f := s.Followers; f != nil {
		out.Followers = &numbersJSON{Mean: f.Mean, Min: f.Min, Max: f.Max}
	}
	return out
}

func filterFrom(st core.StepState) filterJSON {
	f := filterJSON{
		Key:    st.Step.Key,
		Label:  st.Step.Label,
		Column: st.Step.Column,
		Active: st.Active,
	}
	switch st.Step.Kind {
	case core.StepExact:
		f.Kind = "exact"
		f.Selected = st.Selected
		f.Options = st.Options
	case core.StepChoice:
		f.Kind = "choice"
		f.Selected = st.Selected
		for _, c := range st.Step.Choices {
			f.Choices = append(f.Choices, choiceJSON{Value: c.Value, Label: c.Label, Code: c.Code})
		}
	case core.StepRange:
		f.Kind = "range"
		f.Bounds = rangeFrom(st.Bounds)
		f.Value = rangeFrom(st.Value)
	}
	return f
}

// rangeFrom returns nil for ranges JSON cannot hold.
func rangeFrom(r core.Range) *rangeJSON {
	if math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) || math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return nil
	}
	return &rangeJSON{Min: r.Min, Max: r.Max}
}
