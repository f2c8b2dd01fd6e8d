package application

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersCSV = `first_name,last_name,id,sex,followers_count,country_title,byear
Pappa,Hapa,470000405,1,862,Brazil,1993
Maria,Silva,470000406,2,1500,Portugal,1990
John,Doe,470000407,1,320,USA,1985
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodePresets_List(t *testing.T) {
	doc := `
presets:
  - name: men
    sex: male
    byear: {min: 1980, max: 1990}
  - name: portugal
    country: Portugal
    followers: {min: 1000}
`
	presets, err := DecodePresets(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, presets, 2)

	men := presets[0].Selections()
	assert.Equal(t, "male", men.Sex)
	require.NotNil(t, men.BirthYear)
	assert.Equal(t, core.Range{Min: 1980, Max: 1990}, *men.BirthYear)
	assert.Nil(t, men.Followers)

	pt := presets[1].Selections()
	require.NotNil(t, pt.Followers)
	assert.Equal(t, 1000.0, pt.Followers.Min)
	assert.True(t, pt.Followers.Contains(1e12), "open max side")
}

func TestDecodePresets_TopLevel(t *testing.T) {
	presets, err := DecodePresets(strings.NewReader("country: Brazil\nmessage: can\n"))
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "", presets[0].Name)
	assert.Equal(t, "Brazil", presets[0].Selections().Country)
}

func TestDecodePresets_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":          "   \n",
		"unknown key":    "contry: Brazil\n",
		"missing name":   "presets:\n  - sex: male\n  - sex: female\n",
		"duplicate name": "presets:\n  - name: a\n  - name: a\n",
		"bad name":       "presets:\n  - name: ../etc\n",
		"mixed":          "sex: male\npresets:\n  - name: a\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePresets(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPresets_NoFileSelectsEverything(t *testing.T) {
	presets, err := LoadPresets("")
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.True(t, presets[0].Selections().IsZero())
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), []byte(usersCSV))
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.csv"), []byte(usersCSV))
	writeFile(t, filepath.Join(dir, "nested", "notes.txt"), []byte("x"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dir.csv"), 0o755))

	files, err := ExpandInputs([]string{
		filepath.Join(dir, "**", "*.csv"),
		filepath.Join(dir, "a.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "nested", "deep", "b.csv"),
	}, files)

	_, err = ExpandInputs([]string{filepath.Join(dir, "*.json")})
	assert.ErrorIs(t, err, ErrNoInputs)

	_, err = ExpandInputs([]string{filepath.Join(dir, "[")})
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(in, "users.csv"), []byte(usersCSV))
	writeFile(t, filepath.Join(in, "archive", "users.csv.gz"), gzipped(t, usersCSV))

	inputs, err := ExpandInputs([]string{filepath.Join(in, "**", "users.csv*")})
	require.NoError(t, err)

	results, err := RunBatch(context.Background(), BatchOptions{
		Inputs: inputs,
		Presets: []Preset{
			{Name: "men", Sex: "male"},
			{Name: "all"},
		},
		OutDir:  out,
		Formats: []core.Format{core.FormatCSV, core.FormatJSON},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Equal(t, 3, r.SourceRows)
		assert.Equal(t, "utf-8", r.Encoding)
		assert.Len(t, r.Outputs, 2)
	}

	// Both inputs share the stem "users"; the second one in sorted order is suffixed.
	csvPath := filepath.Join(out, "users", "men", "filtered_data.csv")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Pappa,"))
	assert.True(t, strings.HasPrefix(lines[2], "John,"))

	jsonPath := filepath.Join(out, "users-2", "all", "dados_filtrados.json")
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 3)
	assert.Equal(t, "Maria", records[1]["first_name"])
}

func TestRunBatch_UnnamedPresetWritesToInputDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "users.csv")
	writeFile(t, input, []byte(usersCSV))

	results, err := RunBatch(context.Background(), BatchOptions{
		Inputs: []string{input},
		OutDir: filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Rows)
	assert.FileExists(t, filepath.Join(dir, "out", "users", "filtered_data.csv"))
}

func TestRunBatch_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	good := filepath.Join(dir, "good.csv")
	writeFile(t, bad, []byte("a,b\n1,2,3\n"))
	writeFile(t, good, []byte(usersCSV))

	results, err := RunBatch(context.Background(), BatchOptions{
		Inputs:  []string{bad, good},
		OutDir:  filepath.Join(dir, "out"),
		Formats: []core.Format{core.FormatXLSX},
	})
	require.Error(t, err)
	require.Len(t, results, 2)

	var loadErr *core.LoadError
	require.ErrorAs(t, results[0].Err, &loadErr)
	assert.Equal(t, core.KindMalformed, loadErr.Kind)

	require.NoError(t, results[1].Err)
	assert.FileExists(t, filepath.Join(dir, "out", "good", "filtered_data.xlsx"))
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"users.csv":       "users",
		"users.csv.gz":    "users",
		"USERS.CSV.XZ":    "USERS",
		"export.2024.csv": "export.2024",
		"data":            "data",
		".csv":            "input",
	}
	for in, want := range tests {
		assert.Equal(t, want, stem(in), in)
	}
}

func TestOutputDirs_UniqueNames(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   []string
	}{
		{
			name:   "distinct stems",
			inputs: []string{"x/users.csv", "x/orders.csv"},
			want:   []string{"users", "orders"},
		},
		{
			name:   "repeated stem",
			inputs: []string{"x/a.csv", "y/a.csv.gz", "z/a.xz"},
			want:   []string{"a", "a-2", "a-3"},
		},
		{
			name:   "suffix clashes with a real stem",
			inputs: []string{"x/a.csv", "y/a.csv.gz", "z/a-2.csv"},
			want:   []string{"a", "a-2", "a-2-2"},
		},
		{
			name:   "real stem comes first",
			inputs: []string{"z/a-2.csv", "x/a.csv", "y/a.csv.gz"},
			want:   []string{"a-2", "a", "a-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dirs := outputDirs(tt.inputs)
			got := make([]string, len(tt.inputs))
			for i, in := range tt.inputs {
				got[i] = dirs[in]
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
