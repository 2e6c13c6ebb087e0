package catalogue

import (
	"os"
	"path/filepath"
	"testing"

	"cinemai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description\n"

func TestParseFullRow(t *testing.T) {
	raw := header + `s1,Movie,Dick Johnson Is Dead,Kirsten Johnson,,United States,"September 25, 2021",2020,PG-13,90 min,Documentaries,"As her father nears the end of his life, filmmaker Kirsten Johnson stages his death."` + "\n"

	records := Parse(raw)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "s1", r.ShowID)
	assert.Equal(t, models.KindMovie, r.Kind)
	assert.Equal(t, "Dick Johnson Is Dead", r.Title)
	assert.Equal(t, "September 25, 2021", r.DateAdded)
	assert.Equal(t, 2020, r.ReleaseYear)
	assert.Equal(t, "Documentaries", r.ListedIn)
	assert.Contains(t, r.Description, "As her father nears the end of his life, filmmaker")
}

func TestParseQuotedFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"comma and newline", "s1,Movie,\"a,b\nc\"\n", "a,b\nc"},
		{"doubled quotes", "s1,Movie,\"say \"\"hi\"\"\"\n", `say "hi"`},
		{"crlf inside quotes", "s1,Movie,\"one\r\ntwo\"\r\n", "one\r\ntwo"},
		{"empty quoted", "s1,Movie,\"\"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Parse(tt.raw)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Title)
		})
	}
}

func TestParseLineTerminators(t *testing.T) {
	for name, raw := range map[string]string{
		"lf":   "s1,Movie,A\ns2,TV Show,B\n",
		"cr":   "s1,Movie,A\rs2,TV Show,B\r",
		"crlf": "s1,Movie,A\r\ns2,TV Show,B\r\n",
		"eof":  "s1,Movie,A\ns2,TV Show,B",
	} {
		t.Run(name, func(t *testing.T) {
			records := Parse(raw)
			require.Len(t, records, 2)
			assert.Equal(t, "A", records[0].Title)
			assert.Equal(t, "B", records[1].Title)
			assert.Equal(t, models.KindSeries, records[1].Kind)
		})
	}
}

func TestParseDropsShortRowsAndBlankLines(t *testing.T) {
	raw := header + "s1,Movie,A\n\n\nlonely\n\ns2,Movie,B\n"

	records, stats := ParseWithStats(raw)
	require.Len(t, records, 2)
	assert.True(t, stats.HeaderRow)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 4, stats.Rows)
	assert.LessOrEqual(t, len(records), stats.Rows-1)
}

func TestParseDefaults(t *testing.T) {
	records := Parse("s9,Something Else\ns10,Movie,T,D,C,X,Y,not-a-year\n")
	require.Len(t, records, 2)

	assert.Equal(t, models.KindMovie, records[0].Kind)
	assert.Equal(t, "", records[0].Title)
	assert.Equal(t, 0, records[0].ReleaseYear)
	assert.Equal(t, "", records[0].Description)

	assert.Equal(t, 0, records[1].ReleaseYear)
}

func TestParseHeaderOnlyWhenSentinel(t *testing.T) {
	records := Parse("id,type,title\ns1,Movie,A\n")
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0].ShowID)
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{"", "\"", "\"unterminated,field\n", ",,,\n", "\r\n\r\n", "a"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) }, "input %q", in)
	}
	records := Parse("\"unterminated,field\nmore")
	assert.Empty(t, records)
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, 2019, parseYear("2019"))
	assert.Equal(t, 2019, parseYear(" 2019abc"))
	assert.Equal(t, 0, parseYear(""))
	assert.Equal(t, 0, parseYear("abc"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"s1,Movie,A,,,,,2021\nbad\n"), 0o644))

	records, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestFeatured(t *testing.T) {
	records := []models.CatalogueRecord{
		{Title: "Old", Kind: models.KindMovie, ReleaseYear: 2010},
		{Title: "Show", Kind: models.KindSeries, ReleaseYear: 2021},
		{Title: "New A", Kind: models.KindMovie, ReleaseYear: 2019},
		{Title: "New B", Kind: models.KindMovie, ReleaseYear: 2022},
	}

	got, ok := Featured(records, func(n int) int { return n - 1 })
	require.True(t, ok)
	assert.Equal(t, "New B", got.Title)

	_, ok = Featured(records[:2], nil)
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	records := []models.CatalogueRecord{
		{Title: "Dark"},
		{Title: "dark"},
		{Title: "Ozark"},
	}

	got, ok := Find(records, "dark")
	require.True(t, ok)
	assert.Equal(t, "dark", got.Title)

	got, ok = Find(records, " OZARK ")
	require.True(t, ok)
	assert.Equal(t, "Ozark", got.Title)

	_, ok = Find(records, "")
	assert.False(t, ok)
	_, ok = Find(records, "Narcos")
	assert.False(t, ok)
}
