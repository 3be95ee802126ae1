package manifest_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/TimothyStiles/gsearch/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []manifest.Row {
	return []manifest.Row{
		{InternalLocation: "a.sig", MD5: "aaa", Ksize: 21, Moltype: "DNA", Scaled: 1000, Name: "genomeA desc"},
		{InternalLocation: "b.sig", MD5: "bbb", Ksize: 31, Moltype: "DNA", Scaled: 1000, Name: "genomeB desc"},
		{InternalLocation: "c.sig", MD5: "ccc", Ksize: 21, Moltype: "protein", Scaled: 100, Name: "genomeC desc"},
	}
}

func TestSelectNarrowsByKsize(t *testing.T) {
	m := manifest.New(sampleRows())
	rows := m.Select(manifest.Criteria{Ksize: 21}).Rows()
	assert.Len(t, rows, 2)
}

func TestSelectIsCumulative(t *testing.T) {
	m := manifest.New(sampleRows())
	rows := m.Select(manifest.Criteria{Ksize: 21}).Select(manifest.Criteria{Moltype: "protein"}).Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "ccc", rows[0].MD5)
}

func TestFilterRows(t *testing.T) {
	m := manifest.New(sampleRows())
	rows := m.FilterRows(func(r manifest.Row) bool { return r.Scaled == 1000 }).Rows()
	assert.Len(t, rows, 2)
}

func TestLocations(t *testing.T) {
	m := manifest.New(sampleRows())
	locs := m.Select(manifest.Criteria{Ksize: 21}).Locations()
	assert.ElementsMatch(t, []string{"a.sig", "c.sig"}, locs)
}

func TestToPicklistAndContains(t *testing.T) {
	m := manifest.New(sampleRows())
	pl := m.Select(manifest.Criteria{Ksize: 21}).ToPicklist()
	assert.True(t, pl.Matches(manifest.Row{MD5: "aaa"}))
	assert.False(t, pl.Matches(manifest.Row{MD5: "bbb"}))
	assert.True(t, m.Select(manifest.Criteria{Ksize: 21}).Contains("aaa"))
	assert.False(t, m.Select(manifest.Criteria{Ksize: 21}).Contains("bbb"))
}

func TestAddDeduplicatesByLocationAndMD5(t *testing.T) {
	a := manifest.New(sampleRows()[:2])
	b := manifest.New(sampleRows()[1:])
	combined := a.Add(b)
	assert.Len(t, combined.Rows(), 3)
}

func TestPicklistIdentMatchesAccessionPrefix(t *testing.T) {
	pl := manifest.NewPicklist(manifest.PicklistIdent, []string{"genomeA"})
	assert.True(t, pl.Matches(manifest.Row{Name: "genomeA desc text"}))
	assert.False(t, pl.Matches(manifest.Row{Name: "genomeB desc text"}))
}

func TestCSVRoundTrip(t *testing.T) {
	rows := sampleRows()
	var buf bytes.Buffer
	require.NoError(t, manifest.WriteCSV(&buf, rows))

	parsed, err := manifest.ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(rows))
	assert.Equal(t, rows[0].MD5, parsed[0].MD5)
	assert.Equal(t, rows[0].Ksize, parsed[0].Ksize)
}

func TestReadCSVSkipsLeadingComment(t *testing.T) {
	csvText := "# comment\ninternal_location,md5,md5short,ksize,moltype,num,scaled,n_hashes,seed,with_abundance,name,filename\na.sig,aaa,aaaaaaaa,21,DNA,0,1000,10,42,false,genomeA,a.fa\n"
	rows, err := manifest.ReadCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "aaa", rows[0].MD5)
}
