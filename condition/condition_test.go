package condition

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/maastricht-university/turn-features/textgrid"
)

func sampleTable() *Table {
	return NewTable([][]string{
		{"List1", "List2", ""},
		{"3", "07", "12.0"},
		{"T", "D", "T"}, // item 01
		{"D", "T", "D"}, // item 02
	})
}

func TestNewTableColumnNames(t *testing.T) {
	tab := sampleTable()
	assert.Equal(t, []string{"List1", "List2", "2"}, tab.Columns)
}

func TestResolveList(t *testing.T) {
	tab := sampleTable()
	for _, id := range []string{"7", "07", " 7 "} {
		got, err := ResolveList(id, tab)
		require.NoError(t, err, id)
		assert.Equal(t, List{Index: 1, Name: "List2"}, got)
	}

	got, err := ResolveList("03", tab)
	require.NoError(t, err)
	assert.Equal(t, List{Index: 0, Name: "List1"}, got)

	got, err = ResolveList("12", tab)
	require.NoError(t, err)
	assert.Equal(t, List{Index: 2, Name: "2"}, got)

	_, err = ResolveList("99", tab)
	var nf *ParticipantNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "99", nf.ParticipantID)
}

func TestResolveListRepeatedColumnNames(t *testing.T) {
	tab := NewTable([][]string{
		{"List", "List", "", "2"},
		{"1", "2", "3", "4"},
		{"T", "D", "T", "D"},
	})
	assert.Equal(t, []string{"List", "List", "2", "2"}, tab.Columns)

	second, err := ResolveList("2", tab)
	require.NoError(t, err)
	assert.Equal(t, List{Index: 1, Name: "List"}, second)

	fourth, err := ResolveList("04", tab)
	require.NoError(t, err)
	assert.Equal(t, 3, fourth.Index)

	turns := &textgrid.Tier{Name: textgrid.TierTurns, Entries: []textgrid.Interval{{Start: 0, End: 1, Label: "R010"}}}
	cond, err := Materialize(turns, second, tab)
	require.NoError(t, err)
	assert.Equal(t, "D", cond.Entries[0].Label)
}

func turnsTier() *textgrid.Tier {
	return &textgrid.Tier{Name: textgrid.TierTurns, Entries: []textgrid.Interval{
		{Start: 0, End: 1, Label: "Q010"},
		{Start: 1.2, End: 3, Label: "R010"},
		{Start: 3.5, End: 4, Label: "Q021"},
		{Start: 4.1, End: 6, Label: "R021"},
	}}
}

func TestMaterialize(t *testing.T) {
	cond, err := Materialize(turnsTier(), List{Index: 1, Name: "List2"}, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, textgrid.TierCondition, cond.Name)
	assert.Equal(t, []textgrid.Interval{
		{Start: 1.2, End: 3, Label: "D"},
		{Start: 4.1, End: 6, Label: "T"},
	}, cond.Entries)
}

func TestMaterializeOutOfRange(t *testing.T) {
	turns := &textgrid.Tier{Name: textgrid.TierTurns, Entries: []textgrid.Interval{{Start: 0, End: 1, Label: "R090"}}}
	_, err := Materialize(turns, List{Index: 0, Name: "List1"}, sampleTable())
	var ce *CellError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 10, ce.Row)
	assert.Equal(t, "List1", ce.List)
}

func TestMaterializeTrimsTurnLabels(t *testing.T) {
	turns := &textgrid.Tier{Name: textgrid.TierTurns, Entries: []textgrid.Interval{
		{Start: 0, End: 1, Label: " Q010"},
		{Start: 1.2, End: 3, Label: "R010 "},
		{Start: 3.5, End: 4, Label: "\tR021"},
	}}
	cond, err := Materialize(turns, List{Index: 0, Name: "List1"}, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, []textgrid.Interval{
		{Start: 1.2, End: 3, Label: "T"},
		{Start: 3.5, End: 4, Label: "D"},
	}, cond.Entries)
}

func TestAttachIsIdempotent(t *testing.T) {
	set := textgrid.NewTierSet(0, 6)
	set.Put(turnsTier())

	list := List{Index: 0, Name: "List1"}
	once, err := Attach(set, list, sampleTable())
	require.NoError(t, err)
	twice, err := Attach(once, list, sampleTable())
	require.NoError(t, err)

	a, _ := once.Tier(textgrid.TierCondition)
	b, _ := twice.Tier(textgrid.TierCondition)
	assert.Equal(t, a, b)
	assert.Equal(t, once.Names(), twice.Names())
	assert.False(t, set.Has(textgrid.TierCondition))
}

func TestLoadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cond.csv")
	require.NoError(t, os.WriteFile(path, []byte("L1,L2\n1,2\nT,D\n"), 0o644))

	tab, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, tab.Columns)
	v, ok := tab.Cell(1, 2)
	assert.True(t, ok)
	assert.Equal(t, "D", v)
}

func TestLoadTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cond.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"List1", "List2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, 7}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"T", "D"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tab, err := LoadTable(path)
	require.NoError(t, err)
	list, err := ResolveList("07", tab)
	require.NoError(t, err)
	assert.Equal(t, "List2", list.Name)
}
