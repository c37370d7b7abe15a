package segment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/turn-features/textgrid"
)

type iv = textgrid.Interval

func TestFromPauses(t *testing.T) {
	cases := []struct {
		name  string
		words []iv
		opts  Options
		want  []iv
	}{
		{
			name:  "blank closes span",
			words: []iv{{Start: 0, End: 1, Label: "A"}, {Start: 1, End: 2, Label: ""}, {Start: 2, End: 3, Label: "B"}, {Start: 3, End: 4, Label: "C"}, {Start: 4, End: 5, Label: ""}},
			opts:  DefaultOptions(),
			want:  []iv{{Start: 0, End: 1, Label: "A"}, {Start: 2, End: 4, Label: "BC"}},
		},
		{
			name:  "all blank",
			words: []iv{{Start: 0, End: 1, Label: ""}, {Start: 1, End: 2, Label: " "}},
			opts:  DefaultOptions(),
			want:  nil,
		},
		{
			name:  "empty input",
			words: nil,
			opts:  DefaultOptions(),
			want:  nil,
		},
		{
			name:  "span open at end of input",
			words: []iv{{Start: 0, End: 1, Label: ""}, {Start: 1, End: 2, Label: " 가 "}, {Start: 2, End: 3, Label: "나"}},
			opts:  DefaultOptions(),
			want:  []iv{{Start: 1, End: 3, Label: "가나"}},
		},
		{
			name:  "short pause breaks without gating",
			words: []iv{{Start: 0, End: 1, Label: "A"}, {Start: 1, End: 1.05, Label: ""}, {Start: 1.05, End: 2, Label: "B"}},
			opts:  DefaultOptions(),
			want:  []iv{{Start: 0, End: 1, Label: "A"}, {Start: 1.05, End: 2, Label: "B"}},
		},
		{
			name:  "short pause bridged with gating",
			words: []iv{{Start: 0, End: 1, Label: "A"}, {Start: 1, End: 1.05, Label: ""}, {Start: 1.05, End: 2, Label: "B"}, {Start: 2, End: 3, Label: ""}, {Start: 3, End: 4, Label: "C"}},
			opts:  Options{PauseThreshold: 0.2, GateOnThreshold: true},
			want:  []iv{{Start: 0, End: 2, Label: "AB"}, {Start: 3, End: 4, Label: "C"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromPauses(tc.words, tc.opts))
		})
	}
}

func TestRebuild(t *testing.T) {
	in := textgrid.NewTierSet(0, 5)
	in.Put(&textgrid.Tier{Name: textgrid.TierWords, Entries: []iv{{Start: 0, End: 1, Label: "A"}, {Start: 1, End: 2, Label: ""}, {Start: 2, End: 3, Label: "B"}}})
	in.Put(&textgrid.Tier{Name: textgrid.TierPhones, Entries: []iv{{Start: 0, End: 1, Label: "a"}}})

	out, err := Rebuild(in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{textgrid.TierTurns, textgrid.TierUtterances, textgrid.TierFPs}, out.Names())
	assert.Equal(t, 5.0, out.MaxTimestamp)

	utts, err := out.Tier(textgrid.TierUtterances)
	require.NoError(t, err)
	assert.Equal(t, []iv{{Start: 0, End: 1, Label: "A"}, {Start: 2, End: 3, Label: "B"}}, utts.Entries)

	turns, _ := out.Tier(textgrid.TierTurns)
	assert.Empty(t, turns.Entries)

	assert.True(t, in.Has(textgrid.TierWords), "input is not mutated")
}

func TestRebuildMissingWords(t *testing.T) {
	in := textgrid.NewTierSet(0, 5)
	in.Put(textgrid.EmptyTier(textgrid.TierPhones))

	_, err := Rebuild(in, DefaultOptions())
	var mt *textgrid.MissingTierError
	require.True(t, errors.As(err, &mt))
	assert.Equal(t, textgrid.TierWords, mt.Tier)
}
