package chronology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/chronology"
)

func TestSortNarrative_ChronologicalWithUndatedLast(t *testing.T) {
	text := "03/01/2023 Initial evaluation at Senta Neurosurgery.\n\n" +
		"Records reviewed; no additional dates of service.\n\n" +
		"01/30/2023 Emergency department visit after fall.\n\n" +
		"05/19/2025 Final CPSD follow-up."

	got := chronology.SortNarrative(text)

	want := "01/30/2023 Emergency department visit after fall.\n\n" +
		"03/01/2023 Initial evaluation at Senta Neurosurgery.\n\n" +
		"05/19/2025 Final CPSD follow-up.\n\n" +
		"Records reviewed; no additional dates of service."
	assert.Equal(t, want, got)
}

func TestSortNarrative_StableForSameDate(t *testing.T) {
	text := "02/05/2024 Second visit note.\n\n01/01/2024 Earlier.\n\n02/05/2024 Third visit note."

	got := chronology.ParseEntries(chronology.SortNarrative(text))

	require.Len(t, got, 3)
	assert.Equal(t, "01/01/2024 Earlier.", got[0].Text)
	assert.Equal(t, "02/05/2024 Second visit note.", got[1].Text)
	assert.Equal(t, "02/05/2024 Third visit note.", got[2].Text)
}

func TestParseEntries_RejectsInvalidOrLooseDates(t *testing.T) {
	text := "01/32/2023 Day out of range.\n\n" +
		"  1/5/2023 Single digit month.\n\n" +
		"Seen on 04/04/2023 mid-sentence.\n\n" +
		"04/04/20231 Too many digits.\n\n" +
		"   04/04/2023. Leading spaces are trimmed."

	entries := chronology.ParseEntries(text)

	require.Len(t, entries, 5)
	for _, e := range entries[:4] {
		assert.False(t, e.Dated(), e.Text)
	}
	require.True(t, entries[4].Dated())
	assert.Equal(t, "04/04/2023", entries[4].DateKey())
	assert.Equal(t, "04/04/2023. Leading spaces are trimmed.", entries[4].Text)
}

func TestParseEntries_BlankLinesWithWhitespace(t *testing.T) {
	text := "06/01/2022 First.\r\n  \r\n06/02/2022 Second\ncontinues here.\n\t\n\n\n06/03/2022 Third."

	entries := chronology.ParseEntries(text)

	require.Len(t, entries, 3)
	assert.Equal(t, "06/02/2022 Second\ncontinues here.", entries[1].Text)
}

func TestMerge_ConcatenatesBatches(t *testing.T) {
	got := chronology.Merge([]string{
		"05/01/2023 Batch one late entry.\n\n01/01/2023 Batch one early entry.",
		"",
		"03/01/2023 Batch two entry.",
	})

	assert.Equal(t,
		"01/01/2023 Batch one early entry.\n\n03/01/2023 Batch two entry.\n\n05/01/2023 Batch one late entry.",
		got)
}

func TestSortNarrative_Empty(t *testing.T) {
	assert.Equal(t, "", chronology.SortNarrative("  \n\n "))
}
