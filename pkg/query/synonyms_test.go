package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSynonyms(t *testing.T) {
	s := DefaultSynonyms()

	tests := []struct {
		word string
		want Group
	}{
		{"移住", Group{"移住", "住み替え", "移転"}},
		{"住み替え", Group{"移住", "住み替え", "移転"}},
		{"移転", Group{"移住", "住み替え", "移転"}},
		{"空き家", Group{"空き家", "空家"}},
		{"空家", Group{"空き家", "空家"}},
		{"観光", Group{"観光"}},
		// exact match only
		{"移住者", Group{"移住者"}},
		{"空き", Group{"空き"}},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Lookup(tt.word))
		})
	}
}

func TestExpandKeepsOrder(t *testing.T) {
	s := DefaultSynonyms()
	groups := s.Expand([]string{"観光", "空家", "移住"})
	assert.Equal(t, []Group{
		{"観光"},
		{"空き家", "空家"},
		{"移住", "住み替え", "移転"},
	}, groups)
	assert.Empty(t, s.Expand(nil))
}

func TestNewSynonymsDoesNotAliasInput(t *testing.T) {
	table := map[string][]string{"福祉": {"福祉", "社会福祉"}}
	s := NewSynonyms(table)
	table["福祉"][1] = "changed"
	assert.Equal(t, Group{"福祉", "社会福祉"}, s.Lookup("福祉"))
}

func TestNewSynonymsCanonicalWinsOverReverse(t *testing.T) {
	s := NewSynonyms(map[string][]string{
		"健康": {"健康", "医療"},
		"医療": {"医療", "病院"},
	})
	assert.Equal(t, Group{"医療", "病院"}, s.Lookup("医療"))
	assert.Equal(t, Group{"医療", "病院"}, s.Lookup("病院"))
}

func TestWithDefaults(t *testing.T) {
	s := WithDefaults(map[string][]string{
		"子育て": {"子育て", "育児", "保育"},
		"空き家": {"空き家", "空家", "空屋"},
	})
	assert.Equal(t, Group{"子育て", "育児", "保育"}, s.Lookup("育児"))
	assert.Equal(t, Group{"空き家", "空家", "空屋"}, s.Lookup("空屋"))
	assert.Equal(t, Group{"移住", "住み替え", "移転"}, s.Lookup("住み替え"))

	// the built-in table is untouched
	assert.Equal(t, Group{"空き家", "空家"}, DefaultSynonyms().Lookup("空き家"))
}

func TestWithPreset(t *testing.T) {
	tests := []struct {
		preset string
		word   string
		want   Group
	}{
		{"", "住み替え", Group{"移住", "住み替え", "移転"}},
		{PresetDefault, "育児", Group{"育児"}},
		{PresetExtended, "引越し", Group{"移住", "住み替え", "移転", "転入", "引越し"}},
		{PresetExtended, "育児", Group{"子育て", "育児", "保育", "子ども", "児童"}},
		{PresetExtended, "市役所", Group{"行政", "役所", "市役所", "町役場", "区役所"}},
		{PresetExtended, "空屋", Group{"空き家", "空家", "空室", "空屋"}},
	}

	for _, tt := range tests {
		t.Run(tt.preset+"/"+tt.word, func(t *testing.T) {
			s, err := WithPreset(tt.preset, nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, s.Lookup(tt.word))
		})
	}
}

func TestWithPresetOverlay(t *testing.T) {
	s, err := WithPreset(PresetExtended, map[string][]string{"防災": {"防災", "減災"}})
	assert.NoError(t, err)
	assert.Equal(t, Group{"防災", "減災"}, s.Lookup("減災"))
	assert.Equal(t, Group{"地震"}, s.Lookup("地震"))
	assert.Equal(t, Group{"観光", "旅行", "観光地", "名所", "観光案内"}, s.Lookup("名所"))
}

func TestWithPresetUnknown(t *testing.T) {
	_, err := WithPreset("full", nil)
	assert.ErrorContains(t, err, "full")
}

func TestExtendedTableHasTwentyGroups(t *testing.T) {
	assert.Len(t, extendedTable, 20)
	for canonical, forms := range extendedTable {
		assert.Contains(t, forms, canonical)
	}
}
