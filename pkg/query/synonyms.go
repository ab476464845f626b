package query

import (
	"fmt"
	"sort"
)

// Synonyms maps keywords to equivalence groups.
//
// Lookup is exact string match. A canonical keyword resolves to its group;
// any other surface form of a group resolves to that same group, so
// 住み替え and 移住 search for the same thing. Unknown words form a group of
// their own.
type Synonyms struct {
	groups  map[string]Group
	reverse map[string]string
}

var defaultTable = map[string][]string{
	"移住":  {"移住", "住み替え", "移転"},
	"空き家": {"空き家", "空家"},
}

// extendedTable covers the common topics of municipal bulletins.
var extendedTable = map[string][]string{
	"移住":   {"移住", "住み替え", "移転", "転入", "引越し"},
	"空き家":  {"空き家", "空家", "空室", "空屋"},
	"子育て":  {"子育て", "育児", "保育", "子ども", "児童"},
	"高齢者":  {"高齢者", "シニア", "老人", "お年寄り", "高齢化"},
	"福祉":   {"福祉", "社会福祉", "福祉サービス", "福祉施設"},
	"防災":   {"防災", "災害", "地震", "避難", "防火", "防犯"},
	"健康":   {"健康", "医療", "病院", "診療", "検診"},
	"教育":   {"教育", "学校", "小学校", "中学校", "高校", "学習"},
	"環境":   {"環境", "エコ", "リサイクル", "ごみ", "廃棄物"},
	"交通":   {"交通", "バス", "電車", "公共交通", "道路"},
	"地域":   {"地域", "自治会", "町内会", "コミュニティ"},
	"観光":   {"観光", "旅行", "観光地", "名所", "観光案内"},
	"産業":   {"産業", "工業", "商業", "農業", "漁業"},
	"雇用":   {"雇用", "就職", "求人", "仕事", "労働"},
	"税金":   {"税金", "住民税", "固定資産税", "納税"},
	"行政":   {"行政", "役所", "市役所", "町役場", "区役所"},
	"補助金":  {"補助金", "助成金", "給付金", "支援金"},
	"文化":   {"文化", "伝統", "祭り", "イベント", "文化財"},
	"スポーツ": {"スポーツ", "運動", "体育", "部活動"},
	"住宅":   {"住宅", "住まい", "家", "住居", "マンション"},
}

// Synonym table presets.
const (
	PresetDefault  = "default"
	PresetExtended = "extended"
)

// Presets lists the names accepted by WithPreset.
var Presets = []string{PresetDefault, PresetExtended}

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() *Synonyms {
	return NewSynonyms(defaultTable)
}

// WithDefaults returns the built-in table extended by extra. Entries of
// extra replace built-in groups with the same canonical keyword.
func WithDefaults(extra map[string][]string) *Synonyms {
	return overlay(defaultTable, extra)
}

// WithPreset returns the named preset extended by extra. An empty name
// selects PresetDefault.
func WithPreset(name string, extra map[string][]string) (*Synonyms, error) {
	switch name {
	case "", PresetDefault:
		return overlay(defaultTable, extra), nil
	case PresetExtended:
		return overlay(extendedTable, extra), nil
	default:
		return nil, fmt.Errorf("unknown synonym preset %q", name)
	}
}

func overlay(base, extra map[string][]string) *Synonyms {
	table := make(map[string][]string, len(base)+len(extra))
	for k, v := range base {
		table[k] = v
	}
	for k, v := range extra {
		table[k] = v
	}
	return NewSynonyms(table)
}

// NewSynonyms builds a table from canonical keyword to surface forms. The
// canonical keyword is expected to be part of its own group.
func NewSynonyms(table map[string][]string) *Synonyms {
	s := &Synonyms{
		groups:  make(map[string]Group, len(table)),
		reverse: make(map[string]string),
	}

	canonicals := make([]string, 0, len(table))
	for canonical, forms := range table {
		s.groups[canonical] = append(Group(nil), forms...)
		canonicals = append(canonicals, canonical)
	}
	// deterministic when a form is listed under more than one keyword
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		for _, form := range table[canonical] {
			if _, isCanonical := s.groups[form]; isCanonical {
				continue
			}
			if _, seen := s.reverse[form]; !seen {
				s.reverse[form] = canonical
			}
		}
	}
	return s
}

// Lookup returns the group for word.
func (s *Synonyms) Lookup(word string) Group {
	if g, ok := s.groups[word]; ok {
		return g
	}
	if canonical, ok := s.reverse[word]; ok {
		return s.groups[canonical]
	}
	return Group{word}
}

// Expand returns one group per word, in order.
func (s *Synonyms) Expand(words []string) []Group {
	groups := make([]Group, 0, len(words))
	for _, w := range words {
		groups = append(groups, s.Lookup(w))
	}
	return groups
}
