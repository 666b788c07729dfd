package pantry

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// 修飾詞詞彙表，分四組。只做完整 token 比對，不做子字串或詞幹處理。
// 像 ground、smoked、whole、baby 這類會改變食材本身的詞刻意不收錄。
var (
	// 處理方式
	preparationQualifiers = []string{
		"diced", "chopped", "minced", "sliced", "grated", "shredded", "crushed",
		"peeled", "cubed", "julienned", "halved", "quartered", "mashed", "trimmed",
		"rinsed", "drained", "beaten", "melted", "softened", "sifted", "toasted",
		"crumbled", "zested", "pitted", "seeded", "deveined", "cored", "torn",
		"cut", "deboned", "butterflied", "shelled", "hulled", "stemmed",
	}

	// 狀態
	stateQualifiers = []string{
		"fresh", "frozen", "cooked", "uncooked", "raw", "dried", "canned", "thawed",
		"chilled", "ripe", "leftover", "refrigerated", "prepared", "packed",
	}

	// 尺寸與描述
	sizeQualifiers = []string{
		"boneless", "skinless", "large", "small", "medium", "lrg", "lg", "med",
		"sm", "jumbo", "thinly", "thickly", "finely", "roughly", "coarsely",
		"freshly", "lightly", "very", "extra-large",
	}

	// 品質
	qualityQualifiers = []string{
		"organic", "unsalted", "low-sodium", "reduced-sodium", "reduced-fat",
		"low-fat", "fat-free", "free-range", "grass-fed", "premium", "natural",
		"good-quality", "high-quality", "best-quality", "homemade", "store-bought",
	}

	qualifiers = buildVocabulary(preparationQualifiers, stateQualifiers, sizeQualifiers, qualityQualifiers)

	// 未標示時的預設形態，"eggs" 指的是 "whole eggs" 而不是 "duck eggs"
	baseFormWords = buildVocabulary([]string{"whole"})

	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
)

func buildVocabulary(groups ...[]string) map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, group := range groups {
		for _, w := range group {
			vocab[strings.ToLower(w)] = struct{}{}
		}
	}
	return vocab
}

// IsQualifier token 是否為修飾詞（已小寫）
func IsQualifier(token string) bool {
	_, ok := qualifiers[token]
	return ok
}

// Fold 小寫、去除前後空白並做 NFC 正規化，索引鍵與查詢都使用此形式
func Fold(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// Normalize 去除括號補充、逗號後的子句與修飾詞，還原食材的核心名稱。
//
//	"English cucumber, diced"  -> "english cucumber"
//	"diced onions"             -> "onions"
//	"lime juice"               -> "lime juice"
//
// 逗號切割在修飾詞過濾之前執行；若所有 token 都被移除，回傳過濾前的字串。
func Normalize(name string) string {
	if name == "" {
		return name
	}

	s := Fold(name)
	s = strings.TrimSpace(parentheticalPattern.ReplaceAllString(s, ""))

	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	tokens := strings.Fields(s)
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if IsQualifier(t) {
			continue
		}
		kept = append(kept, t)
	}

	if len(kept) == 0 {
		return s
	}
	return strings.Join(kept, " ")
}

// IsBaseFormOf key 去掉預設形態詞（whole）後，token 與 query 完全相同
func IsBaseFormOf(key, query string) bool {
	qt := strings.Fields(query)
	kt := make([]string, 0, len(qt)+1)
	for _, t := range strings.Fields(key) {
		if _, ok := baseFormWords[t]; ok {
			continue
		}
		kt = append(kt, t)
	}
	return len(qt) > 0 && slices.Equal(kt, qt)
}
