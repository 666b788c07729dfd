package pantry

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Scorer 回傳兩個字串的相似度（0-100）
type Scorer func(a, b string) int

const (
	unbaseScale        = 0.95
	partialScale       = 0.90
	longPartialScale   = 0.60
	partialLengthRatio = 1.5
	longLengthRatio    = 8.0
)

// Candidate 比對候選
type Candidate struct {
	Key   string
	Score int
}

// Ratio 以 indel 距離計算的相似度：2*LCS/(len(a)+len(b))
func Ratio(a, b string) int {
	return ratio(process(a), process(b))
}

// PartialRatio 較短字串與較長字串中連續完整 token 視窗的最佳相似度
func PartialRatio(a, b string) int {
	return partialRatio(process(a), process(b))
}

// TokenSortRatio token 排序後的相似度，不受字詞順序影響
func TokenSortRatio(a, b string) int {
	return tokenSortRatio(process(a), process(b), false)
}

// TokenSetRatio 以 token 交集與差集計算，一方為另一方子集時得分 100
func TokenSetRatio(a, b string) int {
	return tokenSetRatio(process(a), process(b), false)
}

// WeightedRatio 綜合評分：長度相近時取 token 排序/集合，
// 長度差距大時改用 token 對齊的部分比對並依比例折扣
func WeightedRatio(a, b string) int {
	pa, pb := process(a), process(b)
	if pa == "" || pb == "" {
		return 0
	}

	base := float64(ratio(pa, pb))
	la, lb := runeLen(pa), runeLen(pb)
	lengthRatio := float64(max(la, lb)) / float64(min(la, lb))

	if lengthRatio < partialLengthRatio {
		tsor := float64(tokenSortRatio(pa, pb, false)) * unbaseScale
		tser := float64(tokenSetRatio(pa, pb, false)) * unbaseScale
		return roundHalfUp(math.Max(base, math.Max(tsor, tser)))
	}

	scale := partialScale
	if lengthRatio > longLengthRatio {
		scale = longPartialScale
	}
	partial := float64(partialRatio(pa, pb)) * scale
	ptsor := float64(tokenSortRatio(pa, pb, true)) * unbaseScale * scale
	ptser := float64(tokenSetRatio(pa, pb, true)) * unbaseScale * scale
	return roundHalfUp(math.Max(math.Max(base, partial), math.Max(ptsor, ptser)))
}

// Extract 以 scorer 對所有 key 評分，依分數遞減（同分依 key 遞增）回傳前 limit 筆；
// limit <= 0 時回傳全部
func Extract(query string, keys []string, scorer Scorer, limit int) []Candidate {
	candidates := make([]Candidate, 0, len(keys))
	for _, k := range keys {
		candidates = append(candidates, Candidate{Key: k, Score: scorer(query, k)})
	}
	sortCandidates(candidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// ExtractOne 取得最高分的 key
func ExtractOne(query string, keys []string, scorer Scorer) (Candidate, bool) {
	var best Candidate
	found := false
	for _, k := range keys {
		score := scorer(query, k)
		if !found || score > best.Score || (score == best.Score && k < best.Key) {
			best = Candidate{Key: k, Score: score}
			found = true
		}
	}
	return best, found
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].Key < c[j].Key
	})
}

// process 小寫、非英數字元換成空白並合併空白
func process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	return roundHalfUp(float64(200*lcsLength(ra, rb)) / float64(len(ra)+len(rb)))
}

func partialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := a, b
	if runeLen(a) > runeLen(b) {
		shorter, longer = b, a
	}

	st, lt := strings.Fields(shorter), strings.Fields(longer)
	n := len(st)
	if n >= len(lt) {
		return ratio(shorter, longer)
	}

	best := 0
	for i := 0; i+n <= len(lt); i++ {
		if r := ratio(shorter, strings.Join(lt[i:i+n], " ")); r > best {
			best = r
		}
		if best == 100 {
			break
		}
	}
	return best
}

func tokenSortRatio(a, b string, partial bool) int {
	sa, sb := sortedTokens(a), sortedTokens(b)
	if partial {
		return partialRatio(sa, sb)
	}
	return ratio(sa, sb)
}

func tokenSetRatio(a, b string, partial bool) int {
	t1, t2 := tokenSet(a), tokenSet(b)
	if len(t1) == 0 || len(t2) == 0 {
		return 0
	}

	var sect, diff12, diff21 []string
	for t := range t1 {
		if _, ok := t2[t]; ok {
			sect = append(sect, t)
		} else {
			diff12 = append(diff12, t)
		}
	}
	for t := range t2 {
		if _, ok := t1[t]; !ok {
			diff21 = append(diff21, t)
		}
	}
	sort.Strings(sect)
	sort.Strings(diff12)
	sort.Strings(diff21)

	sorted := strings.Join(sect, " ")
	combined12 := strings.TrimSpace(sorted + " " + strings.Join(diff12, " "))
	combined21 := strings.TrimSpace(sorted + " " + strings.Join(diff21, " "))

	score := ratio
	if partial {
		if sorted != "" {
			return 100
		}
		score = partialRatio
	}
	return max(score(sorted, combined12), score(sorted, combined21), score(combined12, combined21))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// lcsLength 最長公共子序列長度
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func runeLen(s string) int {
	return len([]rune(s))
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
