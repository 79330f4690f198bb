/*
 * @module service/matcher/filename_matcher
 * @description 依上传档名推断报表种类：词元子集匹配、单复数标准化匹配、模糊比对与默认值
 * @architecture 策略分层模式 - 各层依序尝试，第一个产生候选的层即决定结果
 * @documentReference SPEC_FULL.md
 * @stateFlow 档名 -> 小写化 -> 切分词元 -> 子集匹配 -> 标准化匹配 -> 模糊比对 -> 默认值
 * @rules
 *   - 候选种类的所有词元都必须出现在档名词元中
 *   - 多个候选同时匹配时选择识别字最长者，长度相同取较早的候选
 *   - 模糊比对相似度门槛为 0.6
 *   - 无法匹配时返回第一个候选且 matched 为 false
 * @dependencies golang.org/x/text/cases, github.com/pmezard/go-difflib
 * @refs service/meta/report_schema.go, api/controllers/meta_controller.go
 */

package matcher

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FuzzyCutoff 模糊比对的最低相似度
const FuzzyCutoff = 0.6

// Tier 匹配层级
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierNormalized
	TierFuzzy
)

// String 返回层级名称
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "default"
	}
}

// Result 匹配结果
type Result struct {
	Key     string  `json:"report_type"`
	Matched bool    `json:"matched"`
	Tier    Tier    `json:"-"`
	Score   float64 `json:"score,omitempty"`
}

// tokenSeparator 档名切分规则：底线、数字与句点
var tokenSeparator = regexp.MustCompile(`[_\d.]+`)

// lower 小写转换器，cases.Caser 非并发安全，每次调用重新建立
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Match 依档名推断报表种类
func Match(filename string, candidates []string) (string, bool) {
	r := MatchDetail(filename, candidates)
	return r.Key, r.Matched
}

// MatchDetail 依档名推断报表种类并返回匹配层级
func MatchDetail(filename string, candidates []string) Result {
	if len(candidates) == 0 {
		return Result{Tier: TierNone}
	}

	name := lower(filename)
	tokens := tokenize(name)

	if key, ok := longestSubset(tokens, candidates, identity); ok {
		return Result{Key: key, Matched: true, Tier: TierExact}
	}
	if key, ok := longestSubset(normalizeSet(tokens), candidates, normalizeToken); ok {
		return Result{Key: key, Matched: true, Tier: TierNormalized}
	}
	if key, score, ok := closestMatch(name, candidates); ok {
		return Result{Key: key, Matched: true, Tier: TierFuzzy, Score: score}
	}
	return Result{Key: candidates[0], Matched: false, Tier: TierNone}
}

// tokenize 将档名切分为词元集合
func tokenize(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenSeparator.Split(name, -1) {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

func identity(s string) string { return s }

// normalizeToken 去除词元结尾的单一 s，单字元词元保持不变
func normalizeToken(tok string) string {
	if utf8.RuneCountInString(tok) > 1 && strings.HasSuffix(tok, "s") {
		return tok[:len(tok)-1]
	}
	return tok
}

func normalizeSet(tokens map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for tok := range tokens {
		out[normalizeToken(tok)] = struct{}{}
	}
	return out
}

// longestSubset 找出词元全部包含于档名词元的候选中识别字最长者
func longestSubset(tokens map[string]struct{}, candidates []string, norm func(string) string) (string, bool) {
	best := ""
	found := false
	for _, key := range candidates {
		if !containsAll(tokens, strings.Split(lower(key), "_"), norm) {
			continue
		}
		if !found || len(key) > len(best) {
			best = key
			found = true
		}
	}
	return best, found
}

func containsAll(tokens map[string]struct{}, keyTokens []string, norm func(string) string) bool {
	for _, kt := range keyTokens {
		if _, ok := tokens[norm(kt)]; !ok {
			return false
		}
	}
	return true
}

// closestMatch 以字元序列相似度比对整个档名与候选识别字，取分数最高者，同分时取字典序较大者
func closestMatch(name string, candidates []string) (string, float64, bool) {
	word := chars(name)
	best := ""
	bestScore := 0.0
	found := false
	for _, key := range candidates {
		m := difflib.NewMatcher(chars(lower(key)), word)
		if m.RealQuickRatio() < FuzzyCutoff || m.QuickRatio() < FuzzyCutoff {
			continue
		}
		score := m.Ratio()
		if score < FuzzyCutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && key > best) {
			best, bestScore, found = key, score, true
		}
	}
	return best, bestScore, found
}

// chars 将字符串拆分为单一字元组成的序列
func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
