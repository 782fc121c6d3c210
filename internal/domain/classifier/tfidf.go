package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer kinds and defaults.
const (
	KindTFIDF = "tfidf_vectorizer"

	normL1   = "l1"
	normL2   = "l2"
	normNone = ""

	// sklearnTokenPattern is the default pattern exporters write out. RE2 has
	// no (?u) flag and an ASCII-only \w, so it is swapped for defaultTokenPattern.
	sklearnTokenPattern = `(?u)\b\w\w+\b`
	defaultTokenPattern = `[\p{L}\p{M}\p{N}_]{2,}`
	unicodeFlag         = "(?u)"
)

// tfidfParams mirrors the "params" object of a tfidf_vectorizer step.
type tfidfParams struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase"`
	TokenPattern string         `json:"token_pattern"`
	NgramRange   []int          `json:"ngram_range"`
	StopWords    []string       `json:"stop_words"`
	UseIDF       *bool          `json:"use_idf"`
	SublinearTF  bool           `json:"sublinear_tf"`
	Binary       bool           `json:"binary"`
	// Norm is absent (l2), null (no normalization) or "l1"/"l2".
	Norm json.RawMessage `json:"norm"`
}

// TFIDFVectorizer turns raw text into L1/L2-normalized TF-IDF rows over a
// fixed vocabulary. It is immutable after construction.
type TFIDFVectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	tokenRE     *regexp.Regexp
	ngramMin    int
	ngramMax    int
	stopWords   map[string]struct{}
	useIDF      bool
	sublinearTF bool
	binary      bool
	norm        string
}

func newTFIDFVectorizer(raw json.RawMessage) (*TFIDFVectorizer, error) {
	var p tfidfParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	v := &TFIDFVectorizer{
		vocabulary:  p.Vocabulary,
		idf:         p.IDF,
		lowercase:   true,
		ngramMin:    1,
		ngramMax:    1,
		useIDF:      true,
		sublinearTF: p.SublinearTF,
		binary:      p.Binary,
		norm:        normL2,
	}
	if p.Lowercase != nil {
		v.lowercase = *p.Lowercase
	}
	if p.UseIDF != nil {
		v.useIDF = *p.UseIDF
	}
	norm, err := decodeNorm(p.Norm)
	if err != nil {
		return nil, err
	}
	if norm != nil {
		v.norm = *norm
	}

	if len(v.vocabulary) == 0 {
		return nil, fmt.Errorf("%w: tfidf vocabulary is empty", ErrArtifactIncompatible)
	}
	seen := make([]bool, len(v.vocabulary))
	for term, idx := range v.vocabulary {
		if idx < 0 || idx >= len(v.vocabulary) {
			return nil, fmt.Errorf("%w: tfidf column %d for %q out of range", ErrArtifactIncompatible, idx, term)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: tfidf column %d assigned twice", ErrArtifactIncompatible, idx)
		}
		seen[idx] = true
	}

	if v.useIDF {
		if len(v.idf) != len(v.vocabulary) {
			return nil, fmt.Errorf("%w: tfidf has %d idf weights for %d terms",
				ErrArtifactIncompatible, len(v.idf), len(v.vocabulary))
		}
		for i, w := range v.idf {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: tfidf idf[%d] is not finite", ErrArtifactIncompatible, i)
			}
		}
	}

	switch v.norm {
	case normL1, normL2, normNone:
	default:
		return nil, fmt.Errorf("%w: unsupported tfidf norm %q", ErrArtifactIncompatible, v.norm)
	}

	if len(p.NgramRange) > 0 {
		if len(p.NgramRange) != 2 || p.NgramRange[0] < 1 || p.NgramRange[1] < p.NgramRange[0] {
			return nil, fmt.Errorf("%w: invalid ngram_range %v", ErrArtifactIncompatible, p.NgramRange)
		}
		v.ngramMin, v.ngramMax = p.NgramRange[0], p.NgramRange[1]
	}

	re, err := compileTokenPattern(p.TokenPattern)
	if err != nil {
		return nil, err
	}
	v.tokenRE = re

	if len(p.StopWords) > 0 {
		v.stopWords = make(map[string]struct{}, len(p.StopWords))
		for _, w := range p.StopWords {
			v.stopWords[w] = struct{}{}
		}
	}

	return v, nil
}

// decodeNorm returns nil when the field is absent. A JSON null means no
// normalization.
func decodeNorm(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	norm := normNone
	if string(bytes.TrimSpace(raw)) == "null" {
		return &norm, nil
	}
	if err := json.Unmarshal(raw, &norm); err != nil {
		return nil, fmt.Errorf("%w: tfidf norm must be a string or null: %w", ErrArtifactIncompatible, err)
	}
	return &norm, nil
}

func compileTokenPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" || pattern == sklearnTokenPattern {
		return regexp.MustCompile(defaultTokenPattern), nil
	}
	re, err := regexp.Compile(strings.TrimPrefix(pattern, unicodeFlag))
	if err != nil {
		return nil, fmt.Errorf("%w: token_pattern: %w", ErrArtifactIncompatible, err)
	}
	if re.NumSubexp() > 1 {
		return nil, fmt.Errorf("%w: token_pattern has more than one capturing group", ErrArtifactIncompatible)
	}
	return re, nil
}

// NumFeatures returns the vocabulary size.
func (v *TFIDFVectorizer) NumFeatures() int { return len(v.vocabulary) }

// Transform vectorizes every text. Row i belongs to texts[i].
func (v *TFIDFVectorizer) Transform(texts []string) []SparseVector {
	rows := make([]SparseVector, len(texts))
	for i, text := range texts {
		rows[i] = v.transformOne(text)
	}
	return rows
}

func (v *TFIDFVectorizer) transformOne(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.analyze(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for k, idx := range indices {
		tf := counts[idx]
		if v.binary {
			tf = 1
		}
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		if v.useIDF {
			tf *= v.idf[idx]
		}
		values[k] = tf
	}

	normalize(values, v.norm)
	return SparseVector{Indices: indices, Values: values}
}

// analyze lowercases, tokenizes, drops stop words and expands n-grams.
func (v *TFIDFVectorizer) analyze(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}

	var tokens []string
	if v.tokenRE.NumSubexp() == 1 {
		for _, m := range v.tokenRE.FindAllStringSubmatch(text, -1) {
			tokens = append(tokens, m[1])
		}
	} else {
		tokens = v.tokenRE.FindAllString(text, -1)
	}

	if v.stopWords != nil {
		kept := tokens[:0]
		for _, t := range tokens {
			if _, stop := v.stopWords[t]; !stop {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}

	if v.ngramMax == 1 {
		return tokens
	}

	var terms []string
	if v.ngramMin == 1 {
		terms = append(terms, tokens...)
	}
	for n := max(v.ngramMin, 2); n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// normalize scales values in place. A zero vector is left untouched.
func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case normL2:
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case normL1:
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
