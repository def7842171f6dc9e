package engine

import (
	"errors"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/geoinsight/vizrec/internal/utils"
)

// KeywordPack holds the query keyword sets each scoring function matches
// against. Multi-word entries match as substrings; single words match whole
// query tokens so "highest" never triggers "height".
type KeywordPack struct {
	Single       []string `yaml:"single"`
	Point        []string `yaml:"point"`
	Correlation  []string `yaml:"correlation"`
	ThreeD       []string `yaml:"three_d"`
	TopN         []string `yaml:"top_n"`
	Hotspot      []string `yaml:"hotspot"`
	Proportional []string `yaml:"proportional"`
	Measurement  []string `yaml:"measurement"`
}

// DefaultKeywordPack returns the built-in keyword sets.
func DefaultKeywordPack() *KeywordPack {
	return &KeywordPack{
		Single:       []string{"show", "display", "map", "where", "locate"},
		Point:        []string{"location", "locations", "address", "place", "places", "store", "stores", "branch", "office", "restaurant", "nearest", "near"},
		Correlation:  []string{"correlation", "correlate", "versus", "vs", "compare", "comparison", "relationship", "between"},
		ThreeD:       []string{"3d", "three-dimensional", "elevation", "height", "extrude", "extrusion"},
		TopN:         []string{"rank", "ranking", "highest", "lowest", "largest", "smallest", "best", "worst", "most"},
		Hotspot:      []string{"hotspot", "hot spot", "hotspots", "concentration", "concentrated", "cluster", "clusters", "dense", "density"},
		Proportional: []string{"proportional", "scaled", "scale by", "size by", "sized", "vary", "varying"},
		Measurement:  []string{"revenue", "income", "population", "sales", "total", "amount", "count", "price", "value"},
	}
}

// LoadKeywordPack reads keyword overrides from a YAML file. An empty path or
// missing file yields the defaults; any set left empty in the file keeps its
// default entries.
func LoadKeywordPack(path string) (*KeywordPack, error) {
	pack := DefaultKeywordPack()
	if path == "" {
		return pack, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return pack, nil
		}
		return nil, utils.NewAppError("keywords.load", "read keyword pack", err)
	}
	var overrides KeywordPack
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, utils.NewAppError("keywords.load", "parse keyword pack", err)
	}
	mergeKeywords(pack, overrides)
	return pack, nil
}

func mergeKeywords(pack *KeywordPack, o KeywordPack) {
	if len(o.Single) > 0 {
		pack.Single = o.Single
	}
	if len(o.Point) > 0 {
		pack.Point = o.Point
	}
	if len(o.Correlation) > 0 {
		pack.Correlation = o.Correlation
	}
	if len(o.ThreeD) > 0 {
		pack.ThreeD = o.ThreeD
	}
	if len(o.TopN) > 0 {
		pack.TopN = o.TopN
	}
	if len(o.Hotspot) > 0 {
		pack.Hotspot = o.Hotspot
	}
	if len(o.Proportional) > 0 {
		pack.Proportional = o.Proportional
	}
	if len(o.Measurement) > 0 {
		pack.Measurement = o.Measurement
	}
}

// topNPatterns recognise explicit "top N" style ranking requests.
var topNPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btop\s+\d+\b`),
	regexp.MustCompile(`\bhighest\s+\d+\b`),
	regexp.MustCompile(`\b\d+\s+highest\b`),
	regexp.MustCompile(`\blowest\s+\d+\b`),
	regexp.MustCompile(`\b\d+\s+lowest\b`),
	regexp.MustCompile(`\b\d+\s+largest\b`),
}

// matchTopN reports the first explicit ranking phrase in the query.
func matchTopN(query string) (string, bool) {
	for _, pattern := range topNPatterns {
		if m := pattern.FindString(query); m != "" {
			return m, true
		}
	}
	return "", false
}

var tokenSplitter = regexp.MustCompile(`[^a-z0-9-]+`)

// matchKeyword returns the first keyword from the set found in the
// lower-cased query.
func matchKeyword(query string, keywords []string) (string, bool) {
	tokens := tokenSplitter.Split(query, -1)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			tokenSet[tok] = struct{}{}
		}
	}
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(query, kw) {
				return kw, true
			}
			continue
		}
		if _, ok := tokenSet[kw]; ok {
			return kw, true
		}
	}
	return "", false
}
