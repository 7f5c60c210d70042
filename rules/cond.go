package rules

import "math"

// Cond is a rule's matching condition against a keyword multiset.
type Cond interface {
	// strength returns the rule's match strength against the given
	// keyword set: 0 if the rule doesn't match at all, otherwise sqrt(k)
	// where k is the condition-specific match count.
	strength(keywords map[string]struct{}) float64
}

// Any matches k times, where k is the number of tags present in the
// keyword set.
type Any struct {
	Tags []string `yaml:"any"`
}

func (c Any) strength(keywords map[string]struct{}) float64 {
	k := 0
	for _, t := range c.Tags {
		if _, ok := keywords[t]; ok {
			k++
		}
	}
	if k == 0 {
		return 0
	}
	return math.Sqrt(float64(k))
}

// All matches 1 if every tag is present, else 0. Length <= 4 is a rule-
// authoring constraint, enforced at load time.
type All struct {
	Tags []string `yaml:"all"`
}

func (c All) strength(keywords map[string]struct{}) float64 {
	for _, t := range c.Tags {
		if _, ok := keywords[t]; !ok {
			return 0
		}
	}
	if len(c.Tags) == 0 {
		return 0
	}
	return 1
}

// NotAny matches 1 if none of the tags are present, else 0.
type NotAny struct {
	Tags []string `yaml:"not_any"`
}

func (c NotAny) strength(keywords map[string]struct{}) float64 {
	for _, t := range c.Tags {
		if _, ok := keywords[t]; ok {
			return 0
		}
	}
	return 1
}
