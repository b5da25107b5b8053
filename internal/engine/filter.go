package engine

import (
	"pkt.systems/pslog"

	"github.com/phyten/tagfilter/internal/model"
)

// Engine applies tag collections to text. The zero value is ready to use;
// when Log is set, tags skipped because they fail to compile are reported.
type Engine struct {
	Log pslog.Logger
}

// Strip removes every enabled tag's spans from text. Tags run sequentially in
// collection order, each on the output of the previous one; disabled tags and
// tags that fail to compile are skipped. Empty text is returned unchanged and
// tags is never modified.
func Strip(text string, tags []model.Tag) string {
	return Engine{}.Strip(text, tags)
}

// Analyze reports every match of every enabled tag without modifying text.
// Unlike Strip each tag is matched against the original text.
func Analyze(text string, tags []model.Tag) model.Analysis {
	return Engine{}.Analyze(text, tags)
}

// Strip is the logging form of the package-level Strip.
func (e Engine) Strip(text string, tags []model.Tag) string {
	if text == "" {
		return text
	}
	out := text
	for _, m := range e.matchers(tags) {
		out = m.ReplaceAll(out)
	}
	return out
}

// Analyze is the logging form of the package-level Analyze.
func (e Engine) Analyze(text string, tags []model.Tag) model.Analysis {
	res := model.Analysis{TagMatches: []model.TagMatches{}}
	if text == "" {
		return res
	}
	for _, m := range e.matchers(tags) {
		matches := m.FindAll(text)
		if len(matches) == 0 {
			continue
		}
		res.HasTaggedContent = true
		res.TagMatches = append(res.TagMatches, model.TagMatches{Tag: m.Tag(), Matches: matches})
	}
	return res
}

// Matchers compiles the enabled tags in collection order, dropping the ones
// that fail. Callers that apply the same collection repeatedly can reuse the
// result.
func (e Engine) Matchers(tags []model.Tag) []*Matcher {
	return e.matchers(tags)
}

func (e Engine) matchers(tags []model.Tag) []*Matcher {
	out := make([]*Matcher, 0, len(tags))
	for _, tag := range tags {
		if !tag.Enabled {
			continue
		}
		m, err := Compile(tag)
		if err != nil {
			if e.Log != nil {
				e.Log.Warn("tag skipped", "tag_id", tag.ID, "tag", tag.Name, "err", err)
			}
			continue
		}
		out = append(out, m)
	}
	return out
}
