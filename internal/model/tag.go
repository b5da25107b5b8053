package model

// Tag はユーザーが定義する開始／終了区切り文字のペアを表します。
type Tag struct {
	ID       string `json:"id" yaml:"id" toml:"id"`
	Name     string `json:"name" yaml:"name" toml:"name"`
	OpenTag  string `json:"open_tag" yaml:"open_tag" toml:"open_tag"`
	CloseTag string `json:"close_tag" yaml:"close_tag" toml:"close_tag"`
	Enabled  bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// Span は 1 件の一致範囲を行・桁・バイトオフセットで表します。
type Span struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
	ByteStart int `json:"byte_start"`
	ByteEnd   int `json:"byte_end"`
}

// Match はテキスト中の open...content...close の 1 件の出現を表します。
// Offset は元テキスト先頭からの文字（rune）単位のオフセットです。
type Match struct {
	FullMatch string `json:"full_match"`
	Content   string `json:"content"`
	Offset    int    `json:"offset"`
	Span      Span   `json:"span"`
}

// TagMatches は 1 つのタグに対する一致の一覧です。
type TagMatches struct {
	Tag     Tag     `json:"tag"`
	Matches []Match `json:"matches"`
}

// Analysis は非破壊的な解析結果です。
type Analysis struct {
	HasTaggedContent bool         `json:"has_tagged_content"`
	TagMatches       []TagMatches `json:"tag_matches"`
}

// Total returns the number of matches across all tags.
func (a Analysis) Total() int {
	n := 0
	for _, tm := range a.TagMatches {
		n += len(tm.Matches)
	}
	return n
}

// Validation は検証結果です。
type Validation struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// CloneTags returns a copy of tags so callers can never alias a store's slice.
func CloneTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}
