package termcolor

import (
	"io"
	"os"
)

// Tag badges cycle through these backgrounds in collection order.
var tagBackgrounds = []RGB{
	{59, 130, 246},
	{234, 179, 8},
	{16, 185, 129},
	{239, 68, 68},
	{168, 85, 247},
	{14, 165, 233},
	{249, 115, 22},
	{236, 72, 153},
}

var (
	tagBasic = []int{4, 3, 2, 1, 5, 6}
	tag256   = []int{33, 178, 36, 196, 135, 39, 208, 205}
)

func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

// TagStyle is the badge style for the i-th tag of the collection.
func TagStyle(i int, profile Profile) Style {
	if i < 0 {
		i = -i
	}
	switch profile {
	case ProfileTrueColor:
		bg := tagBackgrounds[i%len(tagBackgrounds)]
		fg := TextOn(bg).array()
		bgArr := bg.array()
		return Style{Bold: true, FGTrue: &fg, BGTrue: &bgArr}
	case ProfileANSI256:
		c := tag256[i%len(tag256)]
		return Style{Bold: true, FG256: &c}
	default:
		c := tagBasic[i%len(tagBasic)]
		return Style{Bold: true, FGBasic: &c}
	}
}

// MatchStyle marks tagged regions inside a highlighted preview.
func MatchStyle(scheme Scheme) Style {
	if scheme == SchemeLight {
		c := 4
		return Style{Underline: true, FGBasic: &c}
	}
	c := 3
	return Style{Bold: true, FGBasic: &c}
}

func DisabledStyle() Style {
	return Style{Dim: true}
}

// Painter bundles the decisions made once per process.
type Painter struct {
	Enabled bool
	Profile Profile
	Scheme  Scheme
}

// NewPainter resolves mode against out and env. Writers that are not files
// never get colour in auto mode.
func NewPainter(mode ColorMode, out io.Writer, env map[string]string) Painter {
	f, _ := out.(*os.File)
	return Painter{
		Enabled: Enabled(mode, f, env),
		Profile: DetectProfile(env),
		Scheme:  DetectScheme(env),
	}
}

func (p Painter) Header(s string) string { return Apply(HeaderStyle(), s, p.Enabled) }

func (p Painter) Tag(i int, s string) string { return Apply(TagStyle(i, p.Profile), s, p.Enabled) }

func (p Painter) Disabled(s string) string { return Apply(DisabledStyle(), s, p.Enabled) }

// MatchCodes returns the open/close sequences used around matched regions.
func (p Painter) MatchCodes() (string, string) { return Codes(MatchStyle(p.Scheme), p.Enabled) }
