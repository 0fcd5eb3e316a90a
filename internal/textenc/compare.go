package textenc

import "unicode/utf16"

// foldTable holds HFS+ folding exceptions consulted before the simple
// lowercase mapping: code points listed with 0 fold away entirely. It
// lists only combining marks U+0300-U+030F; unlisted code points fold via
// toLowerSimple (ASCII A-Z and Latin-1 U+00C0-U+00DE).
var foldTable = map[rune]rune{
	0x0300: 0, 0x0301: 0, 0x0302: 0, 0x0303: 0, 0x0304: 0, 0x0305: 0,
	0x0306: 0, 0x0307: 0, 0x0308: 0, 0x0309: 0, 0x030A: 0, 0x030B: 0,
	0x030C: 0, 0x030D: 0, 0x030E: 0, 0x030F: 0,
}

// foldRune applies HFS+ Unicode case folding to a single UTF-16 code unit
// already converted to a rune. Combining diacritical marks (U+0300-U+036F)
// fold to nothing, per the HFSPlus technote's "ignore combining marks for
// ordering purposes" rule; everything else lowercases via a simple
// uppercase-to-lowercase mapping rather than full Unicode collation.
func foldRune(r rune) (rune, bool) {
	if r >= 0x0300 && r <= 0x036F {
		return 0, false
	}
	if repl, ok := foldTable[r]; ok {
		if repl == 0 {
			return 0, false
		}
		return repl, true
	}
	return toLowerSimple(r), true
}

func toLowerSimple(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	if r >= 0xC0 && r <= 0xDE && r != 0xD7 {
		return r + 0x20
	}
	return r
}

// FoldHFSPlusName reduces a decoded catalog name to its HFS+ case-folded
// comparison key. Names are stored on-disk as UTF-16BE; this operates on
// the already-decoded string form.
func FoldHFSPlusName(name string) []rune {
	folded := make([]rune, 0, len(name))
	for _, r := range name {
		if f, keep := foldRune(r); keep {
			folded = append(folded, f)
		}
	}
	return folded
}

// CompareHFSPlusNames implements the HFS+ catalog key ordering: fold both
// names and compare the resulting rune sequences lexicographically by
// code point, the shorter sequence ordering first on a common prefix.
func CompareHFSPlusNames(a, b string) int {
	fa, fb := FoldHFSPlusName(a), FoldHFSPlusName(b)
	la, lb := len(fa), len(fb)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if fa[i] != fb[i] {
			if fa[i] < fb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

// CompareHFSXNames implements the HFSX binary-order comparator: raw
// UTF-16BE code-unit comparison, no folding. HFSX volumes record
// which comparator is in effect in the catalog B-tree header's
// key_compare_type byte; callers pick this or CompareHFSPlusNames from it.
func CompareHFSXNames(a, b string) int {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	la, lb := len(ua), len(ub)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

// CompareMacRomanNames implements classic HFS's relative-string comparator
// over MacRoman byte strings: a byte-wise ordering that uppercases ASCII
// a-z before comparing. MacRoman letters 0x80-0xFF are not case-folded and
// compare by raw byte value. Used for catalog key ordering on plain
// "BD"-signature volumes.
func CompareMacRomanNames(a, b []byte) int {
	la, lb := len(a), len(b)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		ca, cb := macRomanUpper(a[i]), macRomanUpper(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

func macRomanUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
