// Package textenc implements the name encodings and comparators this
// library needs: classic HFS MacRoman Pascal strings, HFS+/HFSX UTF-16
// names with Apple's case-folding comparator, and CLI-facing control
// character escaping.
package textenc

// macRomanToUnicode maps MacRoman code points 0x80-0xFF to their Unicode
// equivalents. 0x00-0x7F is equivalent to ASCII. Table per Apple's published
// MacRoman encoding (the same mapping golang.org/x/text/encoding/charmap
// calls Macintosh).
var macRomanToUnicode = [256]rune{
	0x80: 'Ä', 0x81: 'Å', 0x82: 'Ç', 0x83: 'É', 0x84: 'Ñ', 0x85: 'Ö', 0x86: 'Ü',
	0x87: 'á', 0x88: 'à', 0x89: 'â', 0x8A: 'ä', 0x8B: 'ã', 0x8C: 'å', 0x8D: 'ç',
	0x8E: 'é', 0x8F: 'è', 0x90: 'ê', 0x91: 'ë', 0x92: 'í', 0x93: 'ì', 0x94: 'î',
	0x95: 'ï', 0x96: 'ñ', 0x97: 'ó', 0x98: 'ò', 0x99: 'ô', 0x9A: 'ö', 0x9B: 'õ',
	0x9C: 'ú', 0x9D: 'ù', 0x9E: 'û', 0x9F: 'ü', 0xA0: '†', 0xA1: '°', 0xA2: '¢',
	0xA3: '£', 0xA4: '§', 0xA5: '•', 0xA6: '¶', 0xA7: 'ß', 0xA8: '®', 0xA9: '©',
	0xAA: '™', 0xAB: '´', 0xAC: '¨', 0xAD: '≠', 0xAE: 'Æ', 0xAF: 'Ø', 0xB0: '∞',
	0xB1: '±', 0xB2: '≤', 0xB3: '≥', 0xB4: '¥', 0xB5: 'µ', 0xB6: '∂', 0xB7: '∑',
	0xB8: '∏', 0xB9: 'π', 0xBA: '∫', 0xBB: 'ª', 0xBC: 'º', 0xBD: 'Ω', 0xBE: 'æ',
	0xBF: 'ø', 0xC0: '¿', 0xC1: '¡', 0xC2: '¬', 0xC3: '√', 0xC4: 'ƒ', 0xC5: '≈',
	0xC6: '∆', 0xC7: '«', 0xC8: '»', 0xC9: '…', 0xCA: ' ', 0xCB: 'À', 0xCC: 'Ã',
	0xCD: 'Õ', 0xCE: 'Œ', 0xCF: 'œ', 0xD0: '–', 0xD1: '—', 0xD2: '“', 0xD3: '”',
	0xD4: '‘', 0xD5: '’', 0xD6: '÷', 0xD7: '◊', 0xD8: 'ÿ', 0xD9: 'Ÿ', 0xDA: '⁄',
	0xDB: '€', 0xDC: '‹', 0xDD: '›', 0xDE: 'ﬁ', 0xDF: 'ﬂ', 0xE0: '‡', 0xE1: '·',
	0xE2: '‚', 0xE3: '„', 0xE4: '‰', 0xE5: 'Â', 0xE6: 'Ê', 0xE7: 'Á', 0xE8: 'Ë',
	0xE9: 'È', 0xEA: 'Í', 0xEB: 'Î', 0xEC: 'Ï', 0xED: 'Ì', 0xEE: 'Ó', 0xEF: 'Ô',
	0xF0: '', 0xF1: 'Ò', 0xF2: 'Ú', 0xF3: 'Û', 0xF4: 'Ù', 0xF5: 'ı', 0xF6: 'ˆ',
	0xF7: '˜', 0xF8: '¯', 0xF9: '˘', 0xFA: '˙', 0xFB: '˚', 0xFC: '¸', 0xFD: '˝',
	0xFE: '˛', 0xFF: 'ˇ',
}

var unicodeToMacRoman map[rune]byte

func init() {
	unicodeToMacRoman = make(map[rune]byte, 128)
	for i := 0x80; i <= 0xFF; i++ {
		if r := macRomanToUnicode[i]; r != 0 {
			unicodeToMacRoman[r] = byte(i)
		}
	}
}

// DecodeMacRoman decodes a MacRoman byte string (as stored in a classic HFS
// Str31 name or volume label) into a Go string.
func DecodeMacRoman(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if c < 0x80 {
			runes = append(runes, rune(c))
			continue
		}
		if r := macRomanToUnicode[c]; r != 0 {
			runes = append(runes, r)
		} else {
			runes = append(runes, rune(c))
		}
	}
	return string(runes)
}

// EncodeMacRoman encodes a Go string into MacRoman bytes. Code points with
// no MacRoman representation are encoded as '?' (0x3F), a lossy fallback
// for names outside the MacRoman repertoire.
func EncodeMacRoman(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			out = append(out, byte(r))
		default:
			if b, ok := unicodeToMacRoman[r]; ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
	}
	return out
}
