package textgrid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReadOptions controls how a TextGrid file is turned into a TierSet.
type ReadOptions struct {
	// IncludeEmpty keeps blank-label intervals (dense reading).
	IncludeEmpty bool
	// NormalizeNFC composes labels so Hangul syllables count as one rune.
	NormalizeNFC bool
}

// Open reads the Praat TextGrid at path. Long and short text formats are
// accepted, in UTF-8 or BOM-marked UTF-16.
func Open(path string, opts ReadOptions) (*TierSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set, err := Read(f, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return set, nil
}

func Read(r io.Reader, opts ReadOptions) (*TierSet, error) {
	raw, err := io.ReadAll(transform.NewReader(r, xunicode.BOMOverride(xunicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode: %w", err)}
	}
	p := &parser{toks: tokenize(string(raw))}
	set, err := p.textGrid(opts)
	if err != nil {
		var mt *MalformedTierError
		if errors.As(err, &mt) {
			return nil, err
		}
		return nil, &ParseError{Err: err}
	}
	return set, nil
}

type token struct {
	text   string
	quoted bool
}

// tokenize keeps quoted strings, numbers and <exists>/<absent> flags. Keys
// such as "xmin =" or "intervals [1]:" are dropped, which lets one grammar
// serve both the long and the short format.
func tokenize(src string) []token {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case c == '"':
			var b strings.Builder
			i++
			for i < len(rs) {
				if rs[i] == '"' {
					if i+1 < len(rs) && rs[i+1] == '"' {
						b.WriteRune('"')
						i += 2
						continue
					}
					i++
					break
				}
				b.WriteRune(rs[i])
				i++
			}
			toks = append(toks, token{text: b.String(), quoted: true})
		case c == '!':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			j := i
			for j < len(rs) && !strings.ContainsRune(" \t\r\n\"", rs[j]) {
				j++
			}
			word := string(rs[i:j])
			i = j
			if word == "<exists>" || word == "<absent>" || isNumber(word) {
				toks = append(toks, token{text: word})
			}
		}
	}
	return toks
}

func isNumber(w string) bool {
	if w == "" || !strings.ContainsRune("0123456789+-.", rune(w[0])) {
		return false
	}
	_, err := strconv.ParseFloat(w, 64)
	return err == nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) next() (token, error) {
	if p.pos >= len(p.toks) {
		return token{}, io.ErrUnexpectedEOF
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) str() (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}
	if !t.quoted {
		return "", fmt.Errorf("token %d: expected string, got %q", p.pos, t.text)
	}
	return t.text, nil
}

func (p *parser) num() (float64, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	if t.quoted {
		return 0, fmt.Errorf("token %d: expected number, got string %q", p.pos, t.text)
	}
	return strconv.ParseFloat(t.text, 64)
}

func (p *parser) count() (int, error) {
	v, err := p.num()
	if err != nil {
		return 0, err
	}
	if v < 0 || v != float64(int(v)) {
		return 0, fmt.Errorf("token %d: invalid count %v", p.pos, v)
	}
	return int(v), nil
}

func (p *parser) textGrid(opts ReadOptions) (*TierSet, error) {
	fileType, err := p.str()
	if err != nil {
		return nil, err
	}
	class, err := p.str()
	if err != nil {
		return nil, err
	}
	if fileType != "ooTextFile" || class != "TextGrid" {
		return nil, fmt.Errorf("not a TextGrid: %q %q", fileType, class)
	}
	minT, err := p.num()
	if err != nil {
		return nil, err
	}
	maxT, err := p.num()
	if err != nil {
		return nil, err
	}
	set := NewTierSet(minT, maxT)

	flag, err := p.next()
	if err != nil {
		return nil, err
	}
	if flag.text == "<absent>" {
		return set, nil
	}
	n, err := p.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		t, err := p.tier(opts)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i+1, err)
		}
		if t != nil {
			set.Put(t)
		}
	}
	return set, nil
}

// tier parses one tier. Point tiers are consumed and dropped.
func (p *parser) tier(opts ReadOptions) (*Tier, error) {
	class, err := p.str()
	if err != nil {
		return nil, err
	}
	name, err := p.str()
	if err != nil {
		return nil, err
	}
	if _, err = p.num(); err != nil {
		return nil, err
	}
	if _, err = p.num(); err != nil {
		return nil, err
	}
	n, err := p.count()
	if err != nil {
		return nil, err
	}
	if opts.NormalizeNFC {
		name = norm.NFC.String(name)
	}

	switch class {
	case "IntervalTier":
		entries := make([]Interval, 0, n)
		for i := 0; i < n; i++ {
			start, err := p.num()
			if err != nil {
				return nil, err
			}
			end, err := p.num()
			if err != nil {
				return nil, err
			}
			label, err := p.str()
			if err != nil {
				return nil, err
			}
			if opts.NormalizeNFC {
				label = norm.NFC.String(label)
			}
			if !opts.IncludeEmpty && isBlank(label) {
				continue
			}
			entries = append(entries, Interval{Start: start, End: end, Label: label})
		}
		return NewTier(name, entries)
	case "TextTier":
		for i := 0; i < n; i++ {
			if _, err := p.num(); err != nil {
				return nil, err
			}
			if _, err := p.str(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tier class %q", class)
	}
}
