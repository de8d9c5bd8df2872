// Package parser loads Intcode program text using Participle v2.
// Grammar is defined as Go structs with tags.
package parser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/intcodeLang/intcode/pkg/intcode"
)

// Program is the top-level AST node: comma-separated cells.
type Program struct {
	Cells []*Cell `@@ ( "," @@ )*`
}

// Cell is everything between two commas. It may be empty or hold several
// words, so that a malformed element is reported whole.
type Cell struct {
	Pos   lexer.Position
	Words []string `@Word*`
}

// Text is the element as written, with inner whitespace collapsed.
func (c *Cell) Text() string {
	return strings.Join(c.Words, " ")
}

var programLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Word", Pattern: `[^,\s]+`},
})

// Parser is the program text parser
var Parser = participle.MustBuild[Program](
	participle.Lexer(programLexer),
	participle.Elide("Whitespace"),
)

var integer = regexp.MustCompile(`^-?[0-9]+$`)

// ParseError reports the first element that is not a decimal integer. An
// empty Token means the element between two commas was missing.
type ParseError struct {
	Token string
	Pos   lexer.Position
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: missing value", e.Pos)
	}
	return fmt.Sprintf("%s: invalid integer %q", e.Pos, e.Token)
}

// Parse parses program text into its AST
func Parse(text string) (*Program, error) {
	return parse("", text)
}

func parse(filename, text string) (*Program, error) {
	prog, err := Parser.ParseString(filename, text)
	if err != nil {
		var ute *participle.UnexpectedTokenError
		if errors.As(err, &ute) {
			return nil, &ParseError{Token: ute.Unexpected.Value, Pos: ute.Unexpected.Pos}
		}
		return nil, &ParseError{Token: err.Error()}
	}
	return prog, nil
}

// Memory converts the AST to a program image. Text holding nothing but
// whitespace is the empty program.
func (p *Program) Memory() (intcode.Memory, error) {
	if len(p.Cells) == 1 && len(p.Cells[0].Words) == 0 {
		return intcode.Memory{}, nil
	}
	mem := make(intcode.Memory, 0, len(p.Cells))
	for _, c := range p.Cells {
		text := c.Text()
		if !integer.MatchString(text) {
			return nil, &ParseError{Token: text, Pos: c.Pos}
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &ParseError{Token: text, Pos: c.Pos}
		}
		mem = append(mem, v)
	}
	return mem, nil
}

// Load parses comma-separated decimal integers into Memory. Surrounding
// whitespace is ignored; the empty text loads as empty Memory.
func Load(text string) (intcode.Memory, error) {
	prog, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return prog.Memory()
}

// LoadFile loads a program text file.
func LoadFile(filename string) (intcode.Memory, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	prog, err := parse(filename, string(data))
	if err != nil {
		return nil, err
	}
	return prog.Memory()
}

// ParseValues parses a comma-separated list such as "1,5" into values.
func ParseValues(text string) ([]int64, error) {
	mem, err := Load(text)
	if err != nil {
		return nil, err
	}
	return []int64(mem), nil
}
