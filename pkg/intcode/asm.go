package intcode

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Assembly syntax:
//
//	; comment
//	start:  in [count]
//	        jf [count], done
//	        out 42
//	done:   halt
//	count:  data 0
//
// [n] and [label] are Position operands; bare numbers and labels are
// Immediate. Labels resolve to the address of the next emitted cell.

// Listing is the top-level assembly AST node. Every line but the last
// must end in a newline.
type Listing struct {
	Lines []*Line `( @@ EOL )* @@?`
}

// Line holds any labels followed by at most one statement. Blank lines
// match with both empty.
type Line struct {
	Labels    []string   `( @Ident ":" )*`
	Statement *Statement `@@?`
}

// Statement is a mnemonic followed by comma-separated operands.
type Statement struct {
	Pos      lexer.Position
	Mnemonic string     `@Ident`
	Operands []*Operand `( @@ ( "," @@ )* )?`
}

// Operand is [ref] (position) or ref (immediate).
type Operand struct {
	Position *Ref `  "[" @@ "]"`
	Value    *Ref `| @@`
}

// Ref is a number or a label reference.
type Ref struct {
	Number *int64  `  @Int`
	Label  *string `| @Ident`
}

var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "EOL", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Punct", Pattern: `[\[\],:]`},
})

var asmParser = participle.MustBuild[Listing](
	participle.Lexer(asmLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// mnemonics maps text to opcodes
var mnemonics = map[string]Opcode{
	"add":    OpAdd,
	"mul":    OpMul,
	"in":     OpInput,
	"input":  OpInput,
	"out":    OpOutput,
	"output": OpOutput,
	"jt":     OpJumpIfTrue,
	"jnz":    OpJumpIfTrue,
	"jf":     OpJumpIfFalse,
	"jz":     OpJumpIfFalse,
	"lt":     OpLessThan,
	"eq":     OpEquals,
	"halt":   OpHalt,
	"hlt":    OpHalt,
}

// destOperand is the index of the write target for opcodes that have one.
var destOperand = map[Opcode]int{
	OpAdd:      2,
	OpMul:      2,
	OpInput:    0,
	OpLessThan: 2,
	OpEquals:   2,
}

// Assembler converts text assembly to Memory.
type Assembler struct {
	code   Memory
	labels map[string]int64
	fixups []fixup
}

type fixup struct {
	pos   int
	label string
	line  int
}

// NewAssembler creates a new assembler
func NewAssembler() *Assembler {
	return &Assembler{
		code:   make(Memory, 0, 64),
		labels: make(map[string]int64),
	}
}

// Assemble is a convenience wrapper around a fresh Assembler.
func Assemble(source string) (Memory, error) {
	return NewAssembler().Assemble(source)
}

// Assemble converts assembly text to a program image.
func (a *Assembler) Assemble(source string) (Memory, error) {
	a.code = a.code[:0]
	a.labels = make(map[string]int64)
	a.fixups = nil

	listing, err := asmParser.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("assembly syntax: %w", err)
	}

	for _, line := range listing.Lines {
		for _, label := range line.Labels {
			if _, dup := a.labels[label]; dup {
				return nil, fmt.Errorf("duplicate label: %s", label)
			}
			a.labels[label] = int64(len(a.code))
		}
		if line.Statement == nil {
			continue
		}
		if err := a.assembleStatement(line.Statement); err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Statement.Pos.Line, err)
		}
	}

	for _, f := range a.fixups {
		addr, ok := a.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("line %d: undefined label: %s", f.line, f.label)
		}
		a.code[f.pos] = addr
	}

	return a.code.Clone(), nil
}

// Labels returns the label table of the last assembly.
func (a *Assembler) Labels() map[string]int64 {
	return a.labels
}

func (a *Assembler) assembleStatement(st *Statement) error {
	name := strings.ToLower(st.Mnemonic)
	if name == "data" {
		if len(st.Operands) == 0 {
			return fmt.Errorf("data needs at least one value")
		}
		for _, o := range st.Operands {
			if o.Position != nil {
				return fmt.Errorf("data values cannot be position operands")
			}
			a.emitRef(o.Value, st.Pos.Line)
		}
		return nil
	}

	op, ok := mnemonics[name]
	if !ok {
		return fmt.Errorf("unknown mnemonic: %s", st.Mnemonic)
	}
	if len(st.Operands) != op.Arity() {
		return fmt.Errorf("%s takes %d operands, got %d", name, op.Arity(), len(st.Operands))
	}

	word := int64(op)
	scale := int64(100)
	for i, o := range st.Operands {
		if o.Position == nil {
			if d, ok := destOperand[op]; ok && d == i {
				return fmt.Errorf("%s: operand %d is a write target and must be [address]", name, i+1)
			}
			word += scale * int64(ModeImmediate)
		}
		scale *= 10
	}

	a.code = append(a.code, word)
	for _, o := range st.Operands {
		ref := o.Value
		if o.Position != nil {
			ref = o.Position
		}
		a.emitRef(ref, st.Pos.Line)
	}
	return nil
}

func (a *Assembler) emitRef(r *Ref, line int) {
	if r.Label != nil {
		a.fixups = append(a.fixups, fixup{pos: len(a.code), label: *r.Label, line: line})
		a.code = append(a.code, 0)
		return
	}
	a.code = append(a.code, *r.Number)
}

// Disassemble renders mem as a linear listing. Cells that do not decode
// are shown as data.
func Disassemble(mem Memory) string {
	var sb strings.Builder
	ip := int64(0)

	for ip < int64(len(mem)) {
		sb.WriteString(fmt.Sprintf("%04d: ", ip))

		ins, err := Decode(mem, ip)
		if err != nil {
			sb.WriteString(fmt.Sprintf("data %d", mem[ip]))
			ip++
		} else {
			sb.WriteString(Format(ins))
			ip += int64(Width(ins))
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
