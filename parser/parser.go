package parser

import (
	"fmt"
)

// LineKind classifies a source line by its first token
type LineKind int

const (
	LineInstruction LineKind = iota
	LineLabel
	LineOrigin
	LineData
)

var lineKindNames = map[LineKind]string{
	LineInstruction: "instruction",
	LineLabel:       "label",
	LineOrigin:      "origin",
	LineData:        "data",
}

func (k LineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LineKind(%d)", k)
}

// ClassifiedLine is a source line the address assigner will walk.
// Tokens holds the significant tokens only: trailing comments are stripped.
type ClassifiedLine struct {
	Kind   LineKind
	Num    int
	Raw    string
	Tokens []Token
}

// Program is the classified form of an assembly source, ready for address
// assignment. The symbol table is created here and populated later.
type Program struct {
	Filename    string
	Lines       []ClassifiedLine
	SymbolTable *SymbolTable
}

// Parser turns raw source into a classified Program
type Parser struct {
	lexer    *Lexer
	filename string
}

// NewParser creates a new parser for the given input
func NewParser(input, filename string) *Parser {
	return &Parser{
		lexer:    NewLexer(input, filename),
		filename: filename,
	}
}

// Parse tokenizes the input and classifies every line. Whole-line comments
// and blank lines are dropped; a line starting with a token that cannot
// begin a line is a syntax error. The first error aborts the parse.
func (p *Parser) Parse() (*Program, *Error) {
	lines, err := p.lexer.Tokenize()
	if err != nil {
		return nil, err
	}

	program := &Program{
		Filename:    p.filename,
		SymbolTable: NewSymbolTable(),
	}

	for _, line := range lines {
		classified, err := classifyLine(line)
		if err != nil {
			return nil, err
		}
		if classified == nil {
			continue
		}
		program.Lines = append(program.Lines, *classified)
	}

	return program, nil
}

// classifyLine dispatches on the kind of the first token. Returns nil for
// comment lines.
func classifyLine(line Line) (*ClassifiedLine, *Error) {
	tokens := stripComment(line.Tokens)
	if len(tokens) == 0 {
		// The whole line was a comment
		return nil, nil
	}

	first := tokens[0]
	cl := &ClassifiedLine{Num: line.Num, Raw: line.Raw, Tokens: tokens}

	switch first.Kind {
	case KindInstruction:
		cl.Kind = LineInstruction

	case KindLabel:
		if len(tokens) > 1 {
			return nil, NewErrorWithContext(tokens[1].Pos, ErrorSyntax,
				fmt.Sprintf("unexpected %s after label definition", tokens[1].Kind), line.Raw)
		}
		cl.Kind = LineLabel

	case KindOriginMarker:
		if len(tokens) != 2 || tokens[1].Kind != KindAddress {
			return nil, NewErrorWithContext(first.Pos, ErrorSyntax,
				"origin directive must be `> &0xHHHH`", line.Raw)
		}
		cl.Kind = LineOrigin

	case KindDataMarker:
		if len(tokens) < 2 {
			return nil, NewErrorWithContext(first.Pos, ErrorSyntax,
				"data stream requires at least one item", line.Raw)
		}
		cl.Kind = LineData

	default:
		return nil, NewErrorWithContext(first.Pos, ErrorSyntax,
			fmt.Sprintf("line cannot start with %s (%q)", first.Kind, first.Raw), line.Raw)
	}

	return cl, nil
}

// stripComment drops the comment marker and everything after it
func stripComment(tokens []Token) []Token {
	for i, tok := range tokens {
		if tok.Kind == KindCommentMarker {
			return tokens[:i]
		}
	}
	return tokens
}
