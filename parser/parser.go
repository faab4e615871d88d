// Package parser parses the textual schema declarations accepted by the CLI and config files, e.g.
// "id uint, name text, email text, age uint" or just "text, text".
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/alecthomas/participle/v2/lexer/stateful"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
)

var (
	lex = stateful.MustSimple([]stateful.Rule{
		{`Ident`, `[a-zA-Z_][a-zA-Z_0-9]*`, nil},
		{`Punct`, `[,:]`, nil},
		{`Whitespace`, `\s+`, nil},
	})
	schemaParser = participle.MustBuild(&schemaAST{},
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

type schemaAST struct {
	Columns []*columnDef `@@ ( "," @@ )*`
}

// columnDef is either "<type>" or "<name> [:] <type>".
type columnDef struct {
	Pos lexer.Position

	First  string `@Ident`
	Second string `( ":"? @Ident )?`
}

// Schema is a parsed declaration. Names[i] is empty for columns declared by type only.
type Schema struct {
	Names []string
	Types common.Schema
}

// ParseSchema parses a schema declaration.
func ParseSchema(text string) (*Schema, error) {
	ast := &schemaAST{}
	if err := schemaParser.ParseString("", text, ast); err != nil {
		return nil, errors.NewInvalidConfigurationError(err.Error())
	}
	s := &Schema{}
	seen := make(map[string]bool)
	for _, c := range ast.Columns {
		name, typeName := "", c.First
		if c.Second != "" {
			name, typeName = c.First, c.Second
		}
		dt, err := common.ParseDataType(typeName)
		if err != nil {
			return nil, errors.NewInvalidConfigurationError(participle.Errorf(c.Pos, "unknown type %q", typeName).Error())
		}
		if name != "" {
			if seen[name] {
				return nil, errors.NewInvalidConfigurationError(participle.Errorf(c.Pos, "duplicate column %q", name).Error())
			}
			seen[name] = true
		}
		s.Names = append(s.Names, name)
		s.Types = append(s.Types, dt)
	}
	return s, nil
}
