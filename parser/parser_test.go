package parser

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/alecthomas/repr"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	tests := []struct {
		text  string
		names []string
		types common.Schema
	}{
		{"text, text", []string{"", ""}, common.Schema{common.TypeString, common.TypeString}},
		{"id uint, name text, email text, age uint", []string{"id", "name", "email", "age"},
			common.Schema{common.TypeUint64, common.TypeString, common.TypeString, common.TypeUint64}},
		{"id:U64,score: double ,ok BOOL", []string{"id", "score", "ok"},
			common.Schema{common.TypeUint64, common.TypeFloat64, common.TypeBool}},
		{"blob, n bigint", []string{"", "n"}, common.Schema{common.TypeBytes, common.TypeInt64}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, err := ParseSchema(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.names, s.Names, repr.String(s, repr.Indent("  ")))
			require.Equal(t, tt.types, s.Types, repr.String(s, repr.Indent("  ")))
		})
	}
}

func TestParseSchemaErrors(t *testing.T) {
	for _, text := range []string{"", "id decimal", "id uint,", "a int, a int", "id uint name text"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseSchema(text)
			require.True(t, errors.HasCode(err, errors.InvalidConfiguration), "%v", err)
		})
	}
}

func TestSchemaAST(t *testing.T) {
	tests := []struct {
		text     string
		expected *schemaAST
	}{
		{"text", &schemaAST{Columns: []*columnDef{{First: "text"}}}},
		{"id:uint, bytes", &schemaAST{Columns: []*columnDef{{First: "id", Second: "uint"}, {First: "bytes"}}}},
		{"name text", &schemaAST{Columns: []*columnDef{{First: "name", Second: "text"}}}},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			actual := &schemaAST{}
			require.NoError(t, schemaParser.ParseString("", test.text, actual))
			for _, col := range actual.Columns {
				col.Pos = lexer.Position{}
			}
			require.Equal(t,
				repr.String(test.expected, repr.IgnoreGoStringer(), repr.Indent("  ")),
				repr.String(actual, repr.IgnoreGoStringer(), repr.Indent("  ")),
				repr.String(actual, repr.IgnoreGoStringer(), repr.Indent("  ")))
		})
	}
}
