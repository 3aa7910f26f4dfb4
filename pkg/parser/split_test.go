package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawrenceadams/sam-converter/pkg/parser"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single statement",
			script: "SELECT 1",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "semicolon separated",
			script: "SELECT 1; SELECT 2;",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "go separator",
			script: "SELECT 1\nGO\nSELECT 2",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "go with repeat count",
			script: "SELECT 1\nGO 5\nSELECT 2",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "lowercase go with leading whitespace",
			script: "SELECT 1\n  go\nSELECT 2",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "go as identifier is not a separator",
			script: "SELECT going FROM goals",
			want:   []string{"SELECT going FROM goals"},
		},
		{
			name:   "semicolon inside string",
			script: "SELECT ';' AS sep FROM t; SELECT 2",
			want:   []string{"SELECT ';' AS sep FROM t", "SELECT 2"},
		},
		{
			name:   "semicolon inside bracket identifier",
			script: "SELECT [a;b] FROM t",
			want:   []string{"SELECT [a;b] FROM t"},
		},
		{
			name:   "semicolon inside line comment",
			script: "SELECT 1 -- note; here\nFROM t",
			want:   []string{"SELECT 1 -- note; here\nFROM t"},
		},
		{
			name:   "semicolon inside block comment",
			script: "SELECT 1 /* a; b */ FROM t",
			want:   []string{"SELECT 1 /* a; b */ FROM t"},
		},
		{
			name:   "doubled quote escape",
			script: "SELECT 'it''s; fine' FROM t",
			want:   []string{"SELECT 'it''s; fine' FROM t"},
		},
		{
			name:   "empty batches dropped",
			script: ";;\nGO\n;",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parser.SplitStatements(tt.script)
			texts := make([]string, 0, len(stmts))
			for _, s := range stmts {
				texts = append(texts, s.Text)
			}
			if tt.want == nil {
				assert.Empty(t, texts)
			} else {
				assert.Equal(t, tt.want, texts)
			}
		})
	}
}

func TestSplitStatementLines(t *testing.T) {
	script := "-- header\nSELECT 1\nGO\n\nSELECT 2;\nSELECT 3"
	stmts := parser.SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, 1, stmts[0].Line)
	assert.Equal(t, 5, stmts[1].Line)
	assert.Equal(t, 6, stmts[2].Line)
}
