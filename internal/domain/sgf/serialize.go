package sgf

import (
	"strings"
)

// Serialize writes the tree as SGF text. Metadata tokens are written in the
// order they are stored; move tokens use the two-letter lowercase coordinate.
func Serialize(tree *GameTree) string {
	var builder strings.Builder
	builder.WriteString("(")
	if tree != nil {
		serializeGameTree(&builder, tree)
	}
	builder.WriteString(")")
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")
		for _, tok := range node.Tokens {
			writeToken(builder, tok)
		}
	}

	for _, child := range tree.Variations {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

func writeToken(builder *strings.Builder, tok Token) {
	switch tok.Kind {
	case TokenMove:
		builder.WriteString(tok.Color.SGFIdent())
		builder.WriteString("[")
		builder.WriteString(coordinate(tok.Col, tok.Row))
		builder.WriteString("]")
	case TokenMetadata:
		builder.WriteString(tok.Ident)
		if len(tok.Values) == 0 {
			builder.WriteString("[]")
		}
		for _, v := range tok.Values {
			builder.WriteString("[")
			builder.WriteString(escapeValue(v))
			builder.WriteString("]")
		}
	}
}

// coordinate maps 1-based (col,row) to SGF letters: 1 -> 'a'.
func coordinate(col, row int) string {
	return string([]byte{byte('a' + col - 1), byte('a' + row - 1)})
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

func escapeValue(v string) string {
	return valueEscaper.Replace(v)
}
