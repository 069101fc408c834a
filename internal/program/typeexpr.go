package program

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// TypeExpr is a parsed type expression such as com.ext.Semigroup<Wrapper<A>>.
type TypeExpr struct {
	Pos  lexer.Position
	Name string      `parser:"@Ident ( @'.' @Ident )*"`
	Args []*TypeExpr `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
}

func (t *TypeExpr) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

var (
	typeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[.,<>]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	typeParser = participle.MustBuild[TypeExpr](
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseType parses a single type expression.
func ParseType(src string) (*TypeExpr, error) {
	expr, err := typeParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	return expr, nil
}
