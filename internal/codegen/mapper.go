package codegen

import (
	"strings"

	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// RuntimeType is the erased runtime representation of a type.
type RuntimeType struct {
	InternalName string // e.g. com/ext/Semigroup
}

// Descriptor returns the field descriptor, e.g. Lcom/ext/Semigroup;
func (t RuntimeType) Descriptor() string {
	return "L" + t.InternalName + ";"
}

func (t RuntimeType) String() string { return t.Descriptor() }

// TypeMapper maps source types to runtime types.
type TypeMapper interface {
	MapType(t typesystem.Type) RuntimeType
	MapClass(decl *symbols.ClassDecl) RuntimeType
}

// DefaultMapper erases type arguments, writes packages with slashes and
// nested classes with '$'. Placeholders erase to the root type.
type DefaultMapper struct{}

func (DefaultMapper) MapType(t typesystem.Type) RuntimeType {
	con, ok := typesystem.Constructor(t)
	if !ok {
		return RuntimeType{InternalName: config.ErasedTypeName}
	}
	return RuntimeType{InternalName: internalName(con.Package, con.Name)}
}

func (DefaultMapper) MapClass(decl *symbols.ClassDecl) RuntimeType {
	return RuntimeType{InternalName: internalName(decl.Package, decl.RelName())}
}

func internalName(pkg, relName string) string {
	name := strings.ReplaceAll(relName, ".", "$")
	if pkg == "" {
		return name
	}
	return strings.ReplaceAll(pkg, ".", "/") + "/" + name
}
