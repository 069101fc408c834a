// symbols/symbol_table.go - Main symbol table entry point
//
// The declaration model queried by instance resolution is split across:
// - symbol_table_core.go: declarations (classes, singletons, functions, parameters)
// - symbol_table_scope.go: read-only scopes and the Provider interface
// - symbol_table_init.go: prelude types and their hierarchy
// - symbol_table_operations.go: SymbolTable struct and definition operations
// - symbol_table_resolution.go: type name resolution, scope and supertype lookups

package symbols
