package config

import "strings"

// ManifestFileExtensions are all recognized manifest extensions
var ManifestFileExtensions = []string{".yaml", ".yml"}

const (
	DefaultConfigName   = "implicits.yaml"
	AlternateConfigName = "implicits.yml"
)

// Scope naming conventions used by the search strategies
const (
	DefaultInstancesPackage = "instances"
	DefaultCompanionName    = "Companion"
	DefaultMaxDepth         = 32
)

// Lowering conventions
const (
	SingletonFieldName = "INSTANCE"
	ErasedTypeName     = "std/Any"
	VoidDescriptor     = "V"
)

// Prelude type names
const (
	PreludePackage  = "std"
	AnyTypeName     = "Any"
	NumberTypeName  = "Number"
	IntTypeName     = "Int"
	LongTypeName    = "Long"
	DoubleTypeName  = "Double"
	StringTypeName  = "String"
	BooleanTypeName = "Boolean"
)

// IsManifest reports whether path has a manifest extension.
func IsManifest(path string) bool {
	for _, ext := range ManifestFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
