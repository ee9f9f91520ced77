package config

// DocumentFileExtensions are the recognized declaration document extensions
var DocumentFileExtensions = []string{".yaml", ".yml"}

// DefaultDocumentNames are searched for when no document path is given.
var DefaultDocumentNames = []string{"classes.yaml", "classes.yml"}

// Framework member names. A specification can never install these.
const (
	BaseName          = "base"
	ConstructorName   = "constructor"
	AncestorName      = "ancestor"
	PrototypeName     = "prototype"
	ExtendExcludeName = "extend_exclude"
	ExtendOrderName   = "extend_order"
	RootProtoName     = "__base_root_proto__"
	ExcludedSetName   = "__base_extend_exclude__"
)

// Hook and builtin member names
const (
	ExtendHookName     = "_extend"
	SubclassedHookName = "_subclassed"
	ExtendMethodName   = "extend"
	PushMethodName     = "push"
	PopMethodName      = "pop"
	IndexOfMethodName  = "indexOf"
	LengthName         = "length"
	MessageName        = "message"
	StackName          = "stack"
	ErrorNameName      = "name"
	CauseName          = "cause"
)

// Root class names
const (
	ObjectRootName = "Object"
	ArrayRootName  = "Array"
	ErrorRootName  = "Error"
	UserErrorName  = "UserError"
)

var reservedNames = map[string]bool{
	BaseName:          true,
	ConstructorName:   true,
	AncestorName:      true,
	PrototypeName:     true,
	ExtendExcludeName: true,
	ExtendOrderName:   true,
	RootProtoName:     true,
	ExcludedSetName:   true,
}

// IsReserved reports whether name is a framework-protected member name.
func IsReserved(name string) bool {
	return reservedNames[name]
}

// ReservedNames returns the protected member names in a stable order.
func ReservedNames() []string {
	return []string{
		BaseName,
		ConstructorName,
		AncestorName,
		PrototypeName,
		ExtendExcludeName,
		ExtendOrderName,
		RootProtoName,
		ExcludedSetName,
	}
}
