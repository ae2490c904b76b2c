package types

const (
	// ModuleName is the name of the module
	ModuleName = "funds"

	// StoreKey is the string store representation
	StoreKey = ModuleName
)
