package types

const (
	// ModuleName is the name of the module
	ModuleName = "poll"

	// StoreKey is the string store representation
	StoreKey = ModuleName
)
