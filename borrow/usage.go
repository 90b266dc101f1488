package borrow

// BorrowingBuiltins is the set of callees known to borrow their arguments
// rather than consume them.  Unknown callees are conservatively treated as
// consuming; this classification is the single most impactful heuristic in
// the system.
var BorrowingBuiltins = map[string]bool{
	"len":        true,
	"str":        true,
	"repr":       true,
	"print":      true,
	"isinstance": true,
	"abs":        true,
	"min":        true,
	"max":        true,
	"sum":        true,
	"sorted":     true,
	"enumerate":  true,
	"zip":        true,
	"any":        true,
	"all":        true,
	"bool":       true,
	"int":        true,
	"float":      true,
	"hash":       true,
	"ord":        true,
	"type":       true,
}

// ConsumingMethods is the set of method names that mutate or consume their
// receiver.
var ConsumingMethods = map[string]bool{
	"append":     true,
	"extend":     true,
	"insert":     true,
	"pop":        true,
	"remove":     true,
	"sort":       true,
	"reverse":    true,
	"clear":      true,
	"add":        true,
	"discard":    true,
	"update":     true,
	"setdefault": true,
	"popitem":    true,
}

// BorrowingMethods is the set of method names known to only read their
// receiver.  Method names in neither set are conservatively treated as
// consuming.
var BorrowingMethods = map[string]bool{
	"startswith": true,
	"endswith":   true,
	"strip":      true,
	"lstrip":     true,
	"rstrip":     true,
	"upper":      true,
	"lower":      true,
	"split":      true,
	"join":       true,
	"replace":    true,
	"find":       true,
	"index":      true,
	"count":      true,
	"get":        true,
	"keys":       true,
	"values":     true,
	"items":      true,
	"copy":       true,
	"isdigit":    true,
	"isalpha":    true,
	"splitlines": true,
	"encode":     true,
	"zfill":      true,
}
