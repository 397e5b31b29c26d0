package mcp

// Method is the closed set of JSON-RPC methods the server understands.
type Method int

const (
	MethodUnsupported Method = iota
	MethodInitialize
	MethodToolsList
	MethodToolsCall
	MethodInitialized
)

var methodNames = map[string]Method{
	"initialize":                MethodInitialize,
	"tools/list":                MethodToolsList,
	"tools/call":                MethodToolsCall,
	"notifications/initialized": MethodInitialized,
}

// ParseMethod maps a wire method name to a Method. Unknown names map to
// MethodUnsupported.
func ParseMethod(name string) Method {
	return methodNames[name]
}

func (m Method) String() string {
	switch m {
	case MethodInitialize:
		return "initialize"
	case MethodToolsList:
		return "tools/list"
	case MethodToolsCall:
		return "tools/call"
	case MethodInitialized:
		return "notifications/initialized"
	default:
		return "unsupported"
	}
}
