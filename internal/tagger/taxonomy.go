package tagger

// Definition maps one tag to the keywords and repository topics that imply it.
type Definition struct {
	Tag      string
	Keywords []string
	Topics   []string
}

// Taxonomy is the fixed tag set, in output order.
var Taxonomy = []Definition{
	{
		Tag:      "debugger",
		Keywords: []string{"debug", "debugger", "breakpoint", "step", "trace"},
		Topics:   []string{"debugging", "debugger"},
	},
	{
		Tag:      "decompiler",
		Keywords: []string{"decompile", "decompiler", "pseudo", "pseudo-code"},
		Topics:   []string{"decompiler", "decompilation"},
	},
	{
		Tag:      "hex-editor",
		Keywords: []string{"hex", "hexadecimal", "binary", "byte"},
		Topics:   []string{"hex-editor", "binary"},
	},
	{
		Tag:      "network",
		Keywords: []string{"network", "protocol", "packet", "socket", "tcp", "udp"},
		Topics:   []string{"network", "networking", "protocols"},
	},
	{
		Tag:      "analysis",
		Keywords: []string{"analyze", "analysis", "static", "dynamic"},
		Topics:   []string{"static-analysis", "dynamic-analysis", "reverse-engineering"},
	},
	{
		Tag:      "scripting",
		Keywords: []string{"script", "python", "lua", "api", "automation"},
		Topics:   []string{"scripting", "automation"},
	},
	{
		Tag:      "yara",
		Keywords: []string{"yara", "rule", "signature"},
		Topics:   []string{"yara", "malware-analysis"},
	},
	{
		Tag:      "graph",
		Keywords: []string{"graph", "flowchart", "cfg", "call-graph", "visualization"},
		Topics:   []string{"graph", "visualization"},
	},
	{
		Tag:      "patcher",
		Keywords: []string{"patch", "patcher", "modify", "binary-patch"},
		Topics:   []string{"patching", "binary-patching"},
	},
	{
		Tag:      "unpacker",
		Keywords: []string{"unpack", "unpacker", "unpacking", "packer"},
		Topics:   []string{"unpacking", "unpacker"},
	},
}

// nameHints are substrings of a repository name that imply a tag on their own.
var nameHints = []struct {
	substr string
	tag    string
}{
	{"debug", "debugger"},
	{"hex", "hex-editor"},
	{"binary", "hex-editor"},
	{"decomp", "decompiler"},
	{"unpack", "unpacker"},
	{"patch", "patcher"},
}
