package output

// ConvertOutput is the JSON payload of the convert command.
type ConvertOutput struct {
	Input       string         `json:"input"`
	InputFormat string         `json:"input_format"`
	Targets     []TargetOutput `json:"targets"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
}

// TargetOutput reports one written target.
type TargetOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
	Error  string `json:"error,omitempty"`
}

// FormatInfo describes one supported format.
type FormatInfo struct {
	Name         string   `json:"name"`
	Extensions   []string `json:"extensions"`
	KeepsNesting bool     `json:"keeps_nesting"`
}

// VersionOutput is the JSON payload of the version command.
type VersionOutput struct {
	Version string `json:"version"`
}
