package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No autoroute.json, autoroute.yaml or autoroute.toml was found in the project root.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or points outside the project.",
	},

	// ============================================
	// Generation Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryGenerate,
		Message:  "Export identifier collision",
		Detail:   "Two files in the same directory mangle to the same export name. The later file overrides the earlier one.",
	},
	"E202": {
		Category: CategoryGenerate,
		Message:  "Malformed convention path",
		Detail:   "The path does not lie under a pages, components or modules root.",
	},
	"E203": {
		Category: CategoryGenerate,
		Message:  "Route identifier collision",
		Detail:   "Two routable pages resolve to the same import identifier. The previous route table was kept.",
	},

	// ============================================
	// Filesystem Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryFS,
		Message:  "Directory vanished during regeneration",
		Detail:   "The directory was removed while it was being listed. Nothing was regenerated.",
	},
	"E302": {
		Category: CategoryFS,
		Message:  "Could not write generated file",
		Detail:   "A generated module could not be written. The previous file, if any, is unchanged.",
	},

	// ============================================
	// Compile Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryCompile,
		Message:  "Component compilation failed",
		Detail:   "The component compiler reported an error for this file.",
	},

	// ============================================
	// CLI Errors (E501-E599)
	// ============================================

	"E501": {
		Category: CategoryCLI,
		Message:  "Template not found",
		Detail:   "The requested project template does not exist.",
	},
	"E502": {
		Category: CategoryCLI,
		Message:  "Directory not empty",
		Detail:   "The target directory already contains files.",
	},
	"E503": {
		Category: CategoryCLI,
		Message:  "Address unavailable",
		Detail:   "The inspection API could not listen on the configured host and port.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
