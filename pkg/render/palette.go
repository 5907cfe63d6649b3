package render

import "slices"

// Color schemes.
const (
	SchemeDefault = "default"
	SchemeOcean   = "ocean"
	SchemeForest  = "forest"
	SchemeSunset  = "sunset"
	SchemeMono    = "mono"
)

// Palette holds the colors of one scheme as hex strings.
type Palette struct {
	Root       string `json:"root"`
	Folder     string `json:"folder"`
	File       string `json:"file"`
	Stroke     string `json:"stroke"`
	Text       string `json:"text"`
	Contains   string `json:"contains"`
	Dependency string `json:"dependency"`
	Highlight  string `json:"highlight"`
}

var palettes = map[string]Palette{
	SchemeDefault: {
		Root: "#6366f1", Folder: "#e0e7ff", File: "#ffffff", Stroke: "#4f46e5",
		Text: "#1e1b4b", Contains: "#94a3b8", Dependency: "#f59e0b", Highlight: "#ef4444",
	},
	SchemeOcean: {
		Root: "#0369a1", Folder: "#e0f2fe", File: "#f0f9ff", Stroke: "#0284c7",
		Text: "#082f49", Contains: "#7dd3fc", Dependency: "#14b8a6", Highlight: "#f97316",
	},
	SchemeForest: {
		Root: "#166534", Folder: "#dcfce7", File: "#f7fee7", Stroke: "#15803d",
		Text: "#052e16", Contains: "#86efac", Dependency: "#a16207", Highlight: "#dc2626",
	},
	SchemeSunset: {
		Root: "#c2410c", Folder: "#ffedd5", File: "#fff7ed", Stroke: "#ea580c",
		Text: "#431407", Contains: "#fdba74", Dependency: "#be185d", Highlight: "#7c3aed",
	},
	SchemeMono: {
		Root: "#171717", Folder: "#e5e5e5", File: "#ffffff", Stroke: "#404040",
		Text: "#0a0a0a", Contains: "#a3a3a3", Dependency: "#525252", Highlight: "#000000",
	},
}

// PaletteFor returns the palette of scheme, falling back to the default.
func PaletteFor(scheme string) Palette {
	if p, ok := palettes[scheme]; ok {
		return p
	}
	return palettes[SchemeDefault]
}

// Schemes lists the known color scheme names in sorted order.
func Schemes() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
