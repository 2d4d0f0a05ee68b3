package splitter

import (
	"path/filepath"
	"strings"
)

// LangMarkdown is the fallback for unknown extensions; plain text splits
// fine on markdown separators.
const LangMarkdown = "markdown"

var languageByExt = map[string]string{
	".cpp":   "cpp",
	".go":    "go",
	".java":  "java",
	".js":    "js",
	".jsx":   "js",
	".ts":    "js",
	".tsx":   "js",
	".php":   "php",
	".proto": "proto",
	".py":    "python",
	".rst":   "rst",
	".rb":    "ruby",
	".rs":    "rust",
	".scala": "scala",
	".swift": "swift",
	".md":    LangMarkdown,
	".tex":   "latex",
	".html":  "html",
	".htm":   "html",
	".sol":   "sol",
	".css":   "html",
	".txt":   LangMarkdown,
	".json":  LangMarkdown,
}

// LanguageFor maps a file path to the language used for syntax-aware
// splitting, falling back to markdown.
func LanguageFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return LangMarkdown
}

// separatorsByLanguage lists the split points tried in order, coarsest
// first. The final "" entry means character-level splitting as a last
// resort for oversized segments.
var separatorsByLanguage = map[string][]string{
	"cpp": {
		"\nclass ", "\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"go": {
		"\nfunc ", "\nvar ", "\nconst ", "\ntype ",
		"\nif ", "\nfor ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"java": {
		"\nclass ", "\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"js": {
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ", "",
	},
	"php": {
		"\nfunction ", "\nclass ",
		"\nif ", "\nforeach ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"proto": {
		"\nmessage ", "\nservice ", "\nenum ", "\noption ", "\nimport ", "\nsyntax ",
		"\n\n", "\n", " ", "",
	},
	"python": {
		"\nclass ", "\ndef ", "\n\tdef ",
		"\n\n", "\n", " ", "",
	},
	"rst": {
		"\n\n", "\n", " ", "",
	},
	"ruby": {
		"\ndef ", "\nclass ",
		"\nif ", "\nunless ", "\nwhile ", "\nfor ", "\ndo ", "\nbegin ", "\nrescue ",
		"\n\n", "\n", " ", "",
	},
	"rust": {
		"\nfn ", "\nconst ", "\nlet ",
		"\nif ", "\nwhile ", "\nfor ", "\nloop ", "\nmatch ",
		"\n\n", "\n", " ", "",
	},
	"scala": {
		"\nclass ", "\nobject ", "\ndef ", "\nval ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nmatch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	"swift": {
		"\nfunc ", "\nclass ", "\nstruct ", "\nenum ",
		"\nif ", "\nfor ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ", "",
	},
	LangMarkdown: {
		"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"```\n", "\n\n***\n\n", "\n\n---\n\n", "\n\n___\n\n",
		"\n\n", "\n", " ", "",
	},
	"latex": {
		"\n\\chapter{", "\n\\section{", "\n\\subsection{", "\n\\subsubsection{",
		"\n\\begin{", "\n\n", "\n", " ", "",
	},
	"html": {
		"<body", "<div", "<p", "<br", "<li",
		"<h1", "<h2", "<h3", "<h4", "<h5", "<h6",
		"<span", "<table", "<tr", "<td", "<th", "<ul", "<ol",
		"<header", "<footer", "<nav", "<head", "<style", "<script",
		"\n\n", "\n", " ", "",
	},
	"sol": {
		"\npragma ", "\nusing ", "\ncontract ", "\ninterface ", "\nlibrary ",
		"\nconstructor ", "\nfunction ", "\nevent ", "\nmodifier ", "\nerror ",
		"\nstruct ", "\nenum ", "\nif ", "\nfor ", "\nwhile ", "\nassembly ",
		"\n\n", "\n", " ", "",
	},
}

func separatorsFor(language string) []string {
	if seps, ok := separatorsByLanguage[language]; ok {
		return seps
	}
	return separatorsByLanguage[LangMarkdown]
}
