package ignore

// skipDirNames are directories never worth descending into. Checked by name
// before any rule matching, so the watcher can refuse them cheaply.
var skipDirNames = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "__pycache__": true,
	".idea": true, ".vscode": true, ".vs": true,
	".venv": true, "venv": true,
	".cache": true, "coverage": true,
}

// defaultPatterns are always-ignored names and globs, lower-case.
var defaultPatterns = []string{
	// Version control and dependency trees
	".git", ".svn", ".hg",
	"node_modules", "vendor", "bower_components",

	// Build output
	"dist", "build", "target", "obj",

	// Python artifacts
	"__pycache__", "*.pyc", "*.pyo", ".venv", "venv",

	// Editor droppings
	"*.swp", "*.swo", "*~", ".ds_store", "thumbs.db",

	// Compiled and archive binaries
	"*.exe", "*.dll", "*.so", "*.dylib", "*.o", "*.a",
	"*.class", "*.jar", "*.zip", "*.tar", "*.gz", "*.7z",

	// Media
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.webp",
	"*.woff", "*.woff2", "*.ttf",
	"*.mp3", "*.mp4", "*.avi", "*.pdf",

	// Minified and lock files
	"*.min.js", "*.min.css", "*.map",
	"package-lock.json", "yarn.lock", "go.sum", "cargo.lock", "poetry.lock",

	// Databases and logs, including our own
	"*.db", "*.db-wal", "*.db-shm", "*.sqlite", "*.sqlite3", "*.log",
}
