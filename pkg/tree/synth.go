package tree

import (
	"fmt"
	"slices"

	"github.com/matzehuels/codegraph/pkg/random"
)

// Shape constants for synthesized folders.
const (
	MinFiles          = 3
	MaxFiles          = 7
	MinNestedFiles    = 2
	MaxNestedFiles    = 4
	NestedProbability = 0.5

	MinFileSize = 128
	MaxFileSize = 16 * 1024

	// DefaultFolders is the number of top-level folders of the sample project.
	DefaultFolders = 5

	// DefaultRootName names the synthesized root folder.
	DefaultRootName = "project"
)

var (
	folderNames = []string{
		"src", "lib", "components", "utils", "services", "hooks", "pages", "api",
		"models", "config", "styles", "tests", "assets", "store", "types",
	}
	nestedNames = []string{"internal", "shared", "common", "helpers", "core", "legacy"}
	fileStems   = []string{
		"index", "app", "main", "utils", "helpers", "types", "config", "client",
		"server", "router", "store", "button", "layout", "header", "footer",
		"auth", "api", "constants", "hooks", "theme",
	}
	extensions = []string{".ts", ".tsx", ".js", ".jsx", ".css", ".json", ".md", ".go"}
)

// Options controls synthesis.
type Options struct {
	// Folders is the number of top-level folders. Zero or negative means
	// DefaultFolders.
	Folders int

	// RootName overrides DefaultRootName.
	RootName string

	// FolderNames, when set, names the top-level folders in order. Missing
	// names fall back to random ones.
	FolderNames []string
}

func (o Options) withDefaults() Options {
	if o.Folders <= 0 {
		o.Folders = DefaultFolders
	}
	if o.RootName == "" {
		o.RootName = DefaultRootName
	}
	return o
}

// Synthesize builds a random project tree. It always succeeds.
//
// The result depends only on the state of rng, so a seeded source yields a
// reproducible tree.
func Synthesize(rng random.Source, opts Options) *Node {
	opts = opts.withDefaults()
	names := folderNamesFor(rng, opts)

	root := NewFolder(opts.RootName)
	root.Children = make([]*Node, 0, opts.Folders)
	for _, name := range names {
		root.Children = append(root.Children, synthFolder(rng, name))
	}
	return root
}

func folderNamesFor(rng random.Source, opts Options) []string {
	names := make([]string, 0, opts.Folders)
	used := make(map[string]bool, opts.Folders)
	for _, n := range opts.FolderNames {
		if len(names) == opts.Folders {
			break
		}
		if n == "" || used[n] {
			continue
		}
		names = append(names, n)
		used[n] = true
	}

	pool := slices.Clone(folderNames)
	shuffle(rng, pool)
	for i := 0; len(names) < opts.Folders; i++ {
		n := pool[i%len(pool)]
		if i >= len(pool) {
			n = fmt.Sprintf("%s-%d", n, i/len(pool)+1)
		}
		if used[n] {
			continue
		}
		names = append(names, n)
		used[n] = true
	}
	return names
}

func synthFolder(rng random.Source, name string) *Node {
	folder := NewFolder(name)
	folder.Children = synthFiles(rng, random.Between(rng, MinFiles, MaxFiles))
	if random.Chance(rng, NestedProbability) {
		nested := NewFolder(random.Pick(rng, nestedNames))
		nested.Children = synthFiles(rng, random.Between(rng, MinNestedFiles, MaxNestedFiles))
		folder.Children = append(folder.Children, nested)
	}
	return folder
}

func synthFiles(rng random.Source, n int) []*Node {
	files := make([]*Node, 0, n)
	seen := make(map[string]int, n)
	for range n {
		name := random.Pick(rng, fileStems) + random.Pick(rng, extensions)
		if c := seen[name]; c > 0 {
			seen[name] = c + 1
			name = fmt.Sprintf("%d-%s", c+1, name)
		} else {
			seen[name] = 1
		}
		size := int64(random.Between(rng, MinFileSize, MaxFileSize))
		files = append(files, NewFile(name, size))
	}
	return files
}

func shuffle[T any](rng random.Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
