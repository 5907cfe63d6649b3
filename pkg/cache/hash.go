package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"
)

// Stage names the pipeline step a cached entry belongs to. It is the
// readable prefix of every key.
type Stage string

const (
	StageGraph    Stage = "graph"
	StageLayout   Stage = "layout"
	StageArtifact Stage = "artifact"
)

// keyVersion is hashed into every key. Bump it when the graph JSON or an
// artifact format changes so old entries are never read back.
const keyVersion = 1

// stageKey returns "<stage>:<sha256 of version and parts>".
func stageKey(stage Stage, parts ...any) string {
	data, _ := json.Marshal(struct {
		V     int   `json:"v"`
		Parts []any `json:"parts"`
	}{keyVersion, parts})
	return string(stage) + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Graph JSON is hashed with it to
// chain the layout and artifact keys to the graph they were derived from.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashPaths hashes a file selection. The order of paths does not matter.
func HashPaths(paths []string) string {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	return Hash([]byte(strings.Join(sorted, "\x00")))
}
