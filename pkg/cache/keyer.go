package cache

// LayoutKeyOpts are the inputs besides the tree that determine a layout.
type LayoutKeyOpts struct {
	Params any `json:"params"`
}

// ArtifactKeyOpts are the inputs besides the tree that determine a rendered
// artifact.
type ArtifactKeyOpts struct {
	Format  string            `json:"format"`
	View    string            `json:"view"`
	Params  any               `json:"params,omitempty"`
	Palette map[string]string `json:"palette,omitempty"`
	Links   bool              `json:"links,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of a computed layout.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of a rendered artifact.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options together with the tree hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}

var _ Keyer = DefaultKeyer{}
