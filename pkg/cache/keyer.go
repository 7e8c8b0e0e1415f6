package cache

// Keyer derives cache keys from the inputs that determine a cached value.
type Keyer interface {
	// PositionsKey names the saved node positions of a model.
	PositionsKey(modelHash string, opts PositionKeyOpts) string
	// ArtifactKey names a rendered artifact of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// PositionKeyOpts are the settings that change which nodes exist and
// where they settle.
type PositionKeyOpts struct {
	ShowClasses   bool `json:"show_classes"`
	ShowInstances bool `json:"show_instances"`
	ShowConcepts  bool `json:"show_concepts"`
}

// ArtifactKeyOpts are the settings that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Engine string  `json:"engine,omitempty"`
	Scale  float64 `json:"scale,omitempty"` // Raster formats only
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PositionsKey implements [Keyer].
func (DefaultKeyer) PositionsKey(modelHash string, opts PositionKeyOpts) string {
	return hashKey("positions", modelHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
