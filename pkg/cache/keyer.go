package cache

// Key type prefixes. They double as the keyType reported to cache hooks.
const (
	KeyArchitecture = "architecture"
	KeyDocument     = "document"
	KeyArtifact     = "artifact"
)

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// ArchitectureKey keys an extraction result by questionnaire content
	// and the model that produced it.
	ArchitectureKey(questionnaireHash string, opts ArchitectureKeyOpts) string

	// DocumentKey keys a laid-out document by architecture digest.
	DocumentKey(digest string, opts DocumentKeyOpts) string

	// ArtifactKey keys one rendered format by architecture digest.
	ArtifactKey(digest string, opts ArtifactKeyOpts) string
}

// ArchitectureKeyOpts are the extraction inputs besides the questionnaire.
type ArchitectureKeyOpts struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	ClientName string `json:"client_name,omitempty"`
	NotesHash  string `json:"notes_hash,omitempty"`
}

// DocumentKeyOpts are the layout inputs besides the architecture.
type DocumentKeyOpts struct {
	Theme      string `json:"theme"`
	ConfigHash string `json:"config_hash"`
}

// ArtifactKeyOpts are the render inputs besides the architecture.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Theme      string `json:"theme"`
	ConfigHash string `json:"config_hash"`
	Detailed   bool   `json:"detailed,omitempty"`
}

// DefaultKeyer produces "<type>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArchitectureKey(questionnaireHash string, opts ArchitectureKeyOpts) string {
	return hashKey(KeyArchitecture, questionnaireHash, opts)
}

func (DefaultKeyer) DocumentKey(digest string, opts DocumentKeyOpts) string {
	return hashKey(KeyDocument, digest, opts)
}

func (DefaultKeyer) ArtifactKey(digest string, opts ArtifactKeyOpts) string {
	return hashKey(KeyArtifact, digest, opts)
}

var _ Keyer = DefaultKeyer{}
