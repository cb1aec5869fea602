package cache

// Keyer derives cache keys.
type Keyer interface {
	// ReportKey keys a built report by the hashes of its two inputs.
	ReportKey(logHash, specHash string, opts ReportKeyOpts) string

	// ArtifactKey keys one rendered output of a report.
	ArtifactKey(reportHash string, opts ArtifactKeyOpts) string
}

// ReportKeyOpts holds the build options that change a report.
type ReportKeyOpts struct {
	SpecFormat string `json:"spec_format,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artefact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Title      string `json:"title,omitempty"`
	Detailed   bool   `json:"detailed,omitempty"`
	LayoutHash string `json:"layout_hash,omitempty"` // hash of the layout config
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey returns "report:<sha256>".
func (DefaultKeyer) ReportKey(logHash, specHash string, opts ReportKeyOpts) string {
	return hashKey("report", logHash, specHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(reportHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, reportHash, opts)
}
