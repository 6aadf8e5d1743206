package parse

type parseOpts struct {
	source  string
	secrets bool
	raw     bool
}

type ParseOption func(*parseOpts)

// WithSource names the document in positions and include cycle reports.
func WithSource(name string) ParseOption {
	return func(o *parseOpts) { o.source = name }
}

// ParseSecret marks every string scalar of the document secret, as if
// each were tagged !secret.
func ParseSecret() ParseOption {
	return func(o *parseOpts) { o.secrets = true }
}

// ParseRaw disables quoting of unquoted {{ }} values before the YAML
// parser sees them.
func ParseRaw() ParseOption {
	return func(o *parseOpts) { o.raw = true }
}
