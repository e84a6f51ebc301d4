package types

// Object is the normalized metadata record for one binary object.
//
// Text fields use the empty string for "absent": the format has no such
// concept, or parsing failed before the field was reached. MemberPath and
// Libraries are never nil.
type Object struct {
	// Name of the object. Fat slices get a synthetic "<index>. <name>".
	Name string `json:"name" yaml:"name"`

	// MemberPath lists enclosing container names, outermost first.
	MemberPath []string `json:"member_path" yaml:"member_path"`

	// ExecutableFormat is "ELF", "Mach-O", "PE32", "PE32+" or "COFF".
	ExecutableFormat string `json:"executable_format" yaml:"executable_format"`

	Is64        bool     `json:"is_64" yaml:"is_64"`
	OSType      string   `json:"os_type" yaml:"os_type"`
	FileType    string   `json:"file_type" yaml:"file_type"`
	IsStripped  bool     `json:"is_stripped" yaml:"is_stripped"`
	CPUType     string   `json:"cpu_type" yaml:"cpu_type"`
	CPUSubtype  string   `json:"cpu_subtype" yaml:"cpu_subtype"`
	Interpreter string   `json:"interpreter" yaml:"interpreter"`
	Libraries   []string `json:"libraries" yaml:"libraries"`

	// Digest is the xxh3 hash of the object's bytes, set for successfully
	// parsed leaves only. It never crosses the C boundary.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// NewObject returns a record carrying only identity fields.
func NewObject(name string, memberPath []string) Object {
	return Object{
		Name:       name,
		MemberPath: clonePath(memberPath),
		Libraries:  []string{},
	}
}

// Partial returns the subset of o that is meaningful after a parse error:
// identity, provenance and whatever format information was settled before
// failing. Everything else is reset to its absent value.
func (o Object) Partial() Object {
	p := NewObject(o.Name, o.MemberPath)
	p.ExecutableFormat = o.ExecutableFormat
	p.FileType = o.FileType
	return p
}

// Normalize replaces nil slices with empty ones so every record has the
// same shape regardless of which parser produced it.
func (o Object) Normalize() Object {
	if o.MemberPath == nil {
		o.MemberPath = []string{}
	}
	if o.Libraries == nil {
		o.Libraries = []string{}
	}
	return o
}

func clonePath(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}

// Outcome pairs a record with the error that interrupted it, if any.
// The record is always present; a non-nil Err marks it as partial.
type Outcome struct {
	Object Object        `json:"object" yaml:"object"`
	Err    *ParsingError `json:"error" yaml:"error"`
}

// OK reports whether the record was fully parsed.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Collection is the flattened, depth-first list of outcomes produced by one
// top-level read.
type Collection []Outcome

// Counts returns the number of successful and failed outcomes.
func (c Collection) Counts() (succeeded, failed int) {
	for _, o := range c {
		if o.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Member is one entry of a container: a fat slice or an archive member.
type Member struct {
	// Name is the member's own name. Fat slices use the synthetic index name.
	Name string
	// Offset and Size locate the member inside its container.
	Offset int64
	Size   int64
	// Data is the member's bytes. Nil when Err is set.
	Data []byte

	// CPUType and CPUSubtype carry the fat descriptor's architecture.
	CPUType    string
	CPUSubtype string

	// Err is set when this member alone cannot be extracted.
	Err error
}
