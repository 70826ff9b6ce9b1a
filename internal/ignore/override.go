package ignore

// Override is a set of caller-supplied globs that outranks every ignore file.
//
// Polarity is inverted with respect to ignore files: a plain glob whitelists
// what it matches and "!glob" ignores it. Once at least one whitelist glob is
// present, any non-directory that no glob matches is ignored, so a single
// "*.go" override restricts a walk to Go files while still descending into
// every directory.
type Override struct {
	set *Set
}

// Matched returns the override verdict for path.
func (o *Override) Matched(path string, isDir bool) Verdict {
	if o.IsEmpty() {
		return None
	}
	v, _ := o.set.Match(path, isDir)
	switch v {
	case Ignored:
		return Whitelisted
	case Whitelisted:
		return Ignored
	}
	if o.NumWhitelists() > 0 && !isDir {
		return Ignored
	}
	return None
}

// IsEmpty reports whether no globs were added.
func (o *Override) IsEmpty() bool {
	return o == nil || o.set.Len() == 0
}

// NumWhitelists counts globs that whitelist (those without a leading "!").
func (o *Override) NumWhitelists() int {
	if o == nil {
		return 0
	}
	return o.set.Len() - o.set.NumWhitelists()
}

// Root returns the directory globs are resolved against.
func (o *Override) Root() string {
	if o == nil {
		return ""
	}
	return o.set.Root()
}

// WithRoot returns a copy of o whose globs resolve against root.
func (o *Override) WithRoot(root string) *Override {
	if o.IsEmpty() {
		return o
	}
	return &Override{set: o.set.WithRoot(root)}
}

// OverrideBuilder collects override globs rooted at a directory.
type OverrideBuilder struct {
	b   *Builder
	err error
}

// NewOverrideBuilder starts an override set rooted at root.
func NewOverrideBuilder(root string) *OverrideBuilder {
	return &OverrideBuilder{b: NewBuilder(root)}
}

// Add appends one glob. A malformed glob is rejected immediately and also
// makes Build fail.
func (ob *OverrideBuilder) Add(glob string) error {
	if err := ob.b.Add(glob); err != nil {
		if ob.err == nil {
			ob.err = err
		}
		return err
	}
	return nil
}

// Build compiles the accumulated globs into an immutable Override.
func (ob *OverrideBuilder) Build() (*Override, error) {
	if ob.err != nil {
		return nil, ob.err
	}
	return &Override{set: ob.b.Build()}, nil
}
