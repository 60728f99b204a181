package domain

type LookupKind int

const (
	LookupMissing LookupKind = iota
	LookupFound
	LookupInconsistent
)

func (k LookupKind) String() string {
	switch k {
	case LookupFound:
		return "found"
	case LookupInconsistent:
		return "inconsistent"
	default:
		return "missing"
	}
}

// Lookup is the result of scanning the cache for one user: nothing, exactly
// one artifact, or several. Several means a write or cleanup was cut short
// and must not be served.
type Lookup struct {
	kind LookupKind
	refs []ArtifactRef
}

func Missing() Lookup {
	return Lookup{kind: LookupMissing}
}

func Found(ref ArtifactRef) Lookup {
	return Lookup{kind: LookupFound, refs: []ArtifactRef{ref}}
}

// Inconsistent keeps refs newest first.
func Inconsistent(refs []ArtifactRef) Lookup {
	sorted := append([]ArtifactRef(nil), refs...)
	SortNewestFirst(sorted)
	return Lookup{kind: LookupInconsistent, refs: sorted}
}

// ResolveLookup classifies the artifacts found for one user.
func ResolveLookup(refs []ArtifactRef) Lookup {
	switch len(refs) {
	case 0:
		return Missing()
	case 1:
		return Found(refs[0])
	default:
		return Inconsistent(refs)
	}
}

func (l Lookup) Kind() LookupKind {
	return l.kind
}

// Ref returns the artifact of a Found lookup.
func (l Lookup) Ref() (ArtifactRef, bool) {
	if l.kind != LookupFound {
		return ArtifactRef{}, false
	}
	return l.refs[0], true
}

// Conflicts returns the artifacts of an Inconsistent lookup.
func (l Lookup) Conflicts() []ArtifactRef {
	if l.kind != LookupInconsistent {
		return nil
	}
	return append([]ArtifactRef(nil), l.refs...)
}

func (l Lookup) Filenames() []string {
	names := make([]string, len(l.refs))
	for i, r := range l.refs {
		names[i] = r.Filename
	}
	return names
}

// Eviction reports what EvictSuperseded kept and removed.
type Eviction struct {
	Kept    ArtifactRef
	Removed []string
}
