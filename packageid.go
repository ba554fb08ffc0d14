package resolver

// PackageId is an opaque, hashable, totally-ordered identifier for a
// package within the scope of one resolution. Providers mint these; the
// resolver never attempts to parse or derive meaning from the string it
// wraps.
type PackageId string

func (p PackageId) String() string { return string(p) }
