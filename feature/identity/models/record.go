package models

// DirectoryRecord is one raw record from an LDAP-style directory source:
// attribute name to list of byte values. The first value of an attribute is
// the effective one; a missing key means the field is not present.
type DirectoryRecord map[string][][]byte

// First returns the decoded first value of the given attribute and whether
// it was present and non-empty.
func (r DirectoryRecord) First(key string) (string, bool) {
	values, ok := r[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return string(values[0]), true
}

// FirstOrDefault returns the decoded first value of the given attribute, or
// the default when the attribute is absent.
func (r DirectoryRecord) FirstOrDefault(key, def string) string {
	if v, ok := r.First(key); ok {
		return v
	}
	return def
}
