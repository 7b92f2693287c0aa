package storage

import "strings"

// Attachment values are either bare storage keys or absolute URLs. A
// value without an http(s) scheme is a key. Key→URL joins with the
// public base; URL→key strips the base prefix when present and leaves
// anything else untouched, so the two translations round-trip.

// IsAbsoluteURL reports whether v carries an http or https scheme.
func IsAbsoluteURL(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// JoinURL joins the public base URL and a storage key, normalizing
// slashes on both sides.
func JoinURL(base, key string) string {
	b := strings.TrimRight(base, "/")
	k := strings.TrimLeft(key, "/")
	return b + "/" + k
}

// URLToKey strips the base prefix from an absolute URL. Bare keys and
// URLs outside the base come back unchanged.
func URLToKey(base, v string) string {
	if v == "" || !IsAbsoluteURL(v) {
		return v
	}
	b := strings.TrimRight(base, "/")
	if strings.HasPrefix(v, b+"/") {
		return v[len(b)+1:]
	}
	return v
}

// ResolveURLs maps stored attachment values to public URLs, dropping
// empties and passing already-absolute values through.
func ResolveURLs(base string, vals []string) []string {
	urls := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if IsAbsoluteURL(v) {
			urls = append(urls, v)
			continue
		}
		urls = append(urls, JoinURL(base, v))
	}
	return urls
}

// StaleKeys returns the storage keys referenced by oldVals but not by
// newVals, both normalized to bare keys first. These are the objects an
// update or delete must remove from storage.
func StaleKeys(base string, oldVals, newVals []string) []string {
	newSet := make(map[string]struct{}, len(newVals))
	for _, v := range newVals {
		if k := URLToKey(base, v); k != "" {
			newSet[k] = struct{}{}
		}
	}

	var stale []string
	for _, v := range oldVals {
		k := URLToKey(base, v)
		if k == "" {
			continue
		}
		if _, kept := newSet[k]; !kept {
			stale = append(stale, k)
		}
	}
	return stale
}
