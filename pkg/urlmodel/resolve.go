package urlmodel

import "strings"

// Resolve resolves link against base per RFC 3986 §5.2, with the HTTP
// ecosystem's usual shortcuts: an empty link with no fragment reuses base
// unchanged; a "#fragment"-only link keeps base's path and query and
// replaces only the fragment.
func (base *URL) Resolve(link string) (*URL, error) {
	if link == "" {
		return base.Clone(), nil
	}
	if strings.HasPrefix(link, "#") {
		frag := link[1:]
		decoded, err := percentDecode(frag)
		if err != nil {
			return nil, err
		}
		out := base.Clone()
		out.Fragment = &decoded
		out.ResetCanonical()
		return out, nil
	}

	if looksAbsolute(link) {
		return Parse(link)
	}

	if strings.HasPrefix(link, "//") {
		return Parse(base.Scheme + ":" + link)
	}

	pathPart, queryPart, fragPart := splitPathQueryFragment(link)

	out := base.Clone()
	if pathPart == "" {
		// Keep base path; query/fragment handled below per RFC 3986 §5.3.
	} else if strings.HasPrefix(pathPart, "/") {
		segs, err := parsePathSegments(pathPart)
		if err != nil {
			return nil, err
		}
		out.PathSegments = segs
	} else {
		merged := mergePaths(base.PathSegments, pathPart)
		segs, err := parsePathSegments(merged)
		if err != nil {
			return nil, err
		}
		out.PathSegments = segs
	}

	if pathPart != "" || strings.ContainsAny(link, "?") {
		q, err := parseQuery(queryPart)
		if err != nil {
			return nil, err
		}
		out.Query = q
	}

	if fragPart != nil {
		decoded, err := percentDecode(*fragPart)
		if err != nil {
			return nil, err
		}
		out.Fragment = &decoded
	} else {
		out.Fragment = nil
	}

	out.ResetCanonical()
	return out, nil
}

// looksAbsolute reports whether link begins with a URI scheme ("http:",
// "https:", "ws:", "wss:", or any "scheme:").
func looksAbsolute(link string) bool {
	idx := strings.IndexByte(link, ':')
	if idx <= 0 {
		return false
	}
	scheme := link[:idx]
	for i := 0; i < len(scheme); i++ {
		c := scheme[i]
		alnum := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
		if !alnum && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	// A bare "a:b" where 'a' is a single letter followed by a digit looks
	// like a Windows drive letter rather than a scheme; HTTP links never
	// collide with that, so no special-casing is needed here.
	return idx+1 < len(link)
}

// mergePaths implements RFC 3986 §5.3's merge routine for a relative
// reference against a base path that has at least an empty segment list.
func mergePaths(baseSegments []string, relPath string) string {
	var prefix string
	if len(baseSegments) > 0 {
		dir := baseSegments[:len(baseSegments)-1]
		if len(dir) > 0 {
			prefix = "/" + strings.Join(dir, "/") + "/"
		} else {
			prefix = "/"
		}
	} else {
		prefix = "/"
	}
	return prefix + relPath
}
