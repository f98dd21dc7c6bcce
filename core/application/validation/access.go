package validation

// HasAccess reports whether the deduplicated intersection of required and
// granted is non-empty. An empty required list never grants access.
func HasAccess(required, granted []string) bool {
	if len(required) == 0 || len(granted) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(granted))
	for _, tag := range granted {
		set[tag] = struct{}{}
	}
	for _, tag := range required {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}
