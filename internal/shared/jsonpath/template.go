package jsonpath

import "regexp"

var placeholder = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)

// Substitute replaces {{NAME}} placeholders with vars[NAME]. Unknown names
// become the empty string.
func Substitute(text string, vars map[string]string) string {
	if text == "" {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		return vars[name]
	})
}

// SubstituteAll applies Substitute to every value of headers and returns a
// new map; the input is left untouched.
func SubstituteAll(headers, vars map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = Substitute(v, vars)
	}
	return out
}
