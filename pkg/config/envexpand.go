package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// ExpandEnv expands {{.VAR}} placeholders in YAML content against the
// process environment before handing bytes to yaml.Unmarshal.
//
// Examples:
//   - {{.BRAVE_API_KEY}} -> value of BRAVE_API_KEY
//   - {{.DB_HOST}}:{{.DB_PORT}} -> hostname:port with both expanded
//
// Missing variables expand to the empty string. Malformed template syntax
// (unclosed actions, undefined functions, field access on a non-struct
// value) is passed through byte-for-byte unchanged rather than erroring,
// so a later YAML-parse or validation error points at the real line
// instead of a confusing template diagnostic.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("config").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, envMap()); err != nil {
		return data
	}
	return buf.Bytes()
}

func envMap() map[string]string {
	env := os.Environ()
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}
