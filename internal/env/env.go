package env

import (
	"os"
	"strings"
)

// Load reads dotenv files in order. Variables already present in the real
// environment win over file values; missing files are skipped silently.
func Load(paths ...string) {
	set := map[string]bool{}
	for _, e := range os.Environ() {
		if k, _, ok := strings.Cut(e, "="); ok {
			set[k] = true
		}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			k, v, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			k = strings.TrimSpace(k)
			v = strings.TrimSpace(v)
			if i := strings.Index(v, " #"); i >= 0 {
				v = strings.TrimSpace(v[:i])
			}
			v = strings.Trim(v, `"'`)
			if k == "" || set[k] {
				continue
			}
			_ = os.Setenv(k, v)
		}
	}
}
