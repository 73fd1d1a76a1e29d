package configuration

import (
	"bufio"
	"os"
	"strings"
)

// LoadEnvFromFile overlays KEY=VALUE pairs from the given files onto the
// process environment before the tracker configuration is resolved.
// Variables already present in the environment win over file entries.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			key, val, ok := parseEnvLine(scanner.Text())
			if !ok {
				continue
			}
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
		_ = f.Close()
	}
}

// parseEnvLine splits one KEY=VALUE line, stripping surrounding quotes from
// the value. ok is false for blank lines, comments and lines without '='.
func parseEnvLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	val = strings.Trim(strings.TrimSpace(line[idx+1:]), "\"'")
	return key, val, true
}
