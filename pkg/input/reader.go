package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadUsernames loads the tracked username list from a text file, one
// username per line. Lines are trimmed, a leading "@" is dropped, blanks
// and "#" comments are skipped, and duplicates keep their first position.
func ReadUsernames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open username list: %w", err)
	}
	defer f.Close()

	var usernames []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		name = strings.TrimPrefix(name, "@")
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		usernames = append(usernames, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read username list: %w", err)
	}

	return usernames, nil
}
