package stacktrace

import "strings"

// InternalPaths picks this service's own frames out of a raw goroutine stack
// and trims each to the path under internal/. Panic logs then show where in
// the service the failure happened without the runtime noise.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines))

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.Contains(line, "/internal/") {
			continue
		}

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		end := strings.Index(line[idx:], " ")
		if end == -1 {
			end = len(line)
		} else {
			end += idx
		}

		short := line[:end]
		if cut := strings.Index(short, "/internal/"); cut != -1 {
			paths = append(paths, short[cut+1:])
		}
	}

	return paths
}
