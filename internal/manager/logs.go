package manager

import (
	"bufio"
	"fmt"
	"os"
)

// DefaultLogLines is how many lines Logs returns when none are requested.
const DefaultLogLines = 50

// LogTail is the end of one log file.
type LogTail struct {
	Path   string
	Exists bool
	Lines  []string
}

// Logs returns the last lines of the task's stdout and stderr logs.
func (m *Manager) Logs(name string, lines int) (stdout, stderr LogTail, err error) {
	doc, err := m.store.Load()
	if err != nil {
		return LogTail{}, LogTail{}, err
	}
	if _, err := doc.Get(name); err != nil {
		return LogTail{}, LogTail{}, err
	}
	if lines <= 0 {
		lines = DefaultLogLines
	}

	outPath, errPath := m.scheduler.LogPaths(name)
	if stdout, err = tailFile(outPath, lines); err != nil {
		return LogTail{}, LogTail{}, err
	}
	if stderr, err = tailFile(errPath, lines); err != nil {
		return LogTail{}, LogTail{}, err
	}
	return stdout, stderr, nil
}

// tailFile keeps the last n lines in a ring while scanning the file once.
func tailFile(path string, n int) (LogTail, error) {
	tail := LogTail{Path: path}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tail, nil
		}
		return tail, fmt.Errorf("failed to open log %s: %w", path, err)
	}
	defer f.Close()
	tail.Exists = true

	// the ring grows with the file, so a huge n costs nothing on a short log
	var ring []string
	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(ring) < n {
			ring = append(ring, scanner.Text())
		} else {
			ring[count%n] = scanner.Text()
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return tail, fmt.Errorf("failed to read log %s: %w", path, err)
	}

	if count <= n {
		tail.Lines = ring
		return tail, nil
	}
	start := count % n
	tail.Lines = append(append([]string(nil), ring[start:]...), ring[:start]...)
	return tail, nil
}
