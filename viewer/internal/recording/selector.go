package recording

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNoDatasetsFound means no subject can be offered at all.
	ErrNoDatasetsFound = errors.New("no EEG datasets found")
	ErrUnknownSubject  = errors.New("unknown subject")
)

// SubjectsFromNames extracts the subject catalog from dataset file names:
// the leading token of every .csv name with its sub- prefix removed. Tokens
// that could leave the cache directory are skipped.
func SubjectsFromNames(names []string) []string {
	seen := make(map[string]struct{})
	for _, name := range names {
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		token, _, _ := strings.Cut(name, "_")
		subject := strings.TrimPrefix(token, "sub-")
		if subject == "" || strings.HasSuffix(subject, ".csv") || !safeSubject(subject) {
			continue
		}
		seen[subject] = struct{}{}
	}

	subjects := make([]string, 0, len(seen))
	for s := range seen {
		subjects = append(subjects, s)
	}
	slices.Sort(subjects)
	return subjects
}

// Resolve maps a selection onto its dataset key. subjects is the catalog the
// selection was offered from.
func Resolve(subjects []string, subjectID string, condition Condition, task Task) (Key, error) {
	if len(subjects) == 0 {
		return "", ErrNoDatasetsFound
	}
	if !slices.Contains(subjects, subjectID) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubject, subjectID)
	}
	if _, ok := sessionCodes[condition]; !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidCondition, int(condition))
	}
	if _, ok := taskCodes[task]; !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidTask, int(task))
	}

	return Session{SubjectID: subjectID, Condition: condition, Task: task}.Key(), nil
}

func safeSubject(s string) bool {
	return !strings.ContainsAny(s, `/\`) && !strings.Contains(s, "..")
}
