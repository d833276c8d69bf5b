package recording

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidTask      = errors.New("invalid task")
	ErrInvalidKey       = errors.New("invalid dataset key")
)

// Condition is the sleep condition a recording was taken under.
type Condition int

const (
	NormalSleep Condition = iota
	SleepDeprived
)

// Conditions lists every condition in picker order.
var Conditions = []Condition{NormalSleep, SleepDeprived}

var conditionLabels = map[Condition]string{
	NormalSleep:   "Normal Sleep (NS)",
	SleepDeprived: "Sleep Deprived (SD)",
}

var sessionCodes = map[Condition]string{
	NormalSleep:   "ses-1",
	SleepDeprived: "ses-2",
}

var conditionAliases = map[string]Condition{
	"normal sleep (ns)":   NormalSleep,
	"ns":                  NormalSleep,
	"ses-1":               NormalSleep,
	"normal_sleep":        NormalSleep,
	"sleep deprived (sd)": SleepDeprived,
	"sd":                  SleepDeprived,
	"ses-2":               SleepDeprived,
	"sleep_deprived":      SleepDeprived,
}

func (c Condition) String() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return fmt.Sprintf("Condition(%d)", int(c))
}

// SessionCode returns the dataset session token (ses-1 or ses-2).
func (c Condition) SessionCode() string {
	return sessionCodes[c]
}

// ParseCondition accepts the display label, NS/SD, the session code or the
// snake_case name, case-insensitively.
func ParseCondition(s string) (Condition, error) {
	if c, ok := conditionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
}

// Task is the resting-state task of a recording.
type Task int

const (
	EyesOpen Task = iota
	EyesClosed
)

// Tasks lists every task in picker order.
var Tasks = []Task{EyesOpen, EyesClosed}

var taskLabels = map[Task]string{
	EyesOpen:   "Eyes Open",
	EyesClosed: "Eyes Closed",
}

var taskCodes = map[Task]string{
	EyesOpen:   "eyesopen",
	EyesClosed: "eyesclosed",
}

var taskAliases = map[string]Task{
	"eyes open":   EyesOpen,
	"eyesopen":    EyesOpen,
	"eyes_open":   EyesOpen,
	"eyes closed": EyesClosed,
	"eyesclosed":  EyesClosed,
	"eyes_closed": EyesClosed,
}

func (t Task) String() string {
	if label, ok := taskLabels[t]; ok {
		return label
	}
	return fmt.Sprintf("Task(%d)", int(t))
}

// Code returns the dataset task token (eyesopen or eyesclosed).
func (t Task) Code() string {
	return taskCodes[t]
}

// ParseTask accepts the display label, the task code or the snake_case name.
func ParseTask(s string) (Task, error) {
	if t, ok := taskAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTask, s)
}

// Session identifies one EEG recording. It only lives for one request.
type Session struct {
	SubjectID string
	Condition Condition
	Task      Task
}

// Key is the canonical dataset identifier, e.g. sub-01_ses-1_eyesopen.
type Key string

// Key maps the session onto its dataset key.
func (s Session) Key() Key {
	return Key(fmt.Sprintf("sub-%s_%s_%s", s.SubjectID, s.Condition.SessionCode(), s.Task.Code()))
}

// Filename is the local and remote object name of the dataset.
func (k Key) Filename() string {
	return string(k) + ".csv"
}

func (k Key) String() string {
	return string(k)
}

// ParseKey is the inverse of Session.Key. A trailing .csv is accepted.
func ParseKey(name string) (Session, error) {
	base := strings.TrimSuffix(name, ".csv")

	parts := strings.Split(base, "_")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "sub-") || len(parts[0]) == len("sub-") {
		return Session{}, fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}

	cond, err := ParseCondition(parts[1])
	if err != nil || parts[1] != cond.SessionCode() {
		return Session{}, fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	task, err := ParseTask(parts[2])
	if err != nil || parts[2] != task.Code() {
		return Session{}, fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}

	return Session{
		SubjectID: strings.TrimPrefix(parts[0], "sub-"),
		Condition: cond,
		Task:      task,
	}, nil
}
