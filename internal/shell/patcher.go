package shell

import (
	"errors"
	"fmt"
	"os"

	"droidswitch/config/storage"
)

// Action is what happened to one target
type Action string

const (
	ActionInstalled Action = "installed"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionRemoved   Action = "removed"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
)

// Result is the outcome for one target file
type Result struct {
	Path   string
	Action Action
	Err    error
}

// EffectResult is the outcome of one side effect
type EffectResult struct {
	Name string
	Err  error
}

// Report collects per-target and per-side-effect outcomes. Nothing in a
// report is fatal; callers decide whether to log it.
type Report struct {
	Platform    string
	Targets     []Result
	SideEffects []EffectResult
}

// Err joins every failure in the report, nil if there were none
func (r Report) Err() error {
	var errs []error
	for _, t := range r.Targets {
		if t.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Path, t.Err))
		}
	}
	for _, e := range r.SideEffects {
		if e.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, e.Err))
		}
	}
	return errors.Join(errs...)
}

// Changed reports whether any target file was written or removed
func (r Report) Changed() bool {
	for _, t := range r.Targets {
		switch t.Action {
		case ActionInstalled, ActionUpdated, ActionRemoved:
			return true
		}
	}
	return false
}

// TargetStatus describes the current state of one target
type TargetStatus struct {
	Target Target
	Exists bool
	State  State
	Err    error
}

// Patcher installs and removes the wrapper across an integration's targets
type Patcher struct {
	integration Integration
}

// NewPatcher creates a Patcher for the given integration
func NewPatcher(integration Integration) *Patcher {
	return &Patcher{integration: integration}
}

// Integration returns the platform integration the patcher works with
func (p *Patcher) Integration() Integration {
	return p.integration
}

// Install brings every target up to the current wrapper version and then
// runs the platform side effects.
func (p *Patcher) Install() Report {
	report := Report{Platform: p.integration.Name()}
	for _, t := range p.integration.Targets() {
		report.Targets = append(report.Targets, p.installTarget(t))
	}
	for _, se := range p.integration.SideEffects() {
		report.SideEffects = append(report.SideEffects, EffectResult{Name: se.Name, Err: se.Run()})
	}
	return report
}

// Uninstall removes the wrapper from every target. Owned files are deleted.
func (p *Patcher) Uninstall() Report {
	report := Report{Platform: p.integration.Name()}
	for _, t := range p.integration.Targets() {
		report.Targets = append(report.Targets, p.uninstallTarget(t))
	}
	return report
}

// Status inspects every target without modifying anything
func (p *Patcher) Status() []TargetStatus {
	var statuses []TargetStatus
	for _, t := range p.integration.Targets() {
		st := TargetStatus{Target: t}
		content, exists, err := readTarget(t.Path)
		st.Exists = exists
		if err != nil {
			st.Err = err
		} else if exists {
			block, err := t.Template.Render()
			if err != nil {
				st.Err = err
			} else {
				st.State, st.Err = Detect(content, block)
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (p *Patcher) installTarget(t Target) Result {
	res := Result{Path: t.Path}

	content, exists, err := readTarget(t.Path)
	if err != nil {
		return failed(res, err)
	}
	if !exists && !t.Owned && !dirExists(t.CreateIn) {
		res.Action = ActionSkipped
		return res
	}

	block, err := t.Template.Render()
	if err != nil {
		return failed(res, err)
	}

	state, err := Detect(content, block)
	if err != nil {
		if !t.Owned {
			return failed(res, err)
		}
		state = State{Kind: Stale}
	}
	if state.Kind == Current {
		res.Action = ActionUnchanged
		return res
	}

	var updated string
	if t.Owned {
		updated = block.Text + block.lineEnding()
	} else if updated, _, err = Apply(content, block); err != nil {
		return failed(res, err)
	}

	// User files get a backup before their first rewrite by us.
	backup := exists && !t.Owned && state.Kind == Absent
	if err := storage.AtomicFileUpdate(t.Path, updated, backup); err != nil {
		return failed(res, err)
	}

	if state.Kind == Stale || (t.Owned && exists) {
		res.Action = ActionUpdated
	} else {
		res.Action = ActionInstalled
	}
	return res
}

func (p *Patcher) uninstallTarget(t Target) Result {
	res := Result{Path: t.Path, Action: ActionSkipped}

	content, exists, err := readTarget(t.Path)
	if err != nil {
		return failed(res, err)
	}
	if !exists {
		return res
	}

	if t.Owned {
		if err := os.Remove(t.Path); err != nil {
			return failed(res, err)
		}
		res.Action = ActionRemoved
		return res
	}

	updated, changed, err := Strip(content, t.Template.Markers)
	if err != nil {
		return failed(res, err)
	}
	if !changed {
		return res
	}
	if err := storage.AtomicFileUpdate(t.Path, updated, false); err != nil {
		return failed(res, err)
	}
	res.Action = ActionRemoved
	return res
}

func readTarget(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read: %w", err)
	}
	return string(data), true, nil
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func failed(res Result, err error) Result {
	res.Action = ActionFailed
	res.Err = err
	return res
}
