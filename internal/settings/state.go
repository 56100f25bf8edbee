package settings

// State is the process-wide settings holder. It is owned by the session and
// not safe for concurrent use.
type State struct {
	baseline Settings
	current  Settings
	version  uint64
}

// NewState returns a state that reports baseline until the first Replace.
func NewState(baseline Settings) *State {
	return &State{baseline: baseline.Clone(), current: baseline.Clone()}
}

// Replace swaps the active settings and returns the new version.
func (s *State) Replace(next Settings) uint64 {
	s.current = next.Clone()
	s.version++
	return s.version
}

// Current returns a copy of the active settings.
func (s *State) Current() Settings {
	return s.current.Clone()
}

// Baseline returns the fallback used for fields a client leaves unset.
func (s *State) Baseline() Settings {
	return s.baseline.Clone()
}

// SetBaseline changes the fallback. When no client settings have been
// applied yet, the active settings follow the new baseline.
func (s *State) SetBaseline(baseline Settings) {
	s.baseline = baseline.Clone()
	if s.version == 0 {
		s.current = baseline.Clone()
	}
}

// Version counts Replace calls; zero means the baseline is active.
func (s *State) Version() uint64 {
	return s.version
}
