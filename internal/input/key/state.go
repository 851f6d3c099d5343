package key

// State tracks which modifiers are held during the active buffering window.
//
// State is not safe for concurrent use; the engine confines it to one owner.
type State struct {
	held Modifier
}

// MarkHeld records a modifier as held.
func (s *State) MarkHeld(mod Modifier) {
	s.held = s.held.With(mod)
}

// MarkHeldName records a modifier by its chord-text name or alias.
// Returns false if the name is not a modifier.
func (s *State) MarkHeldName(name string) bool {
	mod := ModifierFromName(name)
	if mod == ModNone {
		return false
	}
	s.MarkHeld(mod)
	return true
}

// Reset clears all held modifiers.
func (s *State) Reset() {
	s.held = ModNone
}

// Held returns the currently held modifiers.
func (s *State) Held() Modifier {
	return s.held
}

// Serialize returns the canonical joined names of the held modifiers,
// or "" if none are held.
func (s *State) Serialize(sep string) string {
	return s.held.Join(sep)
}
