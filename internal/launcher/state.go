package launcher

import (
	"sync/atomic"
)

// State tells whether the game client was started through the launcher
type State struct {
	launched atomic.Bool
}

func NewState(launched bool) *State {
	s := &State{}
	s.launched.Store(launched)

	return s
}

func (s *State) IsLaunched() bool {
	return s.launched.Load()
}

func (s *State) MarkLaunched() {
	s.launched.Store(true)
}
