package command

// DefaultHistoryLimit is the undo depth used when none is configured.
const DefaultHistoryLimit = 100

// History is an undo/redo stack pair. It is not safe for concurrent use.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewHistory creates a history keeping at most limit undoable commands;
// limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Execute runs cmd and records it. A failed command is not recorded and the
// redo stack is kept.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	h.undo = append(h.undo, cmd)
	clear(h.redo)
	h.redo = h.redo[:0]
	h.trim()
	return nil
}

func (h *History) trim() {
	if h.limit <= 0 || len(h.undo) <= h.limit {
		return
	}
	drop := len(h.undo) - h.limit
	n := copy(h.undo, h.undo[drop:])
	clear(h.undo[n:])
	h.undo = h.undo[:n]
}

// Undo reverts the most recent command and moves it to the redo stack. When
// the command's Undo fails both stacks are left unchanged.
func (h *History) Undo() (Command, error) {
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Undo(); err != nil {
		return cmd, err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	return cmd, nil
}

// Redo re-executes the most recently undone command. When it fails both
// stacks are left unchanged.
func (h *History) Redo() (Command, error) {
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := h.redo[len(h.redo)-1]
	if err := cmd.Execute(); err != nil {
		return cmd, err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cmd)
	h.trim()
	return cmd, nil
}

// DiscardUndo drops the top of the undo stack without running it, e.g.
// after its Undo failed for good.
func (h *History) DiscardUndo() (Command, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return cmd, true
}

// DiscardRedo drops the top of the redo stack without running it.
func (h *History) DiscardRedo() (Command, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return cmd, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
func (h *History) UndoLen() int  { return len(h.undo) }
func (h *History) RedoLen() int  { return len(h.redo) }

// PeekUndo returns the description of the command Undo would revert.
func (h *History) PeekUndo() (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	return h.undo[len(h.undo)-1].Description(), true
}

// PeekRedo returns the description of the command Redo would re-apply.
func (h *History) PeekRedo() (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	return h.redo[len(h.redo)-1].Description(), true
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo, h.redo = nil, nil
}
