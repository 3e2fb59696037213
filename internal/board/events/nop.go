package events

import "github.com/gartstein/staffboard/internal/board/models"

// Nop discards refresh notifications.
type Nop struct{}

// Refresh is a no-op.
func (Nop) Refresh([]models.ViewState) {}
