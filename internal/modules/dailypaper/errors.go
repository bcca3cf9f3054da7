package dailypaper

import (
	"errors"
	"fmt"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/catalog"
)

var (
	ErrInvalidInput  = errors.New("invalid generation input")
	ErrInvalidConfig = catalog.ErrInvalidConfig
	ErrSlotExhausted = errors.New("slot attempt budget exhausted")
	ErrCommitFailed  = errors.New("paper commit failed")
	ErrPaperExists   = errors.New("paper already exists for date")
)

// SlotExhaustedError reports the slot that could not be filled.
type SlotExhaustedError struct {
	Subject            catalog.Subject
	Slot               int
	Attempts           int
	RequiredDifficulty catalog.Difficulty
	RequiredFormat     catalog.Format
	LastRejection      string
}

func (e *SlotExhaustedError) Error() string {
	return fmt.Sprintf("unable to generate unique %s question for slot %d after %d attempts", e.Subject, e.Slot, e.Attempts)
}

func (e *SlotExhaustedError) Unwrap() error { return ErrSlotExhausted }
