package transcript

import (
	"context"
	"log"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// Tee reads from a primary store and writes to the primary plus every mirror.
// Mirrors are written after the primary succeeds. Only a primary failure fails
// Save; mirror failures are logged since the record is already readable.
type Tee struct {
	primary Store
	mirrors []Saver
}

func NewTee(primary Store, mirrors ...Saver) *Tee {
	return &Tee{primary: primary, mirrors: mirrors}
}

func (t *Tee) Save(ctx context.Context, tr chat.Transcript) error {
	if err := t.primary.Save(ctx, tr); err != nil {
		return err
	}
	for i, m := range t.mirrors {
		if err := m.Save(ctx, tr); err != nil {
			log.Printf("[store] mirror %d failed for transcript %s: %v", i, tr.ID, err)
		}
	}
	return nil
}

func (t *Tee) Get(ctx context.Context, id string) (chat.Transcript, error) {
	return t.primary.Get(ctx, id)
}

func (t *Tee) List(ctx context.Context) ([]Summary, error) {
	return t.primary.List(ctx)
}
