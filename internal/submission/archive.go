package submission

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

// Archive keeps each submission as a YAML document in blob storage.
type Archive struct {
	bs storage.BlobStore
}

func NewArchive(bs storage.BlobStore) *Archive { return &Archive{bs: bs} }

func Key(id int64) string { return fmt.Sprintf("submissions/%d.yaml", id) }

func (a *Archive) Save(ctx context.Context, id int64, r Record) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := a.bs.Put(ctx, Key(id), &buf)
	return err
}

// Document returns the stored YAML document.
func (a *Archive) Document(ctx context.Context, id int64) ([]byte, error) {
	rc, err := a.bs.Get(ctx, Key(id))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
