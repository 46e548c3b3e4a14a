package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/masonvector/masonvector/internal/ingest"
	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/store"
)

// corpus is the set of existing claimants a command compares against,
// gathered from an optional file and an optional SQLite store
type corpus struct {
	records []model.Claimant
	label   string
	store   *store.Store
}

// loadCorpus reads the corpus file (if any), then opens the store at dbPath
// (if any) and appends its rows. The caller closes the returned corpus.
func loadCorpus(ctx context.Context, file, dbPath string) (*corpus, error) {
	c := &corpus{}

	if file != "" {
		records, err := ingest.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
		c.records = append(c.records, records...)
		c.label = file
	}

	if dbPath != "" {
		st, err := store.Open(ctx, dbPath, logger)
		if err != nil {
			return nil, err
		}
		records, err := st.Load(ctx)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		c.records = append(c.records, records...)
		c.store = st
		if c.label == "" {
			c.label = dbPath
		} else {
			c.label += " + " + dbPath
		}
	}

	if appConfig.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d existing claimants", len(c.records))
		if c.label != "" {
			fmt.Fprintf(os.Stderr, " from %s", c.label)
		}
		fmt.Fprintln(os.Stderr)
	}

	return c, nil
}

func (c *corpus) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
