package gazetteer

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/db"
)

// LoadFile reads a Shift_JIS KEN_ALL file from disk.
func LoadFile(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return LoadKenAll(f)
}

// Open loads the gazetteer from the source cfg names: the KEN_ALL file or
// the Postgres snapshot. It is called once at startup.
func Open(ctx context.Context, cfg *config.Config) (*Gazetteer, error) {
	start := time.Now()

	var (
		g   *Gazetteer
		err error
	)
	switch cfg.GazetteerSource {
	case config.SourceDB:
		var conn *db.Connection
		conn, err = db.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open gazetteer: %w", err)
		}
		defer conn.Close()
		g, err = NewStore(conn.DB).Load(ctx)
	default:
		g, err = LoadFile(cfg.GazetteerPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}

	p, c, a := g.Stats()
	log.Printf("Loaded gazetteer from %s: %d prefectures, %d cities, %d areas (%v)",
		cfg.GazetteerSource, p, c, a, time.Since(start).Round(time.Millisecond))
	return g, nil
}
