package content

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"

	"github.com/jwebster45206/mud-engine/internal/errors"
	"github.com/jwebster45206/mud-engine/pkg/storage"
)

// catalogFile describes one template catalog in the data directory.
type catalogFile struct {
	base   string
	key    string
	kind   storage.Kind
	schema SchemaName
}

var catalogFiles = []catalogFile{
	{base: "items", key: "items", kind: storage.KindItem, schema: SchemaItem},
	{base: "npcs", key: "npcs", kind: storage.KindNPC, schema: SchemaNPC},
	{base: "mobs", key: "mobs", kind: storage.KindMob, schema: SchemaMob},
}

// SeedResult counts the records written per kind.
type SeedResult map[storage.Kind]int

// Seed validates the catalog files in dataDir and puts every record into
// the repository. A missing catalog file is skipped.
func Seed(ctx context.Context, repo storage.Repository, dataDir string, log *slog.Logger) (SeedResult, error) {
	if log == nil {
		log = slog.Default()
	}
	res := make(SeedResult)
	for _, cf := range catalogFiles {
		path := FindFile(dataDir, cf.base)
		if path == "" {
			log.Warn("catalog file not found, skipping", "data_dir", dataDir, "catalog", cf.base)
			continue
		}
		records, err := ReadRecords(path, cf.key, cf.schema)
		if err != nil {
			return res, err
		}
		for _, r := range records {
			if err := repo.Put(ctx, cf.kind, r.ID, r.Data); err != nil {
				return res, errors.Wrapf(err, "failed to store %s %q", cf.kind, r.ID)
			}
		}
		res[cf.kind] = len(records)
		log.Info("catalog seeded", "catalog", cf.base, "file", filepath.Base(path), "records", len(records))
	}
	return res, nil
}

// Record is one validated catalog entry in compact JSON.
type Record struct {
	ID   string
	Data []byte
}

// ReadRecords reads path, takes the array under key and validates each
// element against schema. Failures are InvalidArgument errors naming the
// file and the record.
func ReadRecords(path, key string, schema SchemaName) ([]Record, error) {
	file := filepath.Base(path)
	data, err := ReadJSON(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read catalog")
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, file+": catalog must be an object")
	}
	var raws []json.RawMessage
	if body, ok := doc[key]; ok {
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, file+": \""+key+"\" must be an array")
		}
	}

	records := make([]Record, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		v, err := Generic(raw)
		if err != nil {
			return nil, errors.InvalidArgumentf("%s: record %d: %v", file, i, err)
		}
		var head struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(raw, &head)
		if err := Validate(schema, v); err != nil {
			return nil, errors.InvalidArgumentf("%s: record %d (%s): %v", file, i, head.ID, err)
		}
		if seen[head.ID] {
			return nil, errors.InvalidArgumentf("%s: record %d: duplicate id %q", file, i, head.ID)
		}
		seen[head.ID] = true

		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, errors.InvalidArgumentf("%s: record %d (%s): %v", file, i, head.ID, err)
		}
		records = append(records, Record{ID: head.ID, Data: buf.Bytes()})
	}
	return records, nil
}
