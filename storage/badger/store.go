// Copyright 2026 Civita Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/civita/caseflow/core"
	"github.com/civita/caseflow/storage"
)

// RecordStore implements storage.RecordStore on top of a shared Backend.
//
// Each table's rows live under a generation-qualified prefix. ReplaceAll
// writes a complete new generation off to the side, then flips the four
// generation pointers in a single transaction, so concurrent readers see
// either the old tables or the new ones, never a mix.
type RecordStore struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.RecordStore = (*RecordStore)(nil)

var recordTables = []string{tableCases, tablePersonnel, tableVehicles, tableZones}

// NewRecordStore creates a record store using the given backend.
func NewRecordStore(backend *Backend) *RecordStore {
	return &RecordStore{
		backend: backend,
		logger:  slog.Default().With("component", "record_store"),
	}
}

// ReplaceAll atomically replaces all four tables with the snapshot contents.
func (s *RecordStore) ReplaceAll(ctx context.Context, snap *storage.Snapshot) (storage.TableCounts, error) {
	var counts storage.TableCounts
	if s.backend.IsClosed() {
		return counts, storage.ErrStorageClosed
	}

	oldGens := make(map[string]uint64, len(recordTables))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, table := range recordTables {
			gen, err := readGeneration(tx, table)
			if err != nil {
				return err
			}
			oldGens[table] = gen
		}
		return nil
	}, false)
	if err != nil {
		return counts, fmt.Errorf("reading table generations: %w", err)
	}

	var newGen uint64
	for _, gen := range oldGens {
		if gen > newGen {
			newGen = gen
		}
	}
	newGen++

	pairs := make([]kvPair, 0, len(snap.Cases)*2+len(snap.Personnel)+len(snap.Vehicles)+len(snap.Zones))
	for i, c := range snap.Cases {
		seq := uint64(i)
		pairs = append(pairs, kvPair{
			key:   makeRowKey(tableCases, newGen, seq),
			value: storage.MarshalCase(c),
		})
		if c.CaseKey != "" {
			// Later rows overwrite earlier ones, so duplicate entry
			// keys resolve to the last-loaded row.
			pairs = append(pairs, kvPair{
				key:   makeCaseKeyIdxKey(newGen, c.CaseKey),
				value: encodeGen(seq),
			})
		}
	}
	for i, p := range snap.Personnel {
		pairs = append(pairs, kvPair{
			key:   makeRowKey(tablePersonnel, newGen, uint64(i)),
			value: storage.MarshalPersonnel(p),
		})
	}
	for i, v := range snap.Vehicles {
		pairs = append(pairs, kvPair{
			key:   makeRowKey(tableVehicles, newGen, uint64(i)),
			value: storage.MarshalVehicle(v),
		})
	}
	for i, z := range snap.Zones {
		pairs = append(pairs, kvPair{
			key:   makeRowKey(tableZones, newGen, uint64(i)),
			value: storage.MarshalZone(z),
		})
	}

	if err := s.backend.writeBulk(pairs); err != nil {
		return counts, fmt.Errorf("writing table generation %d: %w", newGen, err)
	}

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for _, table := range recordTables {
			if err := tx.Set(makeGenPointerKey(table), encodeGen(newGen)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return counts, fmt.Errorf("publishing table generation %d: %w", newGen, err)
	}

	s.purgeOldGenerations(oldGens)

	counts = storage.TableCounts{
		Cases:     len(snap.Cases),
		Personnel: len(snap.Personnel),
		Vehicles:  len(snap.Vehicles),
		Zones:     len(snap.Zones),
	}
	s.logger.Info("replaced record tables",
		"generation", newGen,
		"cases", counts.Cases,
		"personnel", counts.Personnel,
		"vehicles", counts.Vehicles,
		"zones", counts.Zones)
	return counts, nil
}

// purgeOldGenerations drops superseded row data. Failures are logged and
// ignored; stale generations are unreachable and only cost disk space.
func (s *RecordStore) purgeOldGenerations(oldGens map[string]uint64) {
	var prefixes [][]byte
	for table, gen := range oldGens {
		if gen == 0 {
			continue
		}
		prefixes = append(prefixes, makeRowPrefix(table, gen))
		if table == tableCases {
			prefixes = append(prefixes, makeCaseKeyIdxPrefix(gen))
		}
	}
	if len(prefixes) == 0 {
		return
	}
	if err := s.backend.DropPrefix(prefixes...); err != nil {
		s.logger.Warn("failed to purge old table generations", "error", err)
	}
}

// Cases returns the cases matching the filter in source order.
func (s *RecordStore) Cases(ctx context.Context, filter storage.CaseFilter) ([]*core.Case, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	var cases []*core.Case
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := readGeneration(tx, tableCases)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRowPrefix(tableCases, gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var c *core.Case
			err := iter.Item().Value(func(val []byte) error {
				var err error
				c, err = storage.UnmarshalCase(val)
				return err
			})
			if err != nil {
				return err
			}
			if matchesFilter(c, filter) {
				cases = append(cases, c)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// CaseByKey returns the case with the given entry key, or nil when absent.
func (s *RecordStore) CaseByKey(ctx context.Context, key string) (*core.Case, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var found *core.Case
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := readGeneration(tx, tableCases)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		item, err := tx.Get(makeCaseKeyIdxKey(gen, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var seq uint64
		if err := item.Value(func(val []byte) error {
			seq = decodeGen(val)
			return nil
		}); err != nil {
			return err
		}

		row, err := tx.Get(makeRowKey(tableCases, gen, seq))
		if err != nil {
			return err
		}
		return row.Value(func(val []byte) error {
			found, err = storage.UnmarshalCase(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PersonnelByZone returns personnel in the given zone, compared
// case-insensitively, in source order.
func (s *RecordStore) PersonnelByZone(ctx context.Context, zone string) ([]*core.Personnel, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var personnel []*core.Personnel
	err := s.scanTable(tablePersonnel, func(val []byte) error {
		p, err := storage.UnmarshalPersonnel(val)
		if err != nil {
			return err
		}
		if strings.EqualFold(p.Zone, zone) {
			personnel = append(personnel, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return personnel, nil
}

// VehiclesByZone returns vehicles in the given zone, compared
// case-insensitively, in source order.
func (s *RecordStore) VehiclesByZone(ctx context.Context, zone string) ([]*core.Vehicle, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var vehicles []*core.Vehicle
	err := s.scanTable(tableVehicles, func(val []byte) error {
		v, err := storage.UnmarshalVehicle(val)
		if err != nil {
			return err
		}
		if strings.EqualFold(v.Zone, zone) {
			vehicles = append(vehicles, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Zones returns all zone records in source order.
func (s *RecordStore) Zones(ctx context.Context) ([]*core.Zone, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var zones []*core.Zone
	err := s.scanTable(tableZones, func(val []byte) error {
		z, err := storage.UnmarshalZone(val)
		if err != nil {
			return err
		}
		zones = append(zones, z)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return zones, nil
}

// Counts returns current per-table row counts.
func (s *RecordStore) Counts(ctx context.Context) (storage.TableCounts, error) {
	var counts storage.TableCounts
	if s.backend.IsClosed() {
		return counts, storage.ErrStorageClosed
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, table := range recordTables {
			gen, err := readGeneration(tx, table)
			if err != nil {
				return err
			}
			n := 0
			if gen > 0 {
				opts := badger.DefaultIteratorOptions
				opts.Prefix = makeRowPrefix(table, gen)
				opts.PrefetchValues = false
				iter := tx.NewIterator(opts)
				for iter.Rewind(); iter.Valid(); iter.Next() {
					n++
				}
				iter.Close()
			}
			switch table {
			case tableCases:
				counts.Cases = n
			case tablePersonnel:
				counts.Personnel = n
			case tableVehicles:
				counts.Vehicles = n
			case tableZones:
				counts.Zones = n
			}
		}
		return nil
	}, false)
	if err != nil {
		return counts, err
	}
	return counts, nil
}

// Close closes the underlying backend.
func (s *RecordStore) Close() error {
	return s.backend.Close()
}

// scanTable iterates the live generation of one table, passing each row's
// raw value to fn in source order.
func (s *RecordStore) scanTable(table string, fn func(val []byte) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := readGeneration(tx, table)
		if err != nil {
			return err
		}
		if gen == 0 {
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRowPrefix(table, gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := iter.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readGeneration returns a table's live generation, 0 when the table has
// never been published.
func readGeneration(tx *badger.Txn, table string) (uint64, error) {
	item, err := tx.Get(makeGenPointerKey(table))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		gen = decodeGen(val)
		return nil
	})
	return gen, err
}

// validateFilter rejects filters naming fields core.Case cannot resolve.
func validateFilter(filter storage.CaseFilter) error {
	probe := &core.Case{}
	for field := range filter {
		if _, ok := probe.Field(field); !ok {
			return fmt.Errorf("%w: %s", storage.ErrInvalidFilter, field)
		}
	}
	return nil
}

// matchesFilter reports whether every filter field's value is a member of
// its allowed set. Values are compared case-insensitively.
func matchesFilter(c *core.Case, filter storage.CaseFilter) bool {
	for field, allowed := range filter {
		value, _ := c.Field(field)
		match := false
		for _, want := range allowed {
			if strings.EqualFold(value, want) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}
