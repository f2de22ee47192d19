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


package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/civita/caseflow/core"
)

// Hand-written MUS serializers for the record tables and index entries.
// Field order is part of the storage format; append new fields at the
// end only.

var (
	stringSliceMUS = ord.NewSliceSer[string](ord.String)
	vectorMUS      = ord.NewSliceSer[float32](raw.Float32)
)

// zeroTimeSentinel encodes time.Time{} (unknown timestamp).
const zeroTimeSentinel = math.MinInt64

// timeSer serializes time.Time as Unix microseconds.
type timeSer struct{}

var timeMUS = timeSer{}

func (timeSer) Marshal(t time.Time, bs []byte) (n int) {
	micros := int64(zeroTimeSentinel)
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Marshal(micros, bs)
}

func (timeSer) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if micros == zeroTimeSentinel {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeSer) Size(t time.Time) (size int) {
	micros := int64(zeroTimeSentinel)
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Size(micros)
}

func (timeSer) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// caseSer serializes core.Case.
type caseSer struct{}

// CaseMUS is the MUS serializer for core.Case.
var CaseMUS = caseSer{}

func (caseSer) Marshal(c core.Case, bs []byte) (n int) {
	n = ord.String.Marshal(c.CaseKey, bs)
	n += ord.String.Marshal(c.ResponseKey, bs[n:])
	n += ord.String.Marshal(c.Status, bs[n:])
	n += ord.String.Marshal(c.Subject, bs[n:])
	n += ord.String.Marshal(c.Category, bs[n:])
	n += ord.String.Marshal(c.RequestType, bs[n:])
	n += ord.String.Marshal(c.Address, bs[n:])
	n += ord.String.Marshal(c.Neighborhood, bs[n:])
	n += ord.String.Marshal(c.Commune, bs[n:])
	n += ord.String.Marshal(c.PetitionerName, bs[n:])
	n += ord.String.Marshal(c.PetitionerPhone, bs[n:])
	n += ord.String.Marshal(c.PetitionerEmail, bs[n:])
	n += varint.Int.Marshal(c.ElapsedDays, bs[n:])
	n += ord.String.Marshal(c.ResponsibleUnit, bs[n:])
	n += timeMUS.Marshal(c.RegisteredAt, bs[n:])
	n += timeMUS.Marshal(c.DueAt, bs[n:])
	return n
}

func (caseSer) Unmarshal(bs []byte) (c core.Case, n int, err error) {
	strs := []*string{
		&c.CaseKey, &c.ResponseKey, &c.Status, &c.Subject, &c.Category,
		&c.RequestType, &c.Address, &c.Neighborhood, &c.Commune,
		&c.PetitionerName, &c.PetitionerPhone, &c.PetitionerEmail,
	}
	var n1 int
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return c, n, err
		}
	}
	c.ElapsedDays, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return c, n, err
	}
	c.ResponsibleUnit, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return c, n, err
	}
	c.RegisteredAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return c, n, err
	}
	c.DueAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return c, n, err
}

func (caseSer) Size(c core.Case) (size int) {
	size = ord.String.Size(c.CaseKey)
	size += ord.String.Size(c.ResponseKey)
	size += ord.String.Size(c.Status)
	size += ord.String.Size(c.Subject)
	size += ord.String.Size(c.Category)
	size += ord.String.Size(c.RequestType)
	size += ord.String.Size(c.Address)
	size += ord.String.Size(c.Neighborhood)
	size += ord.String.Size(c.Commune)
	size += ord.String.Size(c.PetitionerName)
	size += ord.String.Size(c.PetitionerPhone)
	size += ord.String.Size(c.PetitionerEmail)
	size += varint.Int.Size(c.ElapsedDays)
	size += ord.String.Size(c.ResponsibleUnit)
	size += timeMUS.Size(c.RegisteredAt)
	size += timeMUS.Size(c.DueAt)
	return size
}

func (s caseSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// personnelSer serializes core.Personnel.
type personnelSer struct{}

// PersonnelMUS is the MUS serializer for core.Personnel.
var PersonnelMUS = personnelSer{}

func (personnelSer) Marshal(p core.Personnel, bs []byte) (n int) {
	n = ord.String.Marshal(p.EmployeeID, bs)
	n += ord.String.Marshal(p.FirstName, bs[n:])
	n += ord.String.Marshal(p.LastName, bs[n:])
	n += ord.String.Marshal(p.Role, bs[n:])
	n += ord.String.Marshal(p.Zone, bs[n:])
	n += ord.String.Marshal(p.Status, bs[n:])
	n += stringSliceMUS.Marshal(p.Certifications, bs[n:])
	return n
}

func (personnelSer) Unmarshal(bs []byte) (p core.Personnel, n int, err error) {
	strs := []*string{
		&p.EmployeeID, &p.FirstName, &p.LastName, &p.Role, &p.Zone, &p.Status,
	}
	var n1 int
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return p, n, err
		}
	}
	p.Certifications, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	return p, n, err
}

func (personnelSer) Size(p core.Personnel) (size int) {
	size = ord.String.Size(p.EmployeeID)
	size += ord.String.Size(p.FirstName)
	size += ord.String.Size(p.LastName)
	size += ord.String.Size(p.Role)
	size += ord.String.Size(p.Zone)
	size += ord.String.Size(p.Status)
	size += stringSliceMUS.Size(p.Certifications)
	return size
}

func (s personnelSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// vehicleSer serializes core.Vehicle.
type vehicleSer struct{}

// VehicleMUS is the MUS serializer for core.Vehicle.
var VehicleMUS = vehicleSer{}

func (vehicleSer) Marshal(v core.Vehicle, bs []byte) (n int) {
	n = ord.String.Marshal(v.LicensePlate, bs)
	n += ord.String.Marshal(v.Type, bs[n:])
	n += ord.String.Marshal(v.Zone, bs[n:])
	n += ord.String.Marshal(v.Status, bs[n:])
	n += varint.Int.Marshal(v.Capacity, bs[n:])
	return n
}

func (vehicleSer) Unmarshal(bs []byte) (v core.Vehicle, n int, err error) {
	strs := []*string{&v.LicensePlate, &v.Type, &v.Zone, &v.Status}
	var n1 int
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return v, n, err
		}
	}
	v.Capacity, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (vehicleSer) Size(v core.Vehicle) (size int) {
	size = ord.String.Size(v.LicensePlate)
	size += ord.String.Size(v.Type)
	size += ord.String.Size(v.Zone)
	size += ord.String.Size(v.Status)
	size += varint.Int.Size(v.Capacity)
	return size
}

func (s vehicleSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// zoneSer serializes core.Zone.
type zoneSer struct{}

// ZoneMUS is the MUS serializer for core.Zone.
var ZoneMUS = zoneSer{}

func (zoneSer) Marshal(z core.Zone, bs []byte) (n int) {
	n = ord.String.Marshal(z.Name, bs)
	n += ord.String.Marshal(z.Code, bs[n:])
	n += ord.String.Marshal(z.Commune, bs[n:])
	n += ord.String.Marshal(z.PriorityLevel, bs[n:])
	n += varint.Int.Marshal(z.Population, bs[n:])
	n += varint.Float64.Marshal(z.AreaKM2, bs[n:])
	return n
}

func (zoneSer) Unmarshal(bs []byte) (z core.Zone, n int, err error) {
	strs := []*string{&z.Name, &z.Code, &z.Commune, &z.PriorityLevel}
	var n1 int
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return z, n, err
		}
	}
	z.Population, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return z, n, err
	}
	z.AreaKM2, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	return z, n, err
}

func (zoneSer) Size(z core.Zone) (size int) {
	size = ord.String.Size(z.Name)
	size += ord.String.Size(z.Code)
	size += ord.String.Size(z.Commune)
	size += ord.String.Size(z.PriorityLevel)
	size += varint.Int.Size(z.Population)
	size += varint.Float64.Size(z.AreaKM2)
	return size
}

func (s zoneSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// indexEntrySer serializes core.IndexEntry.
type indexEntrySer struct{}

// IndexEntryMUS is the MUS serializer for core.IndexEntry.
var IndexEntryMUS = indexEntrySer{}

func (indexEntrySer) Marshal(e core.IndexEntry, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(e.Id), bs)
	n += ord.String.Marshal(e.CaseKey, bs[n:])
	n += ord.String.Marshal(e.Text, bs[n:])
	n += vectorMUS.Marshal(e.Vector, bs[n:])
	n += ord.String.Marshal(e.Status, bs[n:])
	n += ord.String.Marshal(e.Category, bs[n:])
	n += ord.String.Marshal(e.Zone, bs[n:])
	n += ord.String.Marshal(e.Neighborhood, bs[n:])
	n += timeMUS.Marshal(e.RegisteredAt, bs[n:])
	return n
}

func (indexEntrySer) Unmarshal(bs []byte) (e core.IndexEntry, n int, err error) {
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return e, n, err
	}
	e.Id = core.ID(id)

	var n1 int
	e.CaseKey, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	strs := []*string{&e.Status, &e.Category, &e.Zone, &e.Neighborhood}
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return e, n, err
		}
	}
	e.RegisteredAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return e, n, err
}

func (indexEntrySer) Size(e core.IndexEntry) (size int) {
	size = varint.Uint64.Size(uint64(e.Id))
	size += ord.String.Size(e.CaseKey)
	size += ord.String.Size(e.Text)
	size += vectorMUS.Size(e.Vector)
	size += ord.String.Size(e.Status)
	size += ord.String.Size(e.Category)
	size += ord.String.Size(e.Zone)
	size += ord.String.Size(e.Neighborhood)
	size += timeMUS.Size(e.RegisteredAt)
	return size
}

func (s indexEntrySer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// MarshalCase serializes a Case to bytes.
func MarshalCase(c *core.Case) []byte {
	buf := make([]byte, CaseMUS.Size(*c))
	CaseMUS.Marshal(*c, buf)
	return buf
}

// UnmarshalCase deserializes a Case from bytes.
func UnmarshalCase(data []byte) (*core.Case, error) {
	c, _, err := CaseMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &c, nil
}

// MarshalPersonnel serializes a Personnel record to bytes.
func MarshalPersonnel(p *core.Personnel) []byte {
	buf := make([]byte, PersonnelMUS.Size(*p))
	PersonnelMUS.Marshal(*p, buf)
	return buf
}

// UnmarshalPersonnel deserializes a Personnel record from bytes.
func UnmarshalPersonnel(data []byte) (*core.Personnel, error) {
	p, _, err := PersonnelMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &p, nil
}

// MarshalVehicle serializes a Vehicle to bytes.
func MarshalVehicle(v *core.Vehicle) []byte {
	buf := make([]byte, VehicleMUS.Size(*v))
	VehicleMUS.Marshal(*v, buf)
	return buf
}

// UnmarshalVehicle deserializes a Vehicle from bytes.
func UnmarshalVehicle(data []byte) (*core.Vehicle, error) {
	v, _, err := VehicleMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

// MarshalZone serializes a Zone to bytes.
func MarshalZone(z *core.Zone) []byte {
	buf := make([]byte, ZoneMUS.Size(*z))
	ZoneMUS.Marshal(*z, buf)
	return buf
}

// UnmarshalZone deserializes a Zone from bytes.
func UnmarshalZone(data []byte) (*core.Zone, error) {
	z, _, err := ZoneMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &z, nil
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(e *core.IndexEntry) []byte {
	buf := make([]byte, IndexEntryMUS.Size(*e))
	IndexEntryMUS.Marshal(*e, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*core.IndexEntry, error) {
	e, _, err := IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &e, nil
}
