/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package flashmap loads an ota.PartitionTable from a YAML partition-map
// file, the same shape of document the firmware build uses to generate its
// C flash map, so host tooling and device firmware share one source of
// truth for partition layout.
package flashmap

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"

	"github.com/embeddedfw/uf2ota/internal/ferr"
	"github.com/embeddedfw/uf2ota/ota"
)

// parseSize parses a size field, accepting plain decimal/hex integers as
// well as "kB"/"KB" and "MB" suffixes, e.g. "256kB", "0x40000", "1MB".
func parseSize(val string) (uint32, error) {
	lower := strings.ToLower(strings.TrimSpace(val))

	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(lower, "mb"):
		multiplier = 1024 * 1024
		lower = strings.TrimSuffix(lower, "mb")
	case strings.HasSuffix(lower, "kb"):
		multiplier = 1024
		lower = strings.TrimSuffix(lower, "kb")
	}
	lower = strings.TrimSpace(lower)

	num, err := atoiNoOct(lower)
	if err != nil {
		return 0, err
	}

	return uint32(uint64(num) * multiplier), nil
}

// atoiNoOct parses decimal or "0x"-prefixed hex, same as the wider Go
// ecosystem's ParseInt with base 0, but never treats a leading zero as
// octal (partition offsets are routinely written "0100000").
func atoiNoOct(s string) (int64, error) {
	trimmed := s
	for len(trimmed) > 1 && trimmed[0] == '0' && trimmed[1] != 'x' && trimmed[1] != 'X' {
		trimmed = trimmed[1:]
	}
	v, err := strconv.ParseInt(trimmed, 0, 64)
	if err != nil {
		return 0, ferr.Wrap(err, "invalid number %q", s)
	}
	return v, nil
}

func areaErr(name string, format string, args ...interface{}) error {
	return ferr.Newf("partition %q: %s", name, fmt.Sprintf(format, args...))
}

func parsePartition(name string, fields map[string]interface{}) (ota.Partition, error) {
	p := ota.Partition{Name: name}

	var devicePresent, offsetPresent, sizePresent bool

	strFields := cast.ToStringMapString(fields)
	for k, v := range strFields {
		switch k {
		case "flash_device", "device":
			p.FlashDeviceName = v
			devicePresent = true

		case "offset":
			off, err := atoiNoOct(v)
			if err != nil {
				return p, areaErr(name, "invalid offset: %s", v)
			}
			p.Offset = uint32(off)
			offsetPresent = true

		case "size", "length":
			sz, err := parseSize(v)
			if err != nil {
				return p, areaErr(name, "invalid size: %s", v)
			}
			p.Length = sz
			sizePresent = true
		}
	}

	if !devicePresent {
		return p, areaErr(name, "required field \"flash_device\" missing")
	}
	if !offsetPresent {
		return p, areaErr(name, "required field \"offset\" missing")
	}
	if !sizePresent {
		return p, areaErr(name, "required field \"size\" missing")
	}

	return p, nil
}

func overlaps(a, b ota.Partition) bool {
	if a.FlashDeviceName != b.FlashDeviceName {
		return false
	}
	lo, hi := a, b
	if b.Offset < a.Offset {
		lo, hi = b, a
	}
	return lo.Offset+lo.Length > hi.Offset
}

// detectOverlaps returns every pair of partitions (on the same flash
// device) whose byte ranges overlap, so Load can refuse an inconsistent
// map instead of letting the writer discover it mid-stream.
func detectOverlaps(partitions []ota.Partition) [][2]ota.Partition {
	var out [][2]ota.Partition
	for i := 0; i < len(partitions); i++ {
		for j := i + 1; j < len(partitions); j++ {
			if overlaps(partitions[i], partitions[j]) {
				out = append(out, [2]ota.Partition{partitions[i], partitions[j]})
			}
		}
	}
	return out
}

// Load reads a YAML partition-map document of the form:
//
//	areas:
//	  boot:
//	    flash_device: internal
//	    offset: 0x0
//	    size: 32kB
//	  slot0:
//	    flash_device: internal
//	    offset: 0x8000
//	    size: 0xE0000
//
// and returns the resolved ota.SliceTable. It rejects duplicate partition
// names and any pair of overlapping partitions on the same flash device.
func Load(path string) (ota.SliceTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ferr.Wrap(err, "reading partition map %q", path)
	}
	return Parse(raw)
}

// Parse decodes the YAML partition-map document in doc. It is split out
// from Load so callers (and tests) can supply an in-memory document
// without touching the filesystem.
func Parse(doc []byte) (ota.SliceTable, error) {
	var raw map[string]interface{}
	// UnmarshalStrict rejects duplicate mapping keys, which is how a
	// repeated partition name shows up in the document.
	if err := yaml.UnmarshalStrict(doc, &raw); err != nil {
		return nil, ferr.Wrap(err, "parsing partition map YAML")
	}

	rawAreas, ok := raw["areas"]
	if !ok {
		return nil, ferr.New("\"areas\" mapping missing from partition map")
	}

	areaMap := cast.ToStringMap(rawAreas)
	names := make([]string, 0, len(areaMap))
	for name := range areaMap {
		names = append(names, name)
	}

	table := make(ota.SliceTable, 0, len(areaMap))
	seen := make(map[string]bool, len(areaMap))
	for _, name := range names {
		if seen[name] {
			return nil, areaErr(name, "name conflict")
		}
		seen[name] = true

		fields := cast.ToStringMap(areaMap[name])
		p, err := parsePartition(name, fields)
		if err != nil {
			return nil, err
		}
		table = append(table, p)
	}

	if bad := detectOverlaps(table); len(bad) > 0 {
		pair := bad[0]
		return nil, ferr.Newf("partitions %q and %q overlap on flash device %q",
			pair[0].Name, pair[1].Name, pair[0].FlashDeviceName)
	}

	return table, nil
}
