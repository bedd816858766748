/*
air-monitor - CO2, temperature and humidity monitor.
Copyright (C) 2024, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/TheCacophonyProject/air-monitor/reading"
)

// Keyed preferences used before readings were stored as a single record.
const (
	Namespace      = "co2sensor"
	KeyCO2         = "lastCO2"
	KeyHumidity    = "lastHumidity"
	KeyTemperature = "lastTemperature"
)

// KeyValue is an integer preferences store.
type KeyValue interface {
	GetInt(key string, def int) int
	PutInt(key string, value int) error
}

// Prefs is a KeyValue kept in a JSON file holding one object per namespace.
type Prefs struct {
	Path      string
	Namespace string
}

func OpenPrefs(path string) *Prefs {
	return &Prefs{Path: path, Namespace: Namespace}
}

func (p *Prefs) read() (map[string]map[string]int, error) {
	b, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]map[string]int{}, nil
	} else if err != nil {
		return nil, err
	}
	all := map[string]map[string]int{}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.Path, err)
	}
	return all, nil
}

// GetInt returns def when the key is missing or the file can't be read.
func (p *Prefs) GetInt(key string, def int) int {
	all, err := p.read()
	if err != nil {
		log.Debug(err)
		return def
	}
	v, ok := all[p.Namespace][key]
	if !ok {
		return def
	}
	return v
}

func (p *Prefs) PutInt(key string, value int) error {
	all, err := p.read()
	if err != nil {
		all = map[string]map[string]int{}
	}
	if all[p.Namespace] == nil {
		all[p.Namespace] = map[string]int{}
	}
	all[p.Namespace][key] = value
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(p.Path, b)
}

func loadLegacy(kv KeyValue) reading.Reading {
	return reading.Reading{
		CO2:          kv.GetInt(KeyCO2, 0),
		TemperatureC: kv.GetInt(KeyTemperature, 0),
		HumidityPct:  kv.GetInt(KeyHumidity, 0),
	}
}
