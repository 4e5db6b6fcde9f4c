// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package idgen

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/sony/sonyflake"
)

var instanceFlakes *FlakeGenerator

func init() {
	var err error
	instanceFlakes, err = NewFlakeGenerator()
	if err != nil {
		panic(err)
	}
}

// FlakeGenerator makes positive int64 IDs that increase roughly in time order.
type FlakeGenerator struct {
	sf *sonyflake.Sonyflake
}

func NewFlakeGenerator() (*FlakeGenerator, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nil, err
	}
	if sf == nil {
		return nil, errors.New("failed to create Sonyflake instance")
	}
	return &FlakeGenerator{sf: sf}, nil
}

func (g *FlakeGenerator) NextID() int64 {
	v, err := g.sf.NextID()
	if err != nil {
		return rand.Int64()
	}
	return int64(v)
}

// InstanceID identifies one process of the service in logs.
func InstanceID() string {
	return strconv.FormatInt(instanceFlakes.NextID(), 36)
}
