// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"github.com/precisexyz/precise/pkg/ids"
)

func newTestID() ids.ID {
	return ids.GenerateTestID()
}
