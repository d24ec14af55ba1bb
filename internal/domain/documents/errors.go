package documents

import "errors"

var ErrSnapshotImmutable = errors.New("document versions are immutable")
