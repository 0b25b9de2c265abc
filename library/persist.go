package library

import (
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/util"
)

type snapshot struct {
	Version   int
	Fragments []*model.Fragment
}

const snapshotVersion = 1

// Save writes every fragment of s to path as gob.
func Save(s *MemoryStore, path string) error {
	return util.WriteBinary(path, snapshot{Version: snapshotVersion, Fragments: s.All()})
}

// Load reads a library written by Save.
func Load(path string) (*MemoryStore, error) {
	snap, err := util.ReadBinary[snapshot](path)
	if err != nil {
		return nil, err
	}
	if snap.Version != snapshotVersion {
		return nil, &VersionError{Path: path, Version: snap.Version}
	}
	s := NewMemoryStore()
	for _, f := range snap.Fragments {
		s.Add(f)
	}
	return s, nil
}
