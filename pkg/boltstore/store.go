// Package boltstore persists the object database and @function table in a
// bbolt file so an evaluator can be restarted with its softcode intact.
package boltstore

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
	bbolt "go.etcd.io/bbolt"
)

// Store wraps a bbolt database and an in-memory cache.
type Store struct {
	bolt  *bbolt.DB
	cache *gamedb.Database
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}

	return &Store{
		bolt:  db,
		cache: gamedb.NewDatabase(),
	}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// DB returns the in-memory database cache.
func (s *Store) DB() *gamedb.Database {
	return s.cache
}

// Path returns the filesystem path of the bbolt file.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// PutObject persists a single object (write-through).
func (s *Store) PutObject(obj *gamedb.Object) error {
	return s.PutObjects(obj)
}

// PutObjects persists several objects in one transaction and keeps the
// player name index current.
func (s *Store) PutObjects(objs ...*gamedb.Object) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return putObjects(tx, objs)
	})
}

func putObjects(tx *bbolt.Tx, objs []*gamedb.Object) error {
	b := tx.Bucket(bucketObjects)
	players := tx.Bucket(bucketPlayers)
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		data, err := encode(obj)
		if err != nil {
			return fmt.Errorf("boltstore: encode object #%d: %w", obj.DBRef, err)
		}
		if err := b.Put(refToKey(obj.DBRef), data); err != nil {
			return err
		}
		if obj.ObjType() == gamedb.TypePlayer && !obj.IsGoing() {
			if err := players.Put([]byte(strings.ToLower(obj.Name)), refToKey(obj.DBRef)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteObject removes an object and its player index entry.
func (s *Store) DeleteObject(ref gamedb.DBRef) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		if data := b.Get(refToKey(ref)); data != nil {
			if obj, err := decode[gamedb.Object](data); err == nil {
				tx.Bucket(bucketPlayers).Delete([]byte(strings.ToLower(obj.Name)))
			}
		}
		return b.Delete(refToKey(ref))
	})
}

// LookupPlayer finds a player by name in the secondary index.
func (s *Store) LookupPlayer(name string) (gamedb.DBRef, bool) {
	ref := gamedb.Nothing
	s.bolt.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketPlayers).Get([]byte(strings.ToLower(name))); v != nil {
			ref = keyToRef(v)
		}
		return nil
	})
	return ref, ref != gamedb.Nothing
}

// PutAttrDef persists an attribute name definition.
func (s *Store) PutAttrDef(def *gamedb.AttrDef) error {
	data, err := encode(def)
	if err != nil {
		return fmt.Errorf("boltstore: encode attrdef %d: %w", def.Number, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAttrDefs).Put(intToKey(def.Number), data)
	})
}

// PutUFunction persists an @function definition, keyed by its name.
func (s *Store) PutUFunction(uf *eval.UFunction) error {
	data, err := encode(uf)
	if err != nil {
		return fmt.Errorf("boltstore: encode function %s: %w", uf.Name, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUFuncs).Put([]byte(strings.ToUpper(uf.Name)), data)
	})
}

// DeleteUFunction removes an @function definition.
func (s *Store) DeleteUFunction(name string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUFuncs).Delete([]byte(strings.ToUpper(name)))
	})
}

// PutMeta persists database metadata.
func (s *Store) PutMeta() error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return putMeta(tx, s.cache)
	})
}

func putMeta(tx *bbolt.Tx, db *gamedb.Database) error {
	b := tx.Bucket(bucketMeta)
	if err := b.Put(keyVersion, intToKey(db.Version)); err != nil {
		return err
	}
	if err := b.Put(keyNextAttr, intToKey(db.NextAttr)); err != nil {
		return err
	}
	return b.Put(keyGod, refToKey(db.God))
}

// Import bulk-loads an in-memory database and function table, batching
// 1000 objects per transaction. db becomes the store's cache.
func (s *Store) Import(db *gamedb.Database, ufuncs []*eval.UFunction) error {
	s.cache = db

	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		if err := putMeta(tx, db); err != nil {
			return err
		}
		b := tx.Bucket(bucketAttrDefs)
		for _, def := range db.AttrNames {
			data, err := encode(def)
			if err != nil {
				return err
			}
			if err := b.Put(intToKey(def.Number), data); err != nil {
				return err
			}
		}
		fb := tx.Bucket(bucketUFuncs)
		for _, uf := range ufuncs {
			data, err := encode(uf)
			if err != nil {
				return err
			}
			if err := fb.Put([]byte(strings.ToUpper(uf.Name)), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("boltstore: import meta: %w", err)
	}

	batch := make([]*gamedb.Object, 0, 1000)
	count := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.PutObjects(batch...); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}
	for _, obj := range db.Objects {
		batch = append(batch, obj)
		if len(batch) >= 1000 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	log.Printf("boltstore: imported %d objects, %d attr defs, %d functions", count, len(db.AttrNames), len(ufuncs))
	return nil
}

// LoadAll reads the whole bbolt file into a fresh cache and returns it with
// the stored @function table.
func (s *Store) LoadAll() (*gamedb.Database, []*eval.UFunction, error) {
	db := gamedb.NewDatabase()
	var ufuncs []*eval.UFunction

	err := s.bolt.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keyVersion); v != nil {
			db.Version = keyToInt(v)
		}
		if v := meta.Get(keyGod); v != nil {
			db.God = keyToRef(v)
		}

		err := tx.Bucket(bucketAttrDefs).ForEach(func(_, v []byte) error {
			def, err := decode[gamedb.AttrDef](v)
			if err != nil {
				return fmt.Errorf("decode attrdef: %w", err)
			}
			db.AddAttrDef(def.Number, def.Name, def.Flags)
			return nil
		})
		if err != nil {
			return err
		}
		// nextattr may be ahead of every stored definition
		if v := meta.Get(keyNextAttr); v != nil && keyToInt(v) > db.NextAttr {
			db.NextAttr = keyToInt(v)
		}

		err = tx.Bucket(bucketObjects).ForEach(func(_, v []byte) error {
			obj, err := decode[gamedb.Object](v)
			if err != nil {
				return fmt.Errorf("decode object: %w", err)
			}
			db.Objects[obj.DBRef] = obj
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(bucketUFuncs).ForEach(func(_, v []byte) error {
			uf, err := decode[eval.UFunction](v)
			if err != nil {
				return fmt.Errorf("decode function: %w", err)
			}
			ufuncs = append(ufuncs, uf)
			return nil
		})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("boltstore: load: %w", err)
	}

	s.cache = db
	log.Printf("boltstore: loaded %d objects, %d attr defs, %d functions", len(db.Objects), len(db.AttrNames), len(ufuncs))
	return db, ufuncs, nil
}

// Backup writes a hot snapshot of the bbolt file to path.
func (s *Store) Backup(path string) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("boltstore: create backup %s: %w", path, err)
		}
		defer f.Close()
		if _, err := tx.WriteTo(f); err != nil {
			return fmt.Errorf("boltstore: write backup: %w", err)
		}
		log.Printf("boltstore: backup written to %s", path)
		return nil
	})
}

// HasData reports whether the bbolt file contains any objects.
func (s *Store) HasData() bool {
	hasData := false
	s.bolt.View(func(tx *bbolt.Tx) error {
		hasData = tx.Bucket(bucketObjects).Stats().KeyN > 0
		return nil
	})
	return hasData
}
