// Package cache implements a disk-backed file cache. Files are stored flat in a
// single folder under a collision-free name, and a relational table maps each
// caller-supplied key to the stored file name and its insertion time.
//
// All mutating operations on an Engine are serialised by one mutex, so the
// duplicate-key check, name resolution, file transfer and metadata write of an
// Add happen as a unit. Eviction is best effort: files that cannot be removed
// are reported back and keep their metadata rows.
package cache
