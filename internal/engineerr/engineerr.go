// Package engineerr defines the storage core's error taxonomy.
//
// Every sentinel below is checked with errors.Is and annotated with
// call-site context via errors.Wrapf, following the same idiom the
// Pebble-backed sibling storage engine in the example corpus uses for
// its own storage error taxonomy.
package engineerr

import "github.com/cockroachdb/errors"

var (
	// ErrInput signals invalid parameters supplied by the SQL adapter.
	ErrInput = errors.New("nvmdb: invalid input")

	// ErrUnsupportedColumnType signals a column type outside the closed palette.
	ErrUnsupportedColumnType = errors.New("nvmdb: unsupported column type")

	// ErrOutOfMemory signals an allocation failure in the arena or a DRAM structure.
	ErrOutOfMemory = errors.New("nvmdb: out of memory")

	// ErrTableNotFound signals a catalog miss on table lookup.
	ErrTableNotFound = errors.New("nvmdb: table not found")

	// ErrIndexNotFound signals a catalog miss on index lookup.
	ErrIndexNotFound = errors.New("nvmdb: index not found")

	// ErrColumnNotFound signals a named column absent from a schema.
	ErrColumnNotFound = errors.New("nvmdb: column not found")

	// ErrIndexTypeNotSupported signals an index declared on a column whose
	// type is not one of {int32, uint64, varchar}.
	ErrIndexTypeNotSupported = errors.New("nvmdb: column type not supported for indexing")

	// ErrIndexColumnNullable signals an index declared on a nullable column.
	ErrIndexColumnNullable = errors.New("nvmdb: index column must not be nullable")

	// ErrKeySizeExceeded signals a composite key that would exceed KeyDataLength.
	ErrKeySizeExceeded = errors.New("nvmdb: index key size exceeded")

	// ErrRowSizeExceeded signals a row layout exceeding MaxTupleLen.
	ErrRowSizeExceeded = errors.New("nvmdb: row size exceeded")

	// ErrWriteWriteConflict signals an MVCC conflict; the transaction must abort.
	ErrWriteWriteConflict = errors.New("nvmdb: write-write conflict")

	// ErrTransactionAborted signals an operation attempted on an aborted transaction.
	ErrTransactionAborted = errors.New("nvmdb: transaction aborted")

	// ErrNotFound signals a row not found at the requested row-id/snapshot.
	ErrNotFound = errors.New("nvmdb: row not found")
)

// Wrap annotates err with a formatted message while preserving errors.Is
// matching against the wrapped sentinel.
func Wrap(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
