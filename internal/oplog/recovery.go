package oplog

// Replay reconstructs committed structural changes from the oplog at
// path, invoking apply(key, value) once for every Commit record, in log
// order, so a key committed more than once is applied each time and ends
// at its last committed value. A Begin record with no matching Commit (the
// process crashed between logging intent and logging completion) is
// rolled back: it is simply never applied, since the in-memory tree it
// described was never actually mutated before the crash either.
func Replay(path string, apply func(key []byte, value uint64)) error {
	records, err := ReadAll(path)
	if err != nil {
		return err
	}

	pending := make(map[string]uint64)
	for _, r := range records {
		switch r.Header.Type {
		case RecordIndexBegin:
			pending[string(r.Key)] = r.Value
		case RecordIndexCommit:
			delete(pending, string(r.Key))
			apply(r.Key, r.Value)
		}
	}
	return nil
}
