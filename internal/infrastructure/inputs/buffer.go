package inputs

// InputBuffer receives raw log payloads from inputs.
// Insert rejects payloads that are not valid log entries.
type InputBuffer interface {
	Insert([]byte) error
}
