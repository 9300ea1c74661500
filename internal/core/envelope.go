package core

// Envelope is the uniform result shape returned for every boundary
// operation. Exactly one of Data or Error is populated.
type Envelope struct {
	// Success indicates whether the operation completed without error.
	Success bool `json:"success"`

	// Data is the operation-specific payload. Present only on success.
	Data any `json:"data,omitempty"`

	// ConnectionID carries the freshly generated session id. Present only
	// in the responses of the two connect operations.
	ConnectionID string `json:"connectionId,omitempty"`

	// Error is a human-readable message derived from the underlying
	// failure. Present only on failure.
	Error string `json:"error,omitempty"`
}

// OK builds a success envelope around the given payload.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Connected builds the success envelope for a connect operation.
func Connected(sessionID string) Envelope {
	return Envelope{Success: true, ConnectionID: sessionID}
}

// Fail builds a failure envelope from an error.
func Fail(err error) Envelope {
	return Envelope{Success: false, Error: err.Error()}
}

// QueryResult is the payload for operations that execute a statement.
// Read statements populate Columns and Rows; write statements populate
// RowsAffected (and LastInsertID where the driver reports one).
type QueryResult struct {
	// Columns is the ordered list of field names, in schema order.
	Columns []string `json:"columns,omitempty"`

	// Rows holds one field->value mapping per result row.
	Rows []map[string]any `json:"rows,omitempty"`

	// RowsAffected is the affected-row count for write statements.
	RowsAffected int64 `json:"rowsAffected,omitempty"`

	// LastInsertID is the auto-generated id of the last inserted row.
	LastInsertID int64 `json:"lastInsertId,omitempty"`

	// ExecutionTime is the wall-clock duration of the driver call in
	// milliseconds.
	ExecutionTime int64 `json:"executionTime"`
}
