package comm

// RecordSize is the encoded size of a Record in the FIFO stream.
const RecordSize = 2

// Record is one sample produced by the sleep tracker FIFO.
type Record struct {
	Counts uint8 `json:"counts"`
	Class  uint8 `json:"sleep_wake_class"`
}

// DecodeRecords splits FIFO bytes into records.
// A trailing unpaired byte is dropped.
func DecodeRecords(b []byte) []Record {
	recs := make([]Record, 0, len(b)/RecordSize)
	for ; len(b) >= RecordSize; b = b[RecordSize:] {
		recs = append(recs, Record{Counts: b[0], Class: b[1]})
	}
	return recs
}

// Bytes returns the FIFO encoding of the record.
func (r Record) Bytes() []byte {
	return []byte{r.Counts, r.Class}
}
